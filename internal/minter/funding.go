// internal/minter/funding.go
package minter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

var errNotFunded = errors.New("balance is still zero")

// EnsureFunded гарантирует ненулевой баланс identity. При нулевом балансе
// запрашивается ровно один airdrop, после чего баланс опрашивается
// не более FundingMaxPolls раз.
func (m *Minter) EnsureFunded(ctx context.Context) error {
	owner := m.identity.PublicKey

	balance, err := m.client.GetBalance(ctx, owner, m.settings.Commitment)
	if err != nil {
		return &StageError{Stage: StageFunding, Err: fmt.Errorf("query balance: %w", err)}
	}
	if balance > 0 {
		m.logger.Info("Account funded", zap.Uint64("balance", balance))
		return nil
	}

	sig, err := m.client.RequestAirdrop(ctx, owner, m.settings.AirdropLamports)
	if err != nil {
		return fail(StageFunding, ErrAirdropRejected, err)
	}
	m.logger.Info("Airdrop requested",
		zap.Uint64("lamports", m.settings.AirdropLamports),
		zap.String("signature", sig.String()))

	polls := 0
	balance, err = backoff.Retry(ctx, func() (uint64, error) {
		polls++
		current, err := m.client.GetBalance(ctx, owner, m.settings.Commitment)
		if err != nil {
			return 0, backoff.Permanent(fmt.Errorf("query balance: %w", err))
		}
		if current == 0 {
			return 0, errNotFunded
		}
		return current, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(m.settings.FundingPollInterval)),
		backoff.WithMaxTries(uint(m.settings.FundingMaxPolls)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			m.logger.Debug("Waiting for airdrop", zap.Int("poll", polls), zap.Duration("next", next))
		}),
	)

	switch {
	case err == nil:
		m.logger.Info("Account funded", zap.Uint64("balance", balance), zap.Int("polls", polls))
		return nil
	case errors.Is(err, errNotFunded):
		return fail(StageFunding, ErrFundingTimeout, fmt.Errorf("balance still zero after %d polls", polls))
	default:
		return &StageError{Stage: StageFunding, Err: err}
	}
}
