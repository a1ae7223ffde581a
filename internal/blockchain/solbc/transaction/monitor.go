// internal/blockchain/solbc/transaction/monitor.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"go.uber.org/zap"
)

var errPending = errors.New("transaction not yet confirmed")

type Monitor struct {
	client RPC
	logger *zap.Logger
	config Config
}

func NewMonitor(client RPC, logger *zap.Logger, config Config) *Monitor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if config.ConfirmationTime <= 0 {
		config.ConfirmationTime = DefaultConfig().ConfirmationTime
	}
	if config.Commitment == "" {
		config.Commitment = rpc.CommitmentConfirmed
	}
	return &Monitor{
		client: client,
		logger: logger.Named("tx-monitor"),
		config: config,
	}
}

func (m *Monitor) GetTransactionStatus(ctx context.Context, signature solana.Signature) (*Status, error) {
	response, err := m.client.GetSignatureStatuses(ctx, false, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction status: %w", err)
	}

	if response == nil || len(response.Value) == 0 || response.Value[0] == nil {
		return &Status{
			Signature: signature,
			Status:    StatusPending,
			Timestamp: time.Now(),
		}, nil
	}

	status := response.Value[0]
	txStatus := &Status{
		Signature: signature,
		Timestamp: time.Now(),
		Slot:      status.Slot,
	}

	if status.Confirmations != nil {
		txStatus.Confirmations = *status.Confirmations
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusFinalized:
		txStatus.Status = StatusFinalized
	case rpc.ConfirmationStatusConfirmed:
		txStatus.Status = StatusConfirmed
	case rpc.ConfirmationStatusProcessed:
		txStatus.Status = StatusProcessed
	default:
		txStatus.Status = StatusPending
	}

	if status.Err != nil {
		txStatus.Error = fmt.Sprintf("%v", status.Err)
		txStatus.Status = StatusFailed
	}

	return txStatus, nil
}

// reached сообщает, достигнут ли требуемый уровень подтверждения.
func (m *Monitor) reached(status string) bool {
	switch m.config.Commitment {
	case rpc.CommitmentFinalized:
		return status == StatusFinalized
	case rpc.CommitmentProcessed:
		return status == StatusProcessed || status == StatusConfirmed || status == StatusFinalized
	default:
		return status == StatusConfirmed || status == StatusFinalized
	}
}

// AwaitConfirmation опрашивает статус подписи до подтверждения, ошибки
// транзакции или истечения ConfirmationTime.
func (m *Monitor) AwaitConfirmation(ctx context.Context, signature solana.Signature) (*Status, error) {
	status, err := backoff.Retry(ctx, func() (*Status, error) {
		status, err := m.GetTransactionStatus(ctx, signature)
		if err != nil {
			m.logger.Warn("Confirmation check failed", zap.Error(err))
			return nil, err
		}
		if status.Status == StatusFailed {
			return status, backoff.Permanent(fmt.Errorf("%w: %s", blockchain.ErrTransactionFailed, status.Error))
		}
		if m.reached(status.Status) {
			return status, nil
		}
		return nil, errPending
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(m.config.PollInterval)),
		backoff.WithMaxElapsedTime(m.config.ConfirmationTime),
	)

	switch {
	case err == nil:
		return status, nil
	case errors.Is(err, blockchain.ErrTransactionFailed):
		return status, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		m.logger.Debug("Confirmation deadline reached",
			zap.String("signature", signature.String()),
			zap.NamedError("last_error", err))
		return nil, blockchain.ErrConfirmationTimeout
	}
}
