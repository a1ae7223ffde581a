// internal/minter/pipeline.go
package minter

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Result содержит итог успешного прогона конвейера.
type Result struct {
	Identity      solana.PublicKey
	Mint          solana.PublicKey
	Holding       solana.PublicKey
	MintSignature solana.Signature
	Snapshot      *Snapshot
	Duration      time.Duration
}

type step struct {
	stage Stage
	run   func(ctx context.Context) (string, error)
}

// Run исполняет стадии строго по порядку. Первая ошибка останавливает
// конвейер, следующие стадии не запускаются.
func (m *Minter) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{Identity: m.identity.PublicKey}
	m.emit(ctx, Event{Stage: StageIdentity, Status: EventDone, Detail: result.Identity.String()})

	for _, s := range m.steps(result) {
		if err := ctx.Err(); err != nil {
			m.emit(ctx, Event{Stage: s.stage, Status: EventFailed, Err: err})
			return result, &StageError{Stage: s.stage, Err: err}
		}

		m.emit(ctx, Event{Stage: s.stage, Status: EventStarted})
		stageStart := time.Now()
		detail, err := s.run(ctx)
		if err != nil {
			m.logger.Error("Stage failed", zap.String("stage", string(s.stage)), zap.Error(err))
			m.emit(ctx, Event{Stage: s.stage, Status: EventFailed, Err: err})
			return result, err
		}
		m.logger.Debug("Stage completed",
			zap.String("stage", string(s.stage)),
			zap.Duration("duration", time.Since(stageStart)))
		m.emit(ctx, Event{Stage: s.stage, Status: EventDone, Detail: detail})
	}

	result.Duration = time.Since(start)
	m.logger.Info("Mint pipeline completed",
		zap.String("mint", result.Mint.String()),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// steps связывает стадии через result: каждая читает то, что записала предыдущая.
func (m *Minter) steps(result *Result) []step {
	var attached *AttachedMetadata
	return []step{
		{StageFunding, func(ctx context.Context) (string, error) {
			return "", m.EnsureFunded(ctx)
		}},
		{StageMintAccount, func(ctx context.Context) (string, error) {
			mint, err := m.CreateMintAccount(ctx)
			result.Mint = mint
			return mint.String(), err
		}},
		{StageTokenAccount, func(ctx context.Context) (string, error) {
			holding, err := m.CreateTokenAccount(ctx, result.Mint)
			result.Holding = holding
			return holding.String(), err
		}},
		{StageMint, func(ctx context.Context) (string, error) {
			sig, err := m.MintOne(ctx, result.Mint, result.Holding)
			result.MintSignature = sig
			return sig.String(), err
		}},
		{StageMetadata, func(ctx context.Context) (string, error) {
			var err error
			if attached, err = m.AttachMetadata(ctx, result.Mint); err != nil {
				return "", err
			}
			return attached.Address().String(), nil
		}},
		{StageEdition, func(ctx context.Context) (string, error) {
			snapshot, err := m.UpgradeToMasterEdition(ctx, attached)
			if err != nil {
				return "", err
			}
			result.Snapshot = snapshot
			return snapshot.EditionAddress.String(), nil
		}},
	}
}
