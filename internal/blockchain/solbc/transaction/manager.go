// internal/blockchain/solbc/transaction/manager.go
package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"go.uber.org/zap"
)

// Manager отправляет подписанную транзакцию ровно один раз и ждёт подтверждения.
type Manager struct {
	client    RPC
	logger    *zap.Logger
	config    Config
	validator *Validator
	monitor   *Monitor
	metrics   *Metrics
}

func NewManager(client RPC, logger *zap.Logger, config Config, metrics *Metrics) *Manager {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultConfig().RequestTimeout
	}
	return &Manager{
		client:    client,
		logger:    logger.Named("tx-manager"),
		config:    config,
		validator: NewValidator(logger),
		monitor:   NewMonitor(client, logger, config),
		metrics:   metrics,
	}
}

// SendAndConfirm возвращает статус подтверждённой транзакции. При ошибке
// после отправки Status содержит подпись, чтобы её можно было залогировать.
func (tm *Manager) SendAndConfirm(ctx context.Context, tx *solana.Transaction) (*Status, error) {
	start := time.Now()

	if err := tm.validator.ValidateTransaction(tx); err != nil {
		tm.metrics.IncFailure("validation")
		tm.logger.Error("Transaction validation failed", zap.Error(err))
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, tm.config.RequestTimeout)
	signature, err := tm.client.SendTransactionWithOpts(sendCtx, tx, rpc.TransactionOpts{
		SkipPreflight:       tm.config.SkipPreflight,
		PreflightCommitment: tm.config.Commitment,
	})
	cancel()
	if err != nil {
		tm.metrics.IncFailure("send")
		tm.logger.Error("Failed to send transaction", zap.Error(err))
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	tm.metrics.IncSent()
	tm.logger.Debug("Transaction sent", zap.String("signature", signature.String()))

	status, err := tm.monitor.AwaitConfirmation(ctx, signature)
	if err != nil {
		switch {
		case errors.Is(err, blockchain.ErrTransactionFailed):
			tm.metrics.IncFailure("failed")
		case errors.Is(err, blockchain.ErrConfirmationTimeout):
			tm.metrics.IncFailure("timeout")
		default:
			tm.metrics.IncFailure("canceled")
		}
		tm.logger.Error("Transaction confirmation failed",
			zap.String("signature", signature.String()),
			zap.Error(err))
		return &Status{Signature: signature, Status: StatusFailed, Timestamp: time.Now()}, err
	}

	tm.metrics.IncConfirmed()
	tm.metrics.TrackTransaction(start)
	return status, nil
}
