// internal/app/runner.go
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/fakeledger"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solbc"
	"github.com/rovshanmuradov/solana-nft-mint/internal/blockchain/solbc/transaction"
	"github.com/rovshanmuradov/solana-nft-mint/internal/config"
	"github.com/rovshanmuradov/solana-nft-mint/internal/logger"
	"github.com/rovshanmuradov/solana-nft-mint/internal/minter"
	"github.com/rovshanmuradov/solana-nft-mint/internal/ui"
	"go.uber.org/zap"
)

// Options задаёт режим запуска.
type Options struct {
	// Simulate исполняет конвейер на in-memory леджере без сети.
	Simulate bool
	// TUI включает экран прогресса; Tail нужен для ленты логов.
	TUI  bool
	Tail *logger.LogBuffer
}

// Runner связывает конфигурацию, клиента леджера и конвейер.
type Runner struct {
	logger   *logger.Logger
	config   *config.Config
	client   blockchain.Client
	registry *prometheus.Registry
	opts     Options
}

func NewRunner(cfg *config.Config, log *logger.Logger, opts Options) *Runner {
	registry := prometheus.NewRegistry()

	var client blockchain.Client
	if opts.Simulate {
		client = fakeledger.New(fakeledger.WithLogger(log.Logger))
		log.Info("Simulation mode: using in-memory ledger")
	} else {
		client = solbc.NewClient(cfg.RPCURL, log.Logger, solbc.Options{
			RequestTimeout: cfg.RequestTimeout(),
			Tx: transaction.Config{
				ConfirmationTime: cfg.ConfirmTimeout(),
				PollInterval:     cfg.ConfirmPollInterval(),
				RequestTimeout:   cfg.RequestTimeout(),
				Commitment:       minter.SettingsFromConfig(cfg).Commitment,
			},
			Metrics: transaction.NewMetrics(registry),
		})
	}

	return &Runner{
		logger:   log,
		config:   cfg,
		client:   client,
		registry: registry,
		opts:     opts,
	}
}

// Run загружает identity и исполняет конвейер.
func (r *Runner) Run(ctx context.Context) (*minter.Result, error) {
	identity, created, err := minter.LoadIdentity(r.config.WalletPath, r.config.PrivateKey)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Identity loaded",
		zap.String("pubkey", identity.PublicKey.String()),
		zap.Bool("created", created))

	var opts []minter.Option
	var events chan minter.Event
	if r.opts.TUI {
		events = make(chan minter.Event)
		opts = append(opts, minter.WithEvents(events))
	}

	m, err := minter.New(r.client, identity, minter.SettingsFromConfig(r.config), r.logger.WithOperation("mint"), opts...)
	if err != nil {
		return nil, err
	}

	if !r.opts.TUI {
		return m.Run(ctx)
	}
	return ui.Run(ctx, events, r.opts.Tail, r.logger.Logger, m.Run)
}

// LogMetricsSummary выводит значения счётчиков транзакций.
func (r *Runner) LogMetricsSummary() {
	families, err := r.registry.Gather()
	if err != nil {
		r.logger.Warn("Failed to gather metrics", zap.Error(err))
		return
	}

	fields := make([]zap.Field, 0, len(families))
	for _, family := range families {
		var total float64
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				total += float64(metric.GetHistogram().GetSampleCount())
			}
		}
		fields = append(fields, zap.Float64(family.GetName(), total))
	}
	if len(fields) == 0 {
		return
	}
	r.logger.Info("Transaction metrics", fields...)
}

// Shutdown сбрасывает буферы логгера.
func (r *Runner) Shutdown() {
	if err := r.logger.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to sync logger during shutdown: %v\n", err)
	}
}
