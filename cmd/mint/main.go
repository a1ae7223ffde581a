// cmd/mint/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/solana-nft-mint/internal/app"
	"github.com/rovshanmuradov/solana-nft-mint/internal/config"
	"github.com/rovshanmuradov/solana-nft-mint/internal/logger"
	"github.com/rovshanmuradov/solana-nft-mint/internal/minter"
	"github.com/rovshanmuradov/solana-nft-mint/internal/report"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file (JSON/YAML)")
	useTUI := flag.Bool("tui", false, "Show interactive progress view")
	simulate := flag.Bool("simulate", false, "Run against the in-memory ledger")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return minter.ExitConfig
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	if *useTUI {
		// консоль занята экраном прогресса
		logCfg.Console = false
		logCfg.Tail = logger.NewLogBuffer(200)
	}
	appLogger, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		return minter.ExitConfig
	}

	runner := app.NewRunner(cfg, appLogger, app.Options{
		Simulate: *simulate,
		TUI:      *useTUI,
		Tail:     logCfg.Tail,
	})
	defer runner.Shutdown()

	appLogger.Info("Starting NFT mint", zap.String("rpc", cfg.RPCURL), zap.Bool("simulate", *simulate))
	result, err := runner.Run(ctx)
	runner.LogMetricsSummary()

	code := minter.ExitCode(err)
	if err != nil {
		appLogger.Error("Mint failed", zap.Error(err), zap.Int("exit_code", code))
		fmt.Println(report.RenderFailure(err, code))
		return code
	}

	fmt.Println(report.Render(result))
	return minter.ExitOK
}
