// internal/ui/run.go
package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/solana-nft-mint/internal/logger"
	"github.com/rovshanmuradov/solana-nft-mint/internal/minter"
	"go.uber.org/zap"
)

// Pipeline прогоняет конвейер; события стадий идут в events.
type Pipeline func(ctx context.Context) (*minter.Result, error)

// Run исполняет pipeline в отдельной горутине и показывает прогресс.
// Возвращает итог конвейера, даже если интерфейс завершился с ошибкой.
func Run(ctx context.Context, events <-chan minter.Event, logs *logger.LogBuffer, log *zap.Logger, pipeline Pipeline, opts ...tea.ProgramOption) (*minter.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcome := make(chan OutcomeMsg, 1)
	go func() {
		result, err := pipeline(ctx)
		outcome <- OutcomeMsg{Result: result, Err: err}
	}()

	model := NewProgressModel(events, outcome, cancel, logs)
	if _, err := tea.NewProgram(NewSafeModel(model, log), opts...).Run(); err != nil {
		log.Error("Progress view failed", zap.Error(err))
	}

	if out, ok := model.Outcome(); ok {
		return out.Result, out.Err
	}

	// интерфейс закрылся раньше конвейера
	cancel()
	out := <-outcome
	return out.Result, out.Err
}
