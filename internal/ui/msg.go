// internal/ui/msg.go
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/solana-nft-mint/internal/minter"
)

// StageEventMsg несёт событие стадии из конвейера.
type StageEventMsg struct {
	Event minter.Event
}

// OutcomeMsg приходит один раз, когда конвейер завершился.
type OutcomeMsg struct {
	Result *minter.Result
	Err    error
}

// listen ждёт следующее событие или итог конвейера.
func listen(events <-chan minter.Event, outcome <-chan OutcomeMsg) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-events:
			return StageEventMsg{Event: ev}
		case out := <-outcome:
			return out
		}
	}
}
