// internal/ui/progress_test.go
package ui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/solana-nft-mint/internal/logger"
	"github.com/rovshanmuradov/solana-nft-mint/internal/minter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProgressModel_AppliesEvents(t *testing.T) {
	m := NewProgressModel(nil, nil, nil, nil)

	_, cmd := m.Update(StageEventMsg{Event: minter.Event{Stage: minter.StageFunding, Status: minter.EventStarted}})
	assert.NotNil(t, cmd, "model keeps listening after an event")
	assert.Equal(t, stateRunning, m.rows[1].state)

	m.Update(StageEventMsg{Event: minter.Event{Stage: minter.StageFunding, Status: minter.EventDone}})
	m.Update(StageEventMsg{Event: minter.Event{Stage: minter.StageMintAccount, Status: minter.EventDone, Detail: "MintAddr111"}})
	m.Update(StageEventMsg{Event: minter.Event{Stage: minter.StageTokenAccount, Status: minter.EventFailed, Err: errors.New("rent query failed")}})

	assert.Equal(t, stateDone, m.rows[1].state)
	assert.Equal(t, stateFailed, m.rows[3].state)
	assert.Equal(t, statePending, m.rows[4].state)

	view := m.View()
	assert.Contains(t, view, "MintAddr111")
	assert.Contains(t, view, "rent query failed")
	assert.Contains(t, view, string(minter.StageEdition))
}

func TestProgressModel_QuitCancelsOnce(t *testing.T) {
	calls := 0
	m := NewProgressModel(nil, nil, func() { calls++ }, nil)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	assert.Equal(t, 1, calls)
	_, finished := m.Outcome()
	assert.False(t, finished, "model waits for the pipeline to stop")
	assert.Contains(t, m.View(), "Canceling")
}

func TestProgressModel_Outcome(t *testing.T) {
	m := NewProgressModel(nil, nil, nil, nil)
	want := &minter.Result{}

	_, cmd := m.Update(OutcomeMsg{Result: want})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	out, finished := m.Outcome()
	assert.True(t, finished)
	assert.Same(t, want, out.Result)
}

func TestProgressModel_LogsTail(t *testing.T) {
	buf := logger.NewLogBuffer(10)
	buf.Add(logger.LogEntry{Level: "INFO", Message: "Airdrop requested"})
	m := NewProgressModel(nil, nil, nil, buf)

	assert.Contains(t, m.View(), "Airdrop requested")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.NotContains(t, m.View(), "Airdrop requested")
}

type panicModel struct{}

func (panicModel) Init() tea.Cmd                       { return nil }
func (panicModel) Update(tea.Msg) (tea.Model, tea.Cmd) { panic("update exploded") }
func (panicModel) View() string                        { panic("view exploded") }

func TestSafeModel_RecoversPanics(t *testing.T) {
	sm := NewSafeModel(panicModel{}, zap.NewNop())

	assert.NotPanics(t, func() {
		model, cmd := sm.Update(tea.KeyMsg{})
		assert.Same(t, sm, model)
		assert.Nil(t, cmd)
	})
	assert.Contains(t, sm.View(), "UI Error")
}

func TestRun_ReturnsPipelineOutcome(t *testing.T) {
	events := make(chan minter.Event)
	want := &minter.Result{}

	pipeline := func(ctx context.Context) (*minter.Result, error) {
		for _, stage := range minter.Stages {
			select {
			case events <- minter.Event{Stage: stage, Status: minter.EventDone}:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return want, nil
	}

	var out bytes.Buffer
	result, err := Run(context.Background(), events, nil, zap.NewNop(), pipeline,
		tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())
	require.NoError(t, err)
	assert.Same(t, want, result)
}
