// internal/ui/progress.go
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/solana-nft-mint/internal/logger"
	"github.com/rovshanmuradov/solana-nft-mint/internal/minter"
	"github.com/rovshanmuradov/solana-nft-mint/internal/ui/style"
)

const logLines = 6

type stageState int

const (
	statePending stageState = iota
	stateRunning
	stateDone
	stateFailed
)

type stageRow struct {
	stage  minter.Stage
	state  stageState
	detail string
	err    error
}

// ProgressModel показывает ход конвейера по стадиям.
type ProgressModel struct {
	events  <-chan minter.Event
	outcome <-chan OutcomeMsg
	cancel  context.CancelFunc

	rows     []stageRow
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap
	logs     *logger.LogBuffer
	showLogs bool

	canceling bool
	finished  bool
	result    OutcomeMsg
	width     int
}

// NewProgressModel создаёт модель; logs может быть nil.
func NewProgressModel(events <-chan minter.Event, outcome <-chan OutcomeMsg, cancel context.CancelFunc, logs *logger.LogBuffer) *ProgressModel {
	rows := make([]stageRow, 0, len(minter.Stages))
	for _, s := range minter.Stages {
		rows = append(rows, stageRow{stage: s})
	}

	return &ProgressModel{
		events:  events,
		outcome: outcome,
		cancel:  cancel,
		rows:    rows,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(style.PendingStyle),
		),
		help:     help.New(),
		keys:     DefaultKeyMap(),
		logs:     logs,
		showLogs: logs != nil,
	}
}

func (m *ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, listen(m.events, m.outcome))
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ждём OutcomeMsg: конвейер остановится на ближайшем вызове
			if !m.canceling && m.cancel != nil {
				m.canceling = true
				m.cancel()
			}
		case key.Matches(msg, m.keys.ToggleLogs):
			m.showLogs = !m.showLogs && m.logs != nil
		}
		return m, nil

	case StageEventMsg:
		m.apply(msg.Event)
		return m, listen(m.events, m.outcome)

	case OutcomeMsg:
		m.finished = true
		m.result = msg
		return m, tea.Quit

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ProgressModel) apply(ev minter.Event) {
	for i := range m.rows {
		if m.rows[i].stage != ev.Stage {
			continue
		}
		row := &m.rows[i]
		switch ev.Status {
		case minter.EventStarted:
			row.state = stateRunning
		case minter.EventDone:
			row.state = stateDone
			row.detail = ev.Detail
		case minter.EventFailed:
			row.state = stateFailed
			row.err = ev.Err
		}
		return
	}
}

// Outcome возвращает итог после завершения программы.
func (m *ProgressModel) Outcome() (OutcomeMsg, bool) {
	return m.result, m.finished
}

func (m *ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(style.HeaderStyle.Render("Solana NFT mint"))
	b.WriteString("\n")

	for _, row := range m.rows {
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	if m.canceling && !m.finished {
		b.WriteString("\n")
		b.WriteString(style.PendingStyle.Render("Canceling, waiting for the current call to return..."))
		b.WriteString("\n")
	}

	if m.showLogs {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
		b.WriteString("\n")
	}

	if !m.finished {
		b.WriteString(m.help.View(m.keys))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *ProgressModel) renderRow(row stageRow) string {
	var icon, text string
	switch row.state {
	case stateRunning:
		icon = m.spinner.View()
		text = style.ValueStyle.Render(string(row.stage))
	case stateDone:
		icon = style.SuccessStyle.Render("✓")
		text = style.ValueStyle.Render(string(row.stage))
		if row.detail != "" {
			text += " " + style.MutedStyle.Render(row.detail)
		}
	case stateFailed:
		icon = style.ErrorStyle.Render("✗")
		text = style.ErrorStyle.Render(string(row.stage))
		if row.err != nil {
			text += " " + style.MutedStyle.Render(row.err.Error())
		}
	default:
		icon = style.MutedStyle.Render("·")
		text = style.MutedStyle.Render(string(row.stage))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, " ", icon, " ", text)
}

func (m *ProgressModel) renderLogs() string {
	entries := m.logs.GetRecentLogs(logLines)
	if len(entries) == 0 {
		return style.MutedStyle.Render("No logs yet")
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		levelStyle := style.MutedStyle
		switch e.Level {
		case "ERROR", "FATAL":
			levelStyle = style.ErrorStyle
		case "WARN":
			levelStyle = style.PendingStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			style.MutedStyle.Render(e.Timestamp.Format("15:04:05")),
			levelStyle.Render(fmt.Sprintf("%-5s", e.Level)),
			e.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		style.TitleStyle.Render("Recent logs"),
		strings.Join(lines, "\n"))
}
