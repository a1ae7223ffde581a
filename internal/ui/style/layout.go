// internal/ui/style/layout.go
package style

import "github.com/charmbracelet/lipgloss"

var palette = DefaultPalette()

// Заголовки
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true)
)

// Пары ключ-значение
var (
	LabelStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Width(22)

	ValueStyle = lipgloss.NewStyle().
			Foreground(palette.Text)
)

// Статусы
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	PendingStyle = lipgloss.NewStyle().
			Foreground(palette.Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

var PanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(palette.Primary).
	Padding(0, 2)
