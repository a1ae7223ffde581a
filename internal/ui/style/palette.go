// internal/ui/style/palette.go
package style

import "github.com/charmbracelet/lipgloss"

// Цвета интерфейса
var (
	Cyan    = lipgloss.Color("#00E5FF") // основной акцент
	Magenta = lipgloss.Color("#FF1B6B")
	Yellow  = lipgloss.Color("#FFB500") // ожидание
	Green   = lipgloss.Color("#2AFFAA") // успех
	Red     = lipgloss.Color("#FF5555") // ошибки
	Blue    = lipgloss.Color("#3B82F6")

	Base02 = lipgloss.Color("#262831")
	Base01 = lipgloss.Color("#6C7280") // приглушённый текст
	Base2  = lipgloss.Color("#ECEFF4")
	Base1  = lipgloss.Color("#B4BCC8")
)

// Palette собирает цвета по назначению.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color
}

func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,
	}
}
