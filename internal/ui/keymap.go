// internal/ui/keymap.go
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap задаёт клавиши экрана прогресса
type KeyMap struct {
	Quit       key.Binding
	ToggleLogs key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "cancel"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "toggle logs"),
		),
	}
}

// ShortHelp для строки подсказок
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.ToggleLogs}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
