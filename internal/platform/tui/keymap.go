package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/flapline/internal/core"
)

// KeyMapper translates Bubble Tea key messages to driver actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) core.Action {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit
	case " ", "up", "w", "k", "enter":
		return core.ActionFlap
	case "esc", "r":
		return core.ActionReset
	case "ctrl+s":
		return core.ActionShot
	}
	return core.ActionNone
}
