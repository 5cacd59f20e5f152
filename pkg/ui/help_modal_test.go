package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func TestHelpModalVisibility(t *testing.T) {
	hm := NewHelpModal(DefaultKeyMap(true))
	if hm.IsVisible() {
		t.Error("Help modal should not be visible by default")
	}
	if hm.Render(80, 24) != "" {
		t.Error("Hidden modal should render nothing")
	}

	hm.SetVisible(true)
	out := hm.Render(100, 40)
	for _, want := range []string{"COURSE LOGS HELP", "next page", "copy course", "toggle details"} {
		if !strings.Contains(out, want) {
			t.Errorf("Help should mention %q", want)
		}
	}
}

func TestShortHelp(t *testing.T) {
	hm := NewHelpModal(DefaultKeyMap(false))
	if out := hm.ShortHelp(200); !strings.Contains(out, "quit") {
		t.Errorf("Short help should mention quit, got %q", out)
	}
}

func TestKeyMapVimMode(t *testing.T) {
	j := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}

	if !key.Matches(j, DefaultKeyMap(true).Down) {
		t.Error("j should move down in vim mode")
	}
	if key.Matches(j, DefaultKeyMap(false).Down) {
		t.Error("j should not move down without vim mode")
	}
	if !key.Matches(tea.KeyMsg{Type: tea.KeyDown}, DefaultKeyMap(false).Down) {
		t.Error("down arrow should always move down")
	}
}
