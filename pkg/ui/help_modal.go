package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var helpGroups = []string{"Table", "Pages", "Search", "Other"}

// HelpModal shows the key bindings
type HelpModal struct {
	visible bool
	keys    KeyMap
	short   help.Model
}

// NewHelpModal creates a help modal for keys
func NewHelpModal(keys KeyMap) *HelpModal {
	return &HelpModal{keys: keys, short: help.New()}
}

// SetVisible toggles visibility
func (hm *HelpModal) SetVisible(visible bool) {
	hm.visible = visible
}

// IsVisible returns current visibility state
func (hm *HelpModal) IsVisible() bool {
	return hm.visible
}

// ShortHelp renders the one line key summary for the status bar
func (hm *HelpModal) ShortHelp(width int) string {
	hm.short.Width = width
	return hm.short.ShortHelpView(hm.keys.ShortHelp())
}

// Render renders the help modal
func (hm *HelpModal) Render(width, height int) string {
	if !hm.visible {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("COURSE LOGS HELP"))
	sb.WriteString("\n\n")

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	separatorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	groupWidth, keyWidth := 8, 14
	actionWidth := maxInt(width-groupWidth-keyWidth-12, 20)

	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %s", groupWidth, "GROUP", keyWidth, "KEY", "ACTION")))
	sb.WriteString("\n")
	sb.WriteString(separatorStyle.Render(strings.Repeat("─", groupWidth+keyWidth+actionWidth+2)))
	sb.WriteString("\n")
	for i, column := range hm.keys.FullHelp() {
		for j, binding := range column {
			group := ""
			if j == 0 && i < len(helpGroups) {
				group = helpGroups[i]
			}
			h := binding.Help()
			sb.WriteString(fmt.Sprintf("%-*s %-*s %s\n", groupWidth, group, keyWidth, h.Key, truncate(h.Desc, actionWidth)))
		}
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(1).
		Width(maxInt(width-4, 40)).
		MaxHeight(maxInt(height, 10)).
		Render(sb.String())
}
