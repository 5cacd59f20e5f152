package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/course-logs-tui/pkg/models"
)

// SeverityToggler owns the severity filter state
type SeverityToggler interface {
	ToggleSeverity(severity models.Severity)
	SelectedSeverities() []models.Severity
}

// SeverityFilterPanel lets the user toggle severity levels
type SeverityFilterPanel struct {
	target SeverityToggler
	cursor int
}

// NewSeverityFilterPanel creates a panel that edits target's filter
func NewSeverityFilterPanel(target SeverityToggler) *SeverityFilterPanel {
	return &SeverityFilterPanel{target: target}
}

// ToggleLevel toggles a severity level
func (sfp *SeverityFilterPanel) ToggleLevel(level models.Severity) error {
	if !level.Valid() {
		return fmt.Errorf("invalid severity level: %s", level)
	}
	sfp.target.ToggleSeverity(level)
	return nil
}

// ToggleCurrent toggles the level under the cursor
func (sfp *SeverityFilterPanel) ToggleCurrent() {
	sfp.target.ToggleSeverity(models.SeverityLevels[sfp.cursor])
}

// MoveDown moves the cursor to the next level
func (sfp *SeverityFilterPanel) MoveDown() {
	if sfp.cursor < len(models.SeverityLevels)-1 {
		sfp.cursor++
	}
}

// MoveUp moves the cursor to the previous level
func (sfp *SeverityFilterPanel) MoveUp() {
	if sfp.cursor > 0 {
		sfp.cursor--
	}
}

// IsLevelSelected returns whether a level is part of the filter
func (sfp *SeverityFilterPanel) IsLevelSelected(level models.Severity) bool {
	for _, selected := range sfp.target.SelectedSeverities() {
		if selected == level {
			return true
		}
	}
	return false
}

// Summary describes the filter in one line
func (sfp *SeverityFilterPanel) Summary() string {
	selected := sfp.target.SelectedSeverities()
	if len(selected) == 0 {
		return "all severities"
	}
	return strings.ToLower(models.JoinSeverities(selected))
}

// Render draws the checkbox list
func (sfp *SeverityFilterPanel) Render(focused bool) string {
	var sb strings.Builder
	for i, level := range models.SeverityLevels {
		box := "[ ]"
		if sfp.IsLevelSelected(level) {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, level)
		if focused && i == sfp.cursor {
			line = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")).Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}
