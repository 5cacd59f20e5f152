package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHorizontalSplit renders panes side by side, each padded to its width
func renderHorizontalSplit(panes []string, widths []int) string {
	if len(panes) == 0 {
		return ""
	}
	columns := make([]string, 0, len(panes))
	for i, pane := range panes {
		width := 0
		if i < len(widths) {
			width = widths[i]
		}
		columns = append(columns, lipgloss.NewStyle().Width(width).MaxWidth(width).Render(pane))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// StyleBorder draws content inside a titled border
func StyleBorder(content string, width int, title string, focused bool) string {
	style := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("241")).
		Width(maxInt(width-2, 1))
	if focused {
		style = style.BorderStyle(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("81"))
	}
	return style.Render(CreateHeader(title, maxInt(width-2, 1), focused) + "\n" + strings.TrimRight(content, "\n"))
}

// CreateHeader creates a pane header with title
func CreateHeader(title string, width int, focused bool) string {
	corner := "├"
	if focused {
		corner = "┣"
	}

	line := corner + "─" + title + "─"
	if fill := width - lipgloss.Width(line); fill > 0 {
		line += strings.Repeat("─", fill)
	}
	return line
}

// renderCenteredPopup draws popup over the middle of base
func renderCenteredPopup(base, popup string, width, height int) string {
	baseLines := strings.Split(strings.TrimRight(base, "\n"), "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	popupLines := strings.Split(strings.TrimRight(popup, "\n"), "\n")
	if len(popupLines) == 0 {
		return base
	}
	startRow := maxInt(1, (height-len(popupLines))/2)
	for i, line := range popupLines {
		row := startRow + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		leftPad := maxInt(0, (width-lipgloss.Width(line))/2)
		baseLines[row] = strings.Repeat(" ", leftPad) + line
	}
	return strings.Join(baseLines, "\n")
}
