package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/course-logs-tui/pkg/models"
)

var (
	statusOK          = lipgloss.NewStyle().Foreground(lipgloss.Color("#008000"))
	statusClientError = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C00"))
	statusServerError = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("25"))
	detailsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// LogsTable renders the rows of the current page
type LogsTable struct {
	rows   []models.LogsTableRowModel
	cursor int
}

// NewLogsTable creates an empty table
func NewLogsTable() *LogsTable {
	return &LogsTable{}
}

// SetRows replaces the rows being shown and moves the cursor to the top.
// The slice is shared with the page cache so expanded rows stay expanded
// when the page is shown again.
func (lt *LogsTable) SetRows(rows []models.LogsTableRowModel) {
	lt.rows = rows
	lt.cursor = 0
}

// Rows returns the rows being shown
func (lt *LogsTable) Rows() []models.LogsTableRowModel {
	return lt.rows
}

// Cursor returns the selected row index
func (lt *LogsTable) Cursor() int {
	return lt.cursor
}

// MoveDown moves the selection one row down
func (lt *LogsTable) MoveDown() {
	if lt.cursor < len(lt.rows)-1 {
		lt.cursor++
	}
}

// MoveUp moves the selection one row up
func (lt *LogsTable) MoveUp() {
	if lt.cursor > 0 {
		lt.cursor--
	}
}

// Selected returns the selected row, or nil for an empty table
func (lt *LogsTable) Selected() *models.LogsTableRowModel {
	if lt.cursor < 0 || lt.cursor >= len(lt.rows) {
		return nil
	}
	return &lt.rows[lt.cursor]
}

// ToggleDetails expands or collapses the details of row i
func (lt *LogsTable) ToggleDetails(i int) {
	if i < 0 || i >= len(lt.rows) {
		return
	}
	lt.rows[i].IsDetailsExpanded = !lt.rows[i].IsDetailsExpanded
}

// StatusStyle colours an HTTP status by class
func StatusStyle(httpStatus int) lipgloss.Style {
	switch {
	case httpStatus >= 200 && httpStatus < 300:
		return statusOK
	case httpStatus >= 400 && httpStatus < 500:
		return statusClientError
	case httpStatus >= 500 && httpStatus < 600:
		return statusServerError
	default:
		return lipgloss.NewStyle()
	}
}

// Render draws the table in at most height lines
func (lt *LogsTable) Render(width, height int) string {
	summaryWidth := maxInt(width-24-9-7-9-8, 10)

	var lines []string
	lines = append(lines, tableHeaderStyle.Render(fmt.Sprintf("%s %s %s %s %s",
		padRight("Timestamp", 24), padRight("Severity", 8), padRight("Status", 6), padRight("Time", 8), "Summary")))

	if len(lt.rows) == 0 {
		lines = append(lines, detailsStyle.Render("No logs found"))
	}

	for i, row := range lt.rows {
		status := padRight("", 6)
		if row.HTTPStatus != nil {
			status = StatusStyle(*row.HTTPStatus).Render(padRight(fmt.Sprintf("%d", *row.HTTPStatus), 6))
		}
		took := padRight("", 8)
		if row.ResponseTime != nil {
			took = padRight(fmt.Sprintf("%dms", *row.ResponseTime), 8)
		}
		marker := "▸ "
		if row.IsDetailsExpanded {
			marker = "▾ "
		}

		line := fmt.Sprintf("%s%s %s %s %s %s",
			marker,
			padRight(row.Timestamp, 24),
			severityBadge(row.Severity),
			status,
			took,
			truncate(row.Summary, summaryWidth))
		if i == lt.cursor {
			line = selectedRowStyle.Render(line)
		}
		lines = append(lines, line)

		if row.IsDetailsExpanded {
			for _, detail := range detailsTree(row.Details) {
				lines = append(lines, detailsStyle.Render("    "+truncate(detail, width-6)))
			}
		}
	}

	return strings.Join(windowAround(lines, lt.cursorLine(), height), "\n")
}

// cursorLine is the line of the selected row, counting the header
func (lt *LogsTable) cursorLine() int {
	line := 1
	for i := 0; i < lt.cursor && i < len(lt.rows); i++ {
		line++
		if lt.rows[i].IsDetailsExpanded {
			line += len(detailsTree(lt.rows[i].Details))
		}
	}
	return line
}

// windowAround keeps the header and a window of lines containing focus
func windowAround(lines []string, focus, height int) []string {
	if height <= 1 || len(lines) <= height {
		return lines
	}
	body := lines[1:]
	focus--
	visible := height - 1
	start := focus - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > len(body) {
		start = len(body) - visible
	}
	return append([]string{lines[0]}, body[start:start+visible]...)
}

func severityBadge(severity models.Severity) string {
	switch severity {
	case models.SeverityError:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Render(padRight("ERROR", 8))
	case models.SeverityWarning:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("214")).Render(padRight("WARNING", 8))
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("81")).Render(padRight(string(severity), 8))
	}
}
