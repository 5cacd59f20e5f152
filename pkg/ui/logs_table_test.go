package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/course-logs-tui/pkg/models"
)

func intPtr(v int) *int { return &v }

func sampleRows() []models.LogsTableRowModel {
	return []models.LogsTableRowModel{
		{Timestamp: "01 Jan, 2024 12:00:00 PM", Severity: models.SeverityInfo, Summary: "GET /webapi/course GetCourseAction", HTTPStatus: intPtr(200)},
		{Timestamp: "01 Jan, 2024 12:00:01 PM", Severity: models.SeverityError, Summary: "Source: Foo.java", Details: models.LogDetails{Trace: "t-1", Payload: "boom"}},
	}
}

func TestLogsTableToggleDetails(t *testing.T) {
	rows := sampleRows()
	lt := NewLogsTable()
	lt.SetRows(rows)

	lt.ToggleDetails(1)
	if !rows[1].IsDetailsExpanded {
		t.Error("Toggle should mutate the shared row")
	}
	lt.ToggleDetails(1)
	if rows[1].IsDetailsExpanded {
		t.Error("Second toggle should collapse the row")
	}

	lt.ToggleDetails(-1)
	lt.ToggleDetails(5)
}

func TestLogsTableCursor(t *testing.T) {
	lt := NewLogsTable()
	if lt.Selected() != nil {
		t.Error("Empty table has no selection")
	}

	lt.SetRows(sampleRows())
	lt.MoveUp()
	if lt.Cursor() != 0 {
		t.Errorf("Cursor should stay at 0, got %d", lt.Cursor())
	}
	lt.MoveDown()
	lt.MoveDown()
	if lt.Cursor() != 1 {
		t.Errorf("Cursor should stop at the last row, got %d", lt.Cursor())
	}
	if lt.Selected().Summary != "Source: Foo.java" {
		t.Errorf("Unexpected selection %+v", lt.Selected())
	}

	lt.SetRows(sampleRows()[:1])
	if lt.Cursor() != 0 {
		t.Errorf("Cursor should reset when rows change, got %d", lt.Cursor())
	}
}

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status int
		color  string
	}{
		{200, "#008000"},
		{204, "#008000"},
		{404, "#FF8C00"},
		{503, "#FF0000"},
	}

	for _, tt := range tests {
		got := StatusStyle(tt.status).GetForeground()
		if got != lipgloss.Color(tt.color) {
			t.Errorf("StatusStyle(%d) = %v, want %s", tt.status, got, tt.color)
		}
	}

	if _, ok := StatusStyle(302).GetForeground().(lipgloss.NoColor); !ok {
		t.Error("3xx should not be coloured")
	}
}

func TestLogsTableRender(t *testing.T) {
	rows := sampleRows()
	lt := NewLogsTable()
	lt.SetRows(rows)

	out := lt.Render(120, 40)
	if !strings.Contains(out, "GetCourseAction") || !strings.Contains(out, "Timestamp") {
		t.Errorf("Render should contain the header and summaries:\n%s", out)
	}
	if strings.Contains(out, `"boom"`) {
		t.Error("Collapsed details should not be rendered")
	}

	lt.ToggleDetails(1)
	out = lt.Render(120, 40)
	if !strings.Contains(out, `"boom"`) || !strings.Contains(out, `"t-1"`) {
		t.Errorf("Expanded details should be rendered:\n%s", out)
	}

	if empty := NewLogsTable().Render(80, 10); !strings.Contains(empty, "No logs found") {
		t.Errorf("Empty table should say so, got %q", empty)
	}
}

func TestWindowAround(t *testing.T) {
	lines := []string{"h", "0", "1", "2", "3", "4", "5"}
	got := windowAround(lines, 6, 3)
	if len(got) != 3 || got[0] != "h" || got[2] != "5" {
		t.Errorf("Unexpected window %v", got)
	}
	if got := windowAround(lines, 1, 20); len(got) != len(lines) {
		t.Errorf("Short content should be returned whole, got %v", got)
	}
}
