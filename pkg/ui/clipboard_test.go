package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/user/course-logs-tui/pkg/models"
)

func newTestClipboard(write func(string) error) *ClipboardManager {
	return &ClipboardManager{write: write}
}

func TestCopyDetails(t *testing.T) {
	var written string
	cm := newTestClipboard(func(s string) error {
		written = s
		return nil
	})

	row := &models.LogsTableRowModel{Details: models.LogDetails{
		SourceLocation: models.SourceLocation{File: "Foo.java", Line: 3},
		Trace:          "trace-9",
		Payload:        map[string]interface{}{"requestUrl": "/webapi/course"},
	}}

	content, err := cm.CopyDetails(row)
	if err != nil {
		t.Fatalf("CopyDetails failed: %v", err)
	}
	if content != written {
		t.Error("Returned content should be what was written")
	}
	for _, want := range []string{`"trace": "trace-9"`, `"file": "Foo.java"`, `"requestUrl": "/webapi/course"`} {
		if !strings.Contains(content, want) {
			t.Errorf("Content should contain %s:\n%s", want, content)
		}
	}
}

func TestCopyDetailsErrors(t *testing.T) {
	cm := newTestClipboard(func(string) error { return errors.New("no display") })

	if _, err := cm.CopyDetails(nil); err == nil {
		t.Error("CopyDetails should fail without a row")
	}

	_, err := cm.CopyDetails(&models.LogsTableRowModel{})
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("Expected write failure, got %v", err)
	}
}
