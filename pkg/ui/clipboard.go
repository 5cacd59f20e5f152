package ui

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/user/course-logs-tui/pkg/models"
)

// ClipboardManager copies row details to the system clipboard
type ClipboardManager struct {
	write  func(string) error
	system bool
}

// NewClipboardManager creates a new clipboard manager
func NewClipboardManager() *ClipboardManager {
	return &ClipboardManager{write: clipboard.WriteAll, system: true}
}

// CopyDetails copies the details blob of row as indented JSON
func (cm *ClipboardManager) CopyDetails(row *models.LogsTableRowModel) (string, error) {
	if row == nil {
		return "", fmt.Errorf("no log selected")
	}

	content, err := detailsJSON(row.Details)
	if err != nil {
		return "", err
	}
	if cm.system && clipboard.Unsupported {
		return "", fmt.Errorf("no clipboard utility found (pbcopy, xclip, xsel, wl-copy)")
	}
	if err := cm.write(content); err != nil {
		return "", fmt.Errorf("copy failed: %w", err)
	}

	return content, nil
}
