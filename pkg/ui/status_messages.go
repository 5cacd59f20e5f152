package ui

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ToastKind is the flavour of a status message
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
)

// DefaultToastDuration is how long a toast stays visible
const DefaultToastDuration = 6 * time.Second

// Toast represents a single status message
type Toast struct {
	Kind      ToastKind
	Text      string
	Timestamp time.Time
	Duration  time.Duration
}

// StatusMessages keeps the toasts shown at the bottom of the screen
type StatusMessages struct {
	messages []Toast
	maxSize  int
	now      func() time.Time
}

// NewStatusMessages creates an empty toast queue
func NewStatusMessages() *StatusMessages {
	return &StatusMessages{
		messages: []Toast{},
		maxSize:  10,
		now:      time.Now,
	}
}

// ShowSuccessToast queues a success message
func (sm *StatusMessages) ShowSuccessToast(text string) {
	sm.add(ToastSuccess, text)
}

// ShowWarningToast queues a warning message
func (sm *StatusMessages) ShowWarningToast(text string) {
	sm.add(ToastWarning, text)
}

// ShowErrorToast queues an error message
func (sm *StatusMessages) ShowErrorToast(text string) {
	sm.add(ToastError, text)
}

func (sm *StatusMessages) add(kind ToastKind, text string) {
	sm.messages = append(sm.messages, Toast{
		Kind:      kind,
		Text:      text,
		Timestamp: sm.now(),
		Duration:  DefaultToastDuration,
	})

	// Keep only maxSize messages
	if len(sm.messages) > sm.maxSize {
		sm.messages = sm.messages[len(sm.messages)-sm.maxSize:]
	}
}

// ClearExpired removes expired messages
func (sm *StatusMessages) ClearExpired() {
	now := sm.now()
	active := sm.messages[:0]
	for _, msg := range sm.messages {
		if msg.Duration == 0 || now.Sub(msg.Timestamp) < msg.Duration {
			active = append(active, msg)
		}
	}
	sm.messages = active
}

// Latest returns the most recent live toast, or nil
func (sm *StatusMessages) Latest() *Toast {
	sm.ClearExpired()
	if len(sm.messages) == 0 {
		return nil
	}
	return &sm.messages[len(sm.messages)-1]
}

// Clear removes all messages
func (sm *StatusMessages) Clear() {
	sm.messages = []Toast{}
}

// RenderToast renders the latest message as a bordered toast
func (sm *StatusMessages) RenderToast(width int) string {
	latest := sm.Latest()
	if latest == nil {
		return ""
	}

	color, icon := lipgloss.Color("42"), "✔ "
	switch latest.Kind {
	case ToastWarning:
		color, icon = lipgloss.Color("214"), "! "
	case ToastError:
		color, icon = lipgloss.Color("9"), "⚠ "
	}

	style := lipgloss.NewStyle().
		Foreground(color).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(maxInt(width-2, 10))

	return style.Render(icon + truncate(latest.Text, width-4))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
