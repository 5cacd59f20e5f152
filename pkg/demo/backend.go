// Package demo serves generated course management logs from memory so the
// TUI can be tried without a backend.
package demo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/query"
)

// DefaultPageSize is the number of entries per demo page
const DefaultPageSize = 20

var demoRequests = []struct {
	method string
	url    string
	action string
	status int
}{
	{"GET", "/webapi/course", "GetCourseAction", 200},
	{"GET", "/webapi/sessions", "GetFeedbackSessionsAction", 200},
	{"PUT", "/webapi/session", "UpdateFeedbackSessionAction", 200},
	{"POST", "/webapi/course", "CreateCourseAction", 409},
	{"GET", "/webapi/student", "GetStudentAction", 404},
	{"POST", "/webapi/submission", "SubmitFeedbackResponsesAction", 500},
}

var demoMessages = []string{
	"Sending reminder emails for session Week 1 Survey",
	"Cron job UpdateDataBundle finished\n\ttook 1200ms",
	"Datastore contention on entity Course/CS101, retrying",
}

// Backend is an in-memory logs source with continuation tokens
type Backend struct {
	mu       sync.Mutex
	entries  []models.GeneralLogEntry
	pageSize int
}

// NewBackend creates a backend holding the given entries
func NewBackend(entries []models.GeneralLogEntry, pageSize int) *Backend {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	sorted := append([]models.GeneralLogEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return &Backend{entries: sorted, pageSize: pageSize}
}

// NewGeneratedBackend creates a backend with count entries, one a minute,
// ending at now
func NewGeneratedBackend(now time.Time, count, pageSize int) *Backend {
	return NewBackend(GenerateEntries(now, count), pageSize)
}

// GenerateEntries builds count deterministic entries, one a minute
// backwards from now
func GenerateEntries(now time.Time, count int) []models.GeneralLogEntry {
	entries := make([]models.GeneralLogEntry, 0, count)
	for i := 0; i < count; i++ {
		ts := now.Add(-time.Duration(i) * time.Minute).UnixMilli()
		trace := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("demo-trace-%d", i))).String()

		if i%4 == 3 {
			entries = append(entries, models.GeneralLogEntry{
				Timestamp:      ts,
				Severity:       models.SeverityWarning,
				Payload:        models.LogPayload{Type: models.PayloadString, Data: demoMessages[i%len(demoMessages)]},
				SourceLocation: models.SourceLocation{File: "teammates.logic.core.EmailSender", Line: int64(100 + i), Function: "send"},
				Trace:          trace,
			})
			continue
		}

		req := demoRequests[i%len(demoRequests)]
		severity := models.SeverityInfo
		if req.status >= 500 {
			severity = models.SeverityError
		} else if req.status >= 400 {
			severity = models.SeverityWarning
		}
		entries = append(entries, models.GeneralLogEntry{
			Timestamp: ts,
			Severity:  severity,
			Payload:   models.LogPayload{Type: models.PayloadJSON},
			JSONObject: map[string]interface{}{
				"requestMethod":  req.method,
				"requestUrl":     req.url,
				"responseStatus": float64(req.status),
				"responseTime":   float64(20 + (i*37)%400),
				"actionClass":    req.action,
				"userInfo":       map[string]interface{}{"googleId": "demo.instructor"},
			},
			SourceLocation: models.SourceLocation{File: "teammates.ui.webapi.ActionFactory", Line: 88, Function: "execute"},
			Trace:          trace,
		})
	}
	return entries
}

// SearchLogs returns the page selected by params. The token is the offset
// of the next matching entry.
func (b *Backend) SearchLogs(ctx context.Context, params models.QueryParams) (models.GeneralLogs, error) {
	if err := ctx.Err(); err != nil {
		return models.GeneralLogs{}, err
	}
	if err := query.ValidateParams(params); err != nil {
		return models.GeneralLogs{}, err
	}

	from, _ := query.ParseMillis(params.SearchFrom)
	until, _ := query.ParseMillis(params.SearchUntil)
	levels, _ := query.SplitSeverities(params.Severities)

	offset := 0
	if params.NextPageToken != "" {
		parsed, err := strconv.Atoi(params.NextPageToken)
		if err != nil || parsed < 0 {
			return models.GeneralLogs{}, fmt.Errorf("invalid page token %q", params.NextPageToken)
		}
		offset = parsed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []models.GeneralLogEntry
	for _, entry := range b.entries {
		if entry.Timestamp < from.UnixMilli() || entry.Timestamp > until.UnixMilli() {
			continue
		}
		if !matchesSeverity(entry.Severity, levels, models.Severity(params.MinSeverity)) {
			continue
		}
		if params.APIEndpoint != "" && entry.JSONObject["requestUrl"] != params.APIEndpoint {
			continue
		}
		if params.TraceID != "" && entry.Trace != params.TraceID {
			continue
		}
		matched = append(matched, entry)
	}

	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + b.pageSize
	result := models.GeneralLogs{LogEntries: []models.GeneralLogEntry{}}
	if end < len(matched) {
		result.NextPageToken = strconv.Itoa(end)
	} else {
		end = len(matched)
	}
	result.LogEntries = append(result.LogEntries, matched[offset:end]...)
	return result, nil
}

func matchesSeverity(severity models.Severity, levels []models.Severity, min models.Severity) bool {
	if min != "" && rank(severity) < rank(min) {
		return false
	}
	if len(levels) == 0 {
		return true
	}
	for _, level := range levels {
		if level == severity {
			return true
		}
	}
	return false
}

func rank(severity models.Severity) int {
	for i, level := range models.SeverityLevels {
		if level == severity {
			return i
		}
	}
	return -1
}
