package logservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/query"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Options{
		BaseURL:   srv.URL,
		AuthToken: "secret",
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Options{}); !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("Expected ErrNoBaseURL, got %v", err)
	}
	if _, err := NewClient(Options{BaseURL: "localhost"}); err == nil {
		t.Error("URL without scheme should be rejected")
	}
}

func TestSearchLogsSendsOnlySetParams(t *testing.T) {
	var got url.Values
	var headers http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != DefaultLogsEndpoint {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		got = r.URL.Query()
		headers = r.Header
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"logEntries":[{"timestamp":1700000000000,"severity":"INFO","payload":{"type":"STRING","data":"hello"},"sourceLocation":{"file":"A.java","line":3,"function":"run"},"trace":"t1"}],"nextPageToken":"next-1"}`))
	})

	logs, err := client.SearchLogs(context.Background(), models.QueryParams{
		SearchFrom:  "1",
		SearchUntil: "2",
		Severities:  "INFO,ERROR",
	})
	if err != nil {
		t.Fatalf("SearchLogs failed: %v", err)
	}

	if got.Get("startTime") != "1" || got.Get("endTime") != "2" || got.Get("severity") != "INFO,ERROR" {
		t.Errorf("Unexpected query: %v", got)
	}
	for _, key := range []string{"minSeverity", "nextPageToken", "APIEndpoint", "traceId"} {
		if _, ok := got[key]; ok {
			t.Errorf("Unset param %s should not be sent", key)
		}
	}
	if headers.Get("Authorization") != "Bearer secret" {
		t.Errorf("Expected bearer token, got %q", headers.Get("Authorization"))
	}
	if headers.Get("X-Request-Id") == "" {
		t.Error("Expected a request id header")
	}

	if logs.NextPageToken != "next-1" {
		t.Errorf("Expected next page token, got %q", logs.NextPageToken)
	}
	if len(logs.LogEntries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(logs.LogEntries))
	}
	entry := logs.LogEntries[0]
	if entry.Severity != models.SeverityInfo || entry.Payload.Type != models.PayloadString || entry.SourceLocation.File != "A.java" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}

func TestSearchLogsEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	logs, err := client.SearchLogs(context.Background(), models.QueryParams{SearchFrom: "1", SearchUntil: "2"})
	if err != nil {
		t.Fatalf("SearchLogs failed: %v", err)
	}
	if logs.LogEntries == nil || len(logs.LogEntries) != 0 {
		t.Errorf("Expected empty non-nil entries, got %#v", logs.LogEntries)
	}
	if logs.NextPageToken != "" {
		t.Errorf("Expected no token, got %q", logs.NextPageToken)
	}
}

func TestSearchLogsBackendMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The search period cannot exceed 30 days"}`))
	})

	_, err := client.SearchLogs(context.Background(), models.QueryParams{SearchFrom: "1", SearchUntil: "2"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", apiErr.StatusCode)
	}
	if err.Error() != "The search period cannot exceed 30 days" {
		t.Errorf("Expected backend message, got %q", err.Error())
	}
}

func TestSearchLogsStatusTextFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := client.SearchLogs(context.Background(), models.QueryParams{SearchFrom: "1", SearchUntil: "2"})
	if err == nil || err.Error() != "Request failed: Bad Gateway" {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestSearchLogsDoesNotRetry(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, _ = client.SearchLogs(context.Background(), models.QueryParams{SearchFrom: "1", SearchUntil: "2"})
	if calls != 1 {
		t.Errorf("Expected exactly one call, got %d", calls)
	}
}

func TestSearchLogsInvalidParamsSkipsNetwork(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	if _, err := client.SearchLogs(context.Background(), models.QueryParams{}); !errors.Is(err, query.ErrMissingTimeRange) {
		t.Errorf("Expected ErrMissingTimeRange, got %v", err)
	}
	if calls != 0 {
		t.Error("Invalid params should not reach the backend")
	}
}

func TestSearchLogsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.SearchLogs(context.Background(), models.QueryParams{SearchFrom: "1", SearchUntil: "2"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError for transport failure, got %v", err)
	}
}

func TestCreateFeedbackSessionLog(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != DefaultSessionLogsEndpoint {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		got = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Successful"})
	})

	msg, err := client.CreateFeedbackSessionLog(context.Background(), query.CreateSessionLogParams{
		CourseID:            "CS101",
		FeedbackSessionName: "Week 1",
		StudentEmail:        "alice@example.com",
		LogType:             models.LogTypeSubmission,
	})
	if err != nil {
		t.Fatalf("CreateFeedbackSessionLog failed: %v", err)
	}
	if msg != "Successful" {
		t.Errorf("Expected 'Successful', got %q", msg)
	}
	if got.Get("courseid") != "CS101" || got.Get("fsname") != "Week 1" ||
		got.Get("studentemail") != "alice@example.com" || got.Get("fsltype") != "submission" {
		t.Errorf("Unexpected query: %v", got)
	}
}

func TestSearchFeedbackSessionLogs(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"feedbackSessionLogs":[{"feedbackSessionData":{"courseId":"CS101","feedbackSessionName":"Week 1"},"feedbackSessionLogEntries":[{"studentData":{"email":"alice@example.com","name":"Alice"},"feedbackSessionLogType":"access","timestamp":5}]}]}`))
	})

	logs, err := client.SearchFeedbackSessionLogs(context.Background(), query.SearchSessionLogParams{
		CourseID:    "CS101",
		SearchFrom:  "1",
		SearchUntil: "9",
	})
	if err != nil {
		t.Fatalf("SearchFeedbackSessionLogs failed: %v", err)
	}
	if _, ok := got["studentemail"]; ok {
		t.Error("Unset student email should not be sent")
	}
	if got.Get("fslstarttime") != "1" || got.Get("fslendtime") != "9" {
		t.Errorf("Unexpected query: %v", got)
	}
	if len(logs.FeedbackSessionLogs) != 1 || len(logs.FeedbackSessionLogs[0].FeedbackSessionLogEntries) != 1 {
		t.Fatalf("Unexpected logs: %+v", logs)
	}
	entry := logs.FeedbackSessionLogs[0].FeedbackSessionLogEntries[0]
	if entry.StudentData.Email != "alice@example.com" || entry.FeedbackSessionLogType != models.LogTypeAccess {
		t.Errorf("Unexpected entry: %+v", entry)
	}
}
