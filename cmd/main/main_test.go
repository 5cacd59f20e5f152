package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/user/course-logs-tui/pkg/config"
	"github.com/user/course-logs-tui/pkg/demo"
)

func TestApplyFlagsOnlyOverridesChangedFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--source", "demo", "--timezone", "Asia/Singapore"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.BackendURL = "https://courses.example.com"
	flags := &rootFlags{source: "demo", zone: "Asia/Singapore"}
	applyFlags(cmd, flags, &cfg)

	if cfg.Source != "demo" || cfg.Timezone != "Asia/Singapore" {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if cfg.BackendURL != "https://courses.example.com" {
		t.Errorf("Unset flags should keep config values, got %s", cfg.BackendURL)
	}
}

func TestParseTimeFlag(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"1700000000000", "1700000000000", false},
		{"2024-01-01T00:00:00Z", "1704067200000", false},
		{"2024-01-01 08:00", "1704067200000", false},
		{"", "", true},
		{"yesterday", "", true},
	}

	for _, tt := range tests {
		got, err := parseTimeFlag(tt.raw, "Asia/Singapore")
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimeFlag(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTimeFlag(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestParseGcloudProject(t *testing.T) {
	contents := "[core]\naccount = me@example.com\nproject_number = 42\nproject = course-logs-prod\n"
	if got := parseGcloudProject(contents); got != "course-logs-prod" {
		t.Errorf("Unexpected project %q", got)
	}
	if got := parseGcloudProject("[core]\naccount = me\n"); got != "" {
		t.Errorf("Expected no project, got %q", got)
	}
}

func TestSavedSeverities(t *testing.T) {
	levels := savedSeverities(config.State{LastSeverities: []string{"error", "LOUD", "INFO"}}, zerolog.Nop())
	if len(levels) != 2 || levels[0] != "ERROR" || levels[1] != "INFO" {
		t.Errorf("Unexpected severities %v", levels)
	}
}

func TestNewSearcherDemo(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source = "demo"
	searcher, cleanup, err := newSearcher(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newSearcher failed: %v", err)
	}
	defer cleanup()
	if _, ok := searcher.(*demo.Backend); !ok {
		t.Errorf("Expected the demo backend, got %T", searcher)
	}
}

func TestSessionLogsSearchCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"feedbackSessionLogs":[{"feedbackSessionData":{"courseId":"CS101","feedbackSessionName":"Week 1"},"feedbackSessionLogEntries":[]}]}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"session-logs", "search", "--backend", server.URL, "--course", "CS101",
		"--from", "1000", "--until", "2000", "--student", "alice@example.com"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	for _, want := range []string{"courseid=CS101", "fslstarttime=1000", "fslendtime=2000", "studentemail=alice%40example.com"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("Query %q should contain %s", gotQuery, want)
		}
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out.String())
	}
}

func TestSessionLogsCreateRejectsBadType(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"session-logs", "create", "--backend", "http://127.0.0.1:1", "--course", "CS101",
		"--session", "Week 1", "--student", "alice@example.com", "--type", "peek"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "invalid feedback session log type") {
		t.Errorf("Expected log type error, got %v", err)
	}
}

func TestDisplayZone(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		last       string
		want       string
	}{
		{"configured wins", "Asia/Tokyo", "Europe/Berlin", "Asia/Tokyo"},
		{"last session zone", "", "Europe/Berlin", "Europe/Berlin"},
		{"unknown last zone is ignored", "", "Mars/Olympus", "Asia/Kolkata"},
	}

	t.Setenv("TZ", "Asia/Kolkata")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Timezone = tt.configured
			if got := displayZone(cfg, tt.last); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSavedZone(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if got := savedZone(); got != "" {
		t.Errorf("Expected no saved zone, got %q", got)
	}
	if err := config.SaveState(config.State{LastTimezone: "America/Chicago"}); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	if got := savedZone(); got != "America/Chicago" {
		t.Errorf("Expected saved zone, got %q", got)
	}
}
