package timezone

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/course-logs-tui/pkg/models"
)

func local(y, m, d, hh, mm int) models.LocalDateTime {
	return models.LocalDateTime{
		Date: models.DateFormat{Year: y, Month: m, Day: d},
		Time: models.TimeFormat{Hour: hh, Minute: mm},
	}
}

func TestResolveTimestampUTC(t *testing.T) {
	r := NewLocalResolver()
	got, err := r.ResolveTimestamp(context.Background(), local(2024, 1, 2, 3, 4), "UTC", FieldSearchFrom)
	if err != nil {
		t.Fatalf("ResolveTimestamp failed: %v", err)
	}

	want := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC).UnixMilli()
	if got.Timestamp != want {
		t.Errorf("Expected %d, got %d", want, got.Timestamp)
	}
	if got.Message != "" {
		t.Errorf("Expected no message, got %q", got.Message)
	}
}

func TestResolveTimestampZoneOffset(t *testing.T) {
	r := NewLocalResolver()
	got, err := r.ResolveTimestamp(context.Background(), local(2024, 6, 1, 8, 0), "Asia/Singapore", FieldSearchUntil)
	if err != nil {
		t.Fatalf("ResolveTimestamp failed: %v", err)
	}

	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	if got.Timestamp != want {
		t.Errorf("Expected %d, got %d", want, got.Timestamp)
	}
}

func TestResolveTimestampErrors(t *testing.T) {
	tests := []struct {
		name  string
		input models.LocalDateTime
		zone  string
		want  string
	}{
		{"unknown zone", local(2024, 1, 1, 0, 0), "Mars/Olympus", "unknown time zone"},
		{"day overflow", local(2024, 2, 30, 10, 0), "UTC", "not a valid date/time"},
		{"bad hour", local(2024, 2, 1, 24, 0), "UTC", "not a valid date/time"},
		{"dst gap", local(2024, 3, 10, 2, 30), "America/New_York", "does not exist"},
	}

	r := NewLocalResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ResolveTimestamp(context.Background(), tt.input, tt.zone, FieldSearchFrom)
			if err == nil {
				t.Fatal("Expected an error")
			}
			var resolveErr *ResolveError
			if !errors.As(err, &resolveErr) {
				t.Fatalf("Expected *ResolveError, got %T", err)
			}
			if resolveErr.Field != FieldSearchFrom {
				t.Errorf("Expected field %q, got %q", FieldSearchFrom, resolveErr.Field)
			}
			if !strings.HasPrefix(err.Error(), FieldSearchFrom+": ") {
				t.Errorf("Error should be prefixed with the field name: %q", err.Error())
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestResolveTimestampAmbiguousUsesEarlier(t *testing.T) {
	r := NewLocalResolver()
	got, err := r.ResolveTimestamp(context.Background(), local(2024, 11, 3, 1, 30), "America/New_York", FieldSearchFrom)
	if err != nil {
		t.Fatalf("ResolveTimestamp failed: %v", err)
	}

	// 01:30 EDT is 05:30 UTC, the later 01:30 EST is 06:30 UTC
	want := time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC).UnixMilli()
	if got.Timestamp != want {
		t.Errorf("Expected earlier instant %d, got %d", want, got.Timestamp)
	}
	if !strings.Contains(got.Message, "ambiguous") {
		t.Errorf("Expected ambiguity message, got %q", got.Message)
	}
}

func TestResolveTimestampCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalResolver().ResolveTimestamp(ctx, local(2024, 1, 1, 0, 0), "UTC", FieldSearchFrom)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFormatToString(t *testing.T) {
	millis := time.Date(2024, 1, 5, 13, 7, 9, 0, time.UTC).UnixMilli()

	if got := FormatToString(millis, "UTC", DisplayLayout); got != "05 Jan, 2024 01:07:09 PM" {
		t.Errorf("Unexpected UTC format: %q", got)
	}
	if got := FormatToString(millis, "Asia/Tokyo", DisplayLayout); got != "05 Jan, 2024 10:07:09 PM" {
		t.Errorf("Unexpected Tokyo format: %q", got)
	}
	if got := FormatToString(millis, "Nowhere/Zone", DisplayLayout); got != "05 Jan, 2024 01:07:09 PM" {
		t.Errorf("Unknown zone should fall back to UTC, got %q", got)
	}
}

func TestGuessTimezoneFromEnv(t *testing.T) {
	t.Setenv("TZ", "Europe/Berlin")
	if got := GuessTimezone(); got != "Europe/Berlin" {
		t.Errorf("Expected Europe/Berlin, got %q", got)
	}
}

func TestOffsetLabel(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{0, "UTC"},
		{480, "UTC +08:00"},
		{-300, "UTC -05:00"},
		{345, "UTC +05:45"},
		{-570, "UTC -09:30"},
	}

	for _, tt := range tests {
		if got := OffsetLabel(tt.offset); got != tt.want {
			t.Errorf("OffsetLabel(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestZonesSortedByOffset(t *testing.T) {
	at := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	zones := Zones([]string{"Asia/Tokyo", "UTC", "America/New_York", "Bogus/Zone"}, at)

	if len(zones) != 3 {
		t.Fatalf("Expected 3 zones (bogus dropped), got %d", len(zones))
	}
	if zones[0].ID != "America/New_York" || zones[0].Offset != "UTC -05:00" {
		t.Errorf("Unexpected first zone: %+v", zones[0])
	}
	if zones[1].ID != "UTC" || zones[1].Offset != "UTC" {
		t.Errorf("Unexpected second zone: %+v", zones[1])
	}
	if zones[2].ID != "Asia/Tokyo" || zones[2].Offset != "UTC +09:00" {
		t.Errorf("Unexpected third zone: %+v", zones[2])
	}
}
