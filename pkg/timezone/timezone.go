package timezone

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without /usr/share/zoneinfo

	"github.com/user/course-logs-tui/pkg/models"
)

// DisplayLayout renders as "DD MMM, YYYY hh:mm:ss A"
const DisplayLayout = "02 Jan, 2006 03:04:05 PM"

// Field names reported in resolution errors
const (
	FieldSearchFrom  = "Search period from"
	FieldSearchUntil = "Search period until"
)

// ResolvedTimestamp is the result of resolving a local date/time.
// Message is set when the local time was ambiguous.
type ResolvedTimestamp struct {
	Timestamp int64 // epoch millis
	Message   string
}

// Resolver turns a local date/time in a zone into an absolute timestamp
type Resolver interface {
	ResolveTimestamp(ctx context.Context, local models.LocalDateTime, zone, fieldName string) (ResolvedTimestamp, error)
}

// ResolveError names the field whose value could not be resolved
type ResolveError struct {
	Field  string
	Reason string
}

func (e *ResolveError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// LocalResolver resolves timestamps with the Go zone database
type LocalResolver struct{}

// NewLocalResolver creates a resolver backed by the zone database
func NewLocalResolver() *LocalResolver {
	return &LocalResolver{}
}

// ResolveTimestamp implements Resolver
func (r *LocalResolver) ResolveTimestamp(ctx context.Context, local models.LocalDateTime, zone, fieldName string) (ResolvedTimestamp, error) {
	if err := ctx.Err(); err != nil {
		return ResolvedTimestamp{}, err
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return ResolvedTimestamp{}, &ResolveError{Field: fieldName, Reason: fmt.Sprintf("unknown time zone %q", zone)}
	}

	d, tm := local.Date, local.Time
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 || tm.Hour < 0 || tm.Hour > 23 || tm.Minute < 0 || tm.Minute > 59 {
		return ResolvedTimestamp{}, &ResolveError{Field: fieldName, Reason: fmt.Sprintf("%s is not a valid date/time", local)}
	}

	t := time.Date(d.Year, time.Month(d.Month), d.Day, tm.Hour, tm.Minute, 0, 0, loc)
	if !sameWallClock(t, local) {
		// time.Date normalizes both day overflow and DST gaps
		if t.Day() != d.Day || int(t.Month()) != d.Month {
			return ResolvedTimestamp{}, &ResolveError{Field: fieldName, Reason: fmt.Sprintf("%s is not a valid date/time", local)}
		}
		return ResolvedTimestamp{}, &ResolveError{Field: fieldName, Reason: fmt.Sprintf("%s does not exist in %s", local, zone)}
	}

	earliest := t
	ambiguous := false
	for _, shift := range dstShifts {
		candidate := t.Add(shift).In(loc)
		if !sameWallClock(candidate, local) {
			continue
		}
		ambiguous = true
		if candidate.Before(earliest) {
			earliest = candidate
		}
	}

	result := ResolvedTimestamp{Timestamp: earliest.UnixMilli()}
	if ambiguous {
		result.Message = fmt.Sprintf("%s: %s is ambiguous in %s, using the earlier time %s",
			fieldName, local, zone, earliest.Format("Mon, 02 Jan 2006 15:04 MST"))
	}
	return result, nil
}

// offsets a zone transition can shift the wall clock by
var dstShifts = []time.Duration{-2 * time.Hour, -time.Hour, -30 * time.Minute, 30 * time.Minute, time.Hour, 2 * time.Hour}

func sameWallClock(t time.Time, local models.LocalDateTime) bool {
	return t.Year() == local.Date.Year &&
		int(t.Month()) == local.Date.Month &&
		t.Day() == local.Date.Day &&
		t.Hour() == local.Time.Hour &&
		t.Minute() == local.Time.Minute
}

// FormatToString formats epoch millis in the given zone.
// Unknown zones fall back to UTC.
func FormatToString(epochMillis int64, zone, layout string) string {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	return time.UnixMilli(epochMillis).In(loc).Format(layout)
}

// GuessTimezone returns the IANA name of the host zone, or "UTC"
func GuessTimezone() string {
	if tz := strings.TrimSpace(os.Getenv("TZ")); tz != "" {
		tz = strings.TrimPrefix(tz, ":")
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if idx := strings.Index(target, "zoneinfo/"); idx >= 0 {
			name := target[idx+len("zoneinfo/"):]
			if _, err := time.LoadLocation(name); err == nil {
				return name
			}
		}
	}
	return "UTC"
}

// CommonZones is the zone list offered when choosing a course time zone
var CommonZones = []string{
	"UTC",
	"Pacific/Honolulu",
	"America/Anchorage",
	"America/Los_Angeles",
	"America/Denver",
	"America/Chicago",
	"America/New_York",
	"America/Sao_Paulo",
	"Atlantic/Azores",
	"Europe/London",
	"Europe/Berlin",
	"Europe/Helsinki",
	"Europe/Moscow",
	"Asia/Dubai",
	"Asia/Karachi",
	"Asia/Kolkata",
	"Asia/Kathmandu",
	"Asia/Dhaka",
	"Asia/Bangkok",
	"Asia/Singapore",
	"Asia/Tokyo",
	"Australia/Adelaide",
	"Australia/Sydney",
	"Pacific/Auckland",
}

// Zone is a selectable time zone with its offset label
type Zone struct {
	ID     string
	Offset string
}

// OffsetMinutes returns the UTC offset of each zone at the given instant
func OffsetMinutes(zones []string, at time.Time) map[string]int {
	offsets := make(map[string]int, len(zones))
	for _, id := range zones {
		loc, err := time.LoadLocation(id)
		if err != nil {
			continue
		}
		_, seconds := at.In(loc).Zone()
		offsets[id] = seconds / 60
	}
	return offsets
}

// OffsetLabel renders a minute offset as "UTC" or "UTC +HH:MM"
func OffsetLabel(offset int) string {
	if offset == 0 {
		return "UTC"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("UTC %s%02d:%02d", sign, offset/60, offset%60)
}

// Zones lists the given zones with offset labels, sorted by offset then ID
func Zones(zones []string, at time.Time) []Zone {
	offsets := OffsetMinutes(zones, at)
	out := make([]Zone, 0, len(offsets))
	for id, offset := range offsets {
		out = append(out, Zone{ID: id, Offset: OffsetLabel(offset)})
	}
	sort.Slice(out, func(i, j int) bool {
		oi, oj := offsets[out[i].ID], offsets[out[j].ID]
		if oi != oj {
			return oi < oj
		}
		return out[i].ID < out[j].ID
	})
	return out
}
