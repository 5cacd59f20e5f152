package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/user/course-logs-tui/pkg/models"
)

// Builder constructs Cloud Logging filter queries
type Builder struct {
	baseFilter string
	filters    []string
}

// NewBuilder creates a new query builder
func NewBuilder(baseFilter string) *Builder {
	return &Builder{
		baseFilter: baseFilter,
		filters:    []string{},
	}
}

// AddSeverities ORs together the given severity levels
func (qb *Builder) AddSeverities(levels []models.Severity) *Builder {
	if len(levels) == 0 {
		return qb
	}
	var parts []string
	for _, level := range levels {
		parts = append(parts, fmt.Sprintf("severity=%s", level))
	}
	qb.filters = append(qb.filters, "("+strings.Join(parts, " OR ")+")")
	return qb
}

// AddMinSeverity adds a severity>=level clause
func (qb *Builder) AddMinSeverity(level models.Severity) *Builder {
	if level != "" {
		qb.filters = append(qb.filters, fmt.Sprintf("severity>=%s", level))
	}
	return qb
}

// AddTimeRange adds a time range filter; zero bounds are skipped
func (qb *Builder) AddTimeRange(start, end time.Time) *Builder {
	if !start.IsZero() {
		qb.filters = append(qb.filters, fmt.Sprintf("timestamp>=%q", start.UTC().Format(time.RFC3339Nano)))
	}
	if !end.IsZero() {
		qb.filters = append(qb.filters, fmt.Sprintf("timestamp<=%q", end.UTC().Format(time.RFC3339Nano)))
	}
	return qb
}

// AddAPIEndpoint filters request logs by URL
func (qb *Builder) AddAPIEndpoint(endpoint string) *Builder {
	if endpoint != "" {
		qb.filters = append(qb.filters, fmt.Sprintf("jsonPayload.requestUrl=%q", endpoint))
	}
	return qb
}

// AddTrace filters by trace id within the project
func (qb *Builder) AddTrace(projectID, traceID string) *Builder {
	if traceID != "" {
		qb.filters = append(qb.filters, fmt.Sprintf("trace=%q", fmt.Sprintf("projects/%s/traces/%s", projectID, traceID)))
	}
	return qb
}

// AddCustomFilter adds a custom filter clause
func (qb *Builder) AddCustomFilter(filter string) *Builder {
	if filter != "" {
		qb.filters = append(qb.filters, filter)
	}
	return qb
}

// Build constructs the final filter string
func (qb *Builder) Build() string {
	if qb.baseFilter == "" && len(qb.filters) == 0 {
		return ""
	}

	var parts []string
	if qb.baseFilter != "" {
		parts = append(parts, qb.baseFilter)
	}
	parts = append(parts, qb.filters...)

	return strings.Join(parts, " AND ")
}

// FilterFromParams builds the Cloud Logging filter equivalent of a logs search
func FilterFromParams(projectID string, params models.QueryParams) (string, error) {
	if err := ValidateParams(params); err != nil {
		return "", err
	}

	from, _ := ParseMillis(params.SearchFrom)
	until, _ := ParseMillis(params.SearchUntil)
	levels, _ := SplitSeverities(params.Severities)

	builder := NewBuilder("").
		AddTimeRange(from, until).
		AddSeverities(levels).
		AddMinSeverity(models.Severity(params.MinSeverity)).
		AddAPIEndpoint(params.APIEndpoint).
		AddTrace(projectID, params.TraceID)
	return builder.Build(), nil
}

// ParseMillis parses an epoch millisecond string
func ParseMillis(raw string) (time.Time, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
	}
	return time.UnixMilli(ms), nil
}

// SplitSeverities parses a comma separated severity list
func SplitSeverities(raw string) ([]models.Severity, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var levels []models.Severity
	for _, part := range strings.Split(raw, ",") {
		level, err := models.ParseSeverity(part)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}
