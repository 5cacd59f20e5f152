package gcp

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/logging"
	"cloud.google.com/go/logging/logadmin"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/query"
)

// EntryLister opens an iterator over log entries
type EntryLister interface {
	Entries(ctx context.Context, opts ...logadmin.EntriesOption) *logadmin.EntryIterator
}

// LogsClient reads log pages straight from Cloud Logging
type LogsClient struct {
	lister    EntryLister
	projectID string
	pageSize  int
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewLogsClient creates a new logs client
func NewLogsClient(lister EntryLister, projectID string, pageSize int, timeout time.Duration, logger zerolog.Logger) *LogsClient {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &LogsClient{
		lister:    lister,
		projectID: projectID,
		pageSize:  pageSize,
		timeout:   timeout,
		logger:    logger,
	}
}

// SearchLogs fetches the page of entries starting at params.NextPageToken
func (lc *LogsClient) SearchLogs(ctx context.Context, params models.QueryParams) (models.GeneralLogs, error) {
	filter, err := query.FilterFromParams(lc.projectID, params)
	if err != nil {
		return models.GeneralLogs{}, err
	}

	if lc.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, lc.timeout)
			defer cancel()
		}
	}

	lc.logger.Debug().Str("filter", filter).Str("page_token", params.NextPageToken).Msg("cloud logging query")

	it := lc.lister.Entries(ctx, logadmin.Filter(filter), logadmin.NewestFirst())
	pager := iterator.NewPager(it, lc.pageSize, params.NextPageToken)

	var entries []*logging.Entry
	nextToken, err := pager.NextPage(&entries)
	if err != nil {
		lc.logger.Error().Err(err).Str("filter", filter).Msg("cloud logging query failed")
		return models.GeneralLogs{}, fmt.Errorf("failed to read logs: %w", err)
	}

	out := models.GeneralLogs{
		LogEntries:    make([]models.GeneralLogEntry, 0, len(entries)),
		NextPageToken: nextToken,
	}
	for _, entry := range entries {
		out.LogEntries = append(out.LogEntries, ConvertLoggingEntry(entry))
	}
	return out, nil
}

// ConvertLoggingEntry converts cloud.google.com/go/logging.Entry to models.GeneralLogEntry
func ConvertLoggingEntry(entry *logging.Entry) models.GeneralLogEntry {
	out := models.GeneralLogEntry{
		Timestamp: entry.Timestamp.UnixMilli(),
		Severity:  convertSeverity(entry.Severity),
		Trace:     entry.Trace,
	}

	if entry.SourceLocation != nil {
		out.SourceLocation = models.SourceLocation{
			File:     entry.SourceLocation.File,
			Line:     entry.SourceLocation.Line,
			Function: entry.SourceLocation.Function,
		}
	}

	switch payload := entry.Payload.(type) {
	case string:
		out.Payload = models.LogPayload{Type: models.PayloadString, Data: payload}
	case *structpb.Struct:
		m := payload.AsMap()
		out.Payload = models.LogPayload{Type: models.PayloadJSON, Data: m}
		out.JSONObject = m
	case map[string]interface{}:
		out.Payload = models.LogPayload{Type: models.PayloadJSON, Data: payload}
		out.JSONObject = payload
	case nil:
		out.Payload = models.LogPayload{Type: models.PayloadString, Data: ""}
	default:
		out.Payload = models.LogPayload{Type: models.PayloadString, Data: fmt.Sprintf("%v", payload)}
	}

	return out
}

// convertSeverity folds the Cloud Logging levels into the three the page shows
func convertSeverity(s logging.Severity) models.Severity {
	switch {
	case s >= logging.Error:
		return models.SeverityError
	case s >= logging.Warning:
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
