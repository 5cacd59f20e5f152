package ui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/user/course-logs-tui/pkg/models"
)

// Exporter writes the rows of a page to disk
type Exporter struct {
	lastExportPath string
}

// NewExporter creates a new exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

type exportedRow struct {
	Timestamp    string            `json:"timestamp"`
	Severity     models.Severity   `json:"severity"`
	Summary      string            `json:"summary"`
	HTTPStatus   *int              `json:"httpStatus,omitempty"`
	ResponseTime *int64            `json:"responseTime,omitempty"`
	Details      models.LogDetails `json:"details"`
}

// Export writes rows in the given format: csv, json or jsonl
func (e *Exporter) Export(rows []models.LogsTableRowModel, path, format string) error {
	if len(rows) == 0 {
		return fmt.Errorf("no logs to export")
	}

	var err error
	switch format {
	case "csv":
		err = e.exportCSV(rows, path)
	case "json":
		err = e.exportJSON(rows, path)
	case "jsonl":
		err = e.exportJSONL(rows, path)
	default:
		return fmt.Errorf("invalid export format: %s", format)
	}
	if err != nil {
		return err
	}

	e.lastExportPath = path
	return nil
}

func (e *Exporter) exportCSV(rows []models.LogsTableRowModel, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"Timestamp", "Severity", "Summary", "HTTP Status", "Response Time", "Source File", "Trace"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		status, took := "", ""
		if row.HTTPStatus != nil {
			status = strconv.Itoa(*row.HTTPStatus)
		}
		if row.ResponseTime != nil {
			took = strconv.FormatInt(*row.ResponseTime, 10)
		}
		record := []string{
			row.Timestamp,
			string(row.Severity),
			row.Summary,
			status,
			took,
			row.Details.SourceLocation.File,
			row.Details.Trace,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (e *Exporter) exportJSON(rows []models.LogsTableRowModel, path string) error {
	out := make([]exportedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, toExportedRow(row))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (e *Exporter) exportJSONL(rows []models.LogsTableRowModel, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, row := range rows {
		if err := enc.Encode(toExportedRow(row)); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}
	return nil
}

func toExportedRow(row models.LogsTableRowModel) exportedRow {
	return exportedRow{
		Timestamp:    row.Timestamp,
		Severity:     row.Severity,
		Summary:      row.Summary,
		HTTPStatus:   row.HTTPStatus,
		ResponseTime: row.ResponseTime,
		Details:      row.Details,
	}
}

// GetLastExportPath returns the path of the last export
func (e *Exporter) GetLastExportPath() string {
	return e.lastExportPath
}

// GetDefaultFileName generates a default filename for page of an export
func (e *Exporter) GetDefaultFileName(format string, page int, now time.Time) string {
	return fmt.Sprintf("logs_%s_page%d.%s", now.Format("20060102_150405"), page+1, format)
}
