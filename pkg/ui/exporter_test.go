package ui

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestExportCSV(t *testing.T) {
	e := NewExporter()
	path := filepath.Join(t.TempDir(), "logs.csv")

	if err := e.Export(sampleRows(), path, "csv"); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(records))
	}
	if records[1][3] != "200" || records[2][3] != "" {
		t.Errorf("Unexpected status column %q / %q", records[1][3], records[2][3])
	}
	if records[2][6] != "t-1" {
		t.Errorf("Unexpected trace column %q", records[2][6])
	}
	if e.GetLastExportPath() != path {
		t.Errorf("Expected last export path %s, got %s", path, e.GetLastExportPath())
	}
}

func TestExportJSONAndJSONL(t *testing.T) {
	e := NewExporter()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "logs.json")
	if err := e.Export(sampleRows(), jsonPath, "json"); err != nil {
		t.Fatalf("Export json failed: %v", err)
	}
	data, _ := os.ReadFile(jsonPath)
	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["httpStatus"] != float64(200) {
		t.Errorf("Unexpected JSON %v", decoded)
	}

	jsonlPath := filepath.Join(dir, "logs.jsonl")
	if err := e.Export(sampleRows(), jsonlPath, "jsonl"); err != nil {
		t.Fatalf("Export jsonl failed: %v", err)
	}
	data, _ = os.ReadFile(jsonlPath)
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 2 {
		t.Errorf("Expected 2 lines, got %d", len(lines))
	}
}

func TestExportErrors(t *testing.T) {
	e := NewExporter()
	if err := e.Export(nil, "x.csv", "csv"); err == nil {
		t.Error("Exporting no rows should fail")
	}
	if err := e.Export(sampleRows(), "x.xml", "xml"); err == nil {
		t.Error("Unknown format should fail")
	}
}

func TestGetDefaultFileName(t *testing.T) {
	e := NewExporter()
	name := e.GetDefaultFileName("csv", 0, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC))
	if name != "logs_20240506_070809_page1.csv" {
		t.Errorf("Unexpected file name %s", name)
	}
}
