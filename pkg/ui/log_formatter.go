package ui

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/user/course-logs-tui/pkg/models"
	"github.com/user/course-logs-tui/pkg/timezone"
)

// plain text payloads are shown with these substitutions
var plainTextReplacer = strings.NewReplacer("\n", "↵", "\t", "⇥")

// ToRowModel projects a backend log entry into a table row shown in zone
func ToRowModel(entry models.GeneralLogEntry, zone string) models.LogsTableRowModel {
	row := models.LogsTableRowModel{
		Timestamp: timezone.FormatToString(entry.Timestamp, zone, timezone.DisplayLayout),
		Severity:  entry.Severity,
	}

	var payload interface{}
	switch entry.Payload.Type {
	case models.PayloadString:
		row.Summary = "Source: " + entry.SourceLocation.File
		text, _ := entry.Payload.Data.(string)
		payload = plainTextReplacer.Replace(text)
	case models.PayloadJSON:
		object := jsonPayloadObject(entry)
		if object == nil {
			// undecoded payloads are kept as they came
			payload = entry.Payload.Data
			break
		}
		row.Summary = summarizeRequest(object)
		if status, ok := numberField(object, "responseStatus"); ok {
			s := int(status)
			row.HTTPStatus = &s
		}
		if took, ok := numberField(object, "responseTime"); ok {
			row.ResponseTime = &took
		}
		payload = object
	default:
		payload = entry.Payload.Data
	}

	row.Details = models.LogDetails{
		SourceLocation: entry.SourceLocation,
		Trace:          entry.Trace,
		Payload:        deepCopyValue(payload),
	}
	return row
}

// jsonPayloadObject returns the structured payload, unwrapping the "map"
// envelope some backends serialize JSON objects into
func jsonPayloadObject(entry models.GeneralLogEntry) map[string]interface{} {
	object := entry.JSONObject
	if object == nil {
		object, _ = entry.Payload.Data.(map[string]interface{})
	}
	if inner, ok := object["map"].(map[string]interface{}); ok {
		return inner
	}
	return object
}

func summarizeRequest(object map[string]interface{}) string {
	var sb strings.Builder
	if method, ok := stringField(object, "requestMethod"); ok {
		sb.WriteString(method + " ")
	}
	if url, ok := stringField(object, "requestUrl"); ok {
		sb.WriteString(url + " ")
	}
	if action, ok := stringField(object, "actionClass"); ok {
		sb.WriteString(action)
	}
	return sb.String()
}

func stringField(object map[string]interface{}, key string) (string, bool) {
	s, ok := object[key].(string)
	return s, ok && s != ""
}

func numberField(object map[string]interface{}, key string) (int64, bool) {
	switch v := object[key].(type) {
	case float64:
		return int64(v), true
	case float32:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// deepCopyValue copies the maps and slices of a decoded JSON value
func deepCopyValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, child := range v {
			out[key] = deepCopyValue(child)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, child := range v {
			out[i] = deepCopyValue(child)
		}
		return out
	default:
		return v
	}
}

func padRight(s string, length int) string {
	if w := ansi.StringWidth(s); w < length {
		return s + strings.Repeat(" ", length-w)
	}
	return s
}

// truncate cuts s to maxLen display cells, ending in "..."
func truncate(s string, maxLen int) string {
	if maxLen <= 3 || ansi.StringWidth(s) <= maxLen {
		return s
	}
	return ansi.Truncate(s, maxLen, "...")
}
