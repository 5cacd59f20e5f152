package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/user/course-logs-tui/pkg/models"
)

// detailsTree renders the details of a row as a fully expanded tree
func detailsTree(details models.LogDetails) []string {
	root := map[string]interface{}{
		"sourceLocation": map[string]interface{}{
			"file":     details.SourceLocation.File,
			"line":     details.SourceLocation.Line,
			"function": details.SourceLocation.Function,
		},
		"trace":   details.Trace,
		"payload": details.Payload,
	}
	lines := make([]string, 0, 16)
	appendTreeNode(&lines, root, "details", nil, true)
	return lines
}

func appendTreeNode(lines *[]string, value interface{}, label string, ancestorsHasNext []bool, isLast bool) {
	prefix := buildTreePrefix(ancestorsHasNext, isLast)
	*lines = append(*lines, fmt.Sprintf("%s%s %s", prefix, label, summarizeTreeValue(value)))

	next := append(append([]bool{}, ancestorsHasNext...), !isLast)
	switch typed := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			appendTreeNode(lines, typed[key], key+":", next, i == len(keys)-1)
		}
	case []interface{}:
		for i, child := range typed {
			appendTreeNode(lines, child, "["+strconv.Itoa(i)+"]:", next, i == len(typed)-1)
		}
	}
}

func buildTreePrefix(ancestorsHasNext []bool, isLast bool) string {
	if len(ancestorsHasNext) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := 0; i < len(ancestorsHasNext)-1; i++ {
		if ancestorsHasNext[i] {
			sb.WriteString("│  ")
		} else {
			sb.WriteString("   ")
		}
	}
	if isLast {
		sb.WriteString("└─ ")
	} else {
		sb.WriteString("├─ ")
	}
	return sb.String()
}

func summarizeTreeValue(value interface{}) string {
	switch typed := value.(type) {
	case map[string]interface{}:
		if len(typed) == 0 {
			return "{}"
		}
		return ""
	case []interface{}:
		if len(typed) == 0 {
			return "[]"
		}
		return ""
	case string:
		if ansi.StringWidth(typed) > 96 {
			return strconv.Quote(ansi.Truncate(typed, 96, "..."))
		}
		return strconv.Quote(typed)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// detailsJSON renders the details of a row as indented JSON
func detailsJSON(details models.LogDetails) (string, error) {
	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode details: %w", err)
	}
	return string(data), nil
}
