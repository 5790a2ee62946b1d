// Package output is the rendering pipeline shared by every command: query
// projection, format selection, and table/JSON/YAML rendering with
// redaction and status color-hinting.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jmespath/go-jmespath"
	"gopkg.in/yaml.v3"

	"redisctl/internal/errs"
)

// Format is the rendering mode selected by the caller or --output flag.
type Format int

const (
	Auto Format = iota
	Table
	JSON
	YAML
)

// ParseFormat parses the --output flag value, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "table":
		return Table, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return Auto, errs.New(errs.KindValidation, fmt.Sprintf("unknown output format %q", s))
	}
}

// Resolve turns Auto into Table or JSON depending on whether stdout is a
// terminal, per the conventional behavior named in the spec.
func Resolve(f Format, stdoutIsTTY bool) Format {
	if f != Auto {
		return f
	}
	if stdoutIsTTY {
		return Table
	}
	return JSON
}

const maxCellWidth = 64

var redactedKeys = map[string]bool{"key": true, "api_key": true}

func isRedactedKey(key string) bool {
	lower := strings.ToLower(key)
	if redactedKeys[lower] {
		return true
	}
	return strings.Contains(lower, "secret") || strings.Contains(lower, "password")
}

// Query applies a JMESPath expression to v. An empty expression is a no-op.
func Query(v any, expression string) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return v, nil
	}
	result, err := jmespath.Search(expression, v)
	if err != nil {
		return nil, errs.Wrap(errs.KindQuery, fmt.Sprintf("invalid query %q", expression), err)
	}
	return result, nil
}

// Render projects v through expression (if non-empty) and writes it to w in
// format f.
func Render(w *os.File, v any, f Format, expression string) error {
	projected, err := Query(v, expression)
	if err != nil {
		return err
	}
	switch f {
	case JSON:
		return renderJSON(w, projected)
	case YAML:
		return renderYAML(w, projected)
	default:
		return renderTable(w, projected)
	}
}

func renderJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errs.Wrap(errs.KindIO, "failed to encode json output", err)
	}
	return nil
}

func renderYAML(w *os.File, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(v); err != nil {
		return errs.Wrap(errs.KindIO, "failed to encode yaml output", err)
	}
	return nil
}

func renderTable(w *os.File, v any) error {
	switch t := v.(type) {
	case []any:
		rows, headers, ok := objectRows(t)
		if ok {
			printObjectTable(w, headers, rows)
			return nil
		}
	case map[string]any:
		printKeyValue(w, t)
		return nil
	}
	return renderJSON(w, v)
}

// objectRows extracts a header/row table from a slice of objects, preferring
// the union of keys in first-seen order; keys first seen in the same object
// are added in sorted order. Returns ok=false when items is empty or its
// elements aren't objects (falls back to JSON).
func objectRows(items []any) ([]map[string]any, []string, bool) {
	if len(items) == 0 {
		return nil, nil, false
	}
	var headers []string
	seen := map[string]bool{}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, nil, false
		}
		rows = append(rows, m)
		var fresh []string
		for k := range m {
			if !seen[k] {
				seen[k] = true
				fresh = append(fresh, k)
			}
		}
		sort.Strings(fresh)
		headers = append(headers, fresh...)
	}
	return rows, headers, true
}

func printObjectTable(w *os.File, headers []string, rows []map[string]any) {
	lines := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = cellFor(h, row[h])
		}
		lines = append(lines, cells)
	}
	printAlignedTable(w, headers, lines, 2)
}

func printKeyValue(w *os.File, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var rows [][2]string
	for _, k := range keys {
		rows = append(rows, [2]string{k, cellFor(k, m[k])})
	}
	printKeyValueTableTo(w, rows)
}

func cellFor(key string, v any) string {
	if isRedactedKey(key) {
		return "***REDACTED***"
	}
	s := stringify(v)
	if isStatusLike(key) {
		s = styleStatus(s)
	}
	return truncate(s)
}

func isStatusLike(key string) bool {
	lower := strings.ToLower(key)
	return lower == "status" || lower == "state" || strings.HasSuffix(lower, "_status") || strings.HasSuffix(lower, "_state")
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

func truncate(s string) string {
	if len(s) <= maxCellWidth {
		return s
	}
	return s[:maxCellWidth-1] + "…"
}
