package output

import (
	"testing"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()
	cases := map[string]Format{
		"":      Auto,
		"auto":  Auto,
		"Table": Table,
		"json":  JSON,
		"YAML":  YAML,
		"yml":   YAML,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestResolveAuto(t *testing.T) {
	t.Parallel()
	if Resolve(Auto, true) != Table {
		t.Fatal("expected Table for TTY")
	}
	if Resolve(Auto, false) != JSON {
		t.Fatal("expected JSON for non-TTY")
	}
	if Resolve(YAML, true) != YAML {
		t.Fatal("explicit format should not be overridden")
	}
}

func TestQueryProjectsJMESPath(t *testing.T) {
	t.Parallel()
	data := map[string]any{
		"subscriptions": []any{
			map[string]any{"name": "a", "status": "active"},
			map[string]any{"name": "b", "status": "pending"},
		},
	}
	result, err := Query(data, "subscriptions[?status=='active'].name | [0]")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result != "a" {
		t.Fatalf("unexpected result: %v", result)
	}
}

func TestQueryEmptyExpressionIsNoop(t *testing.T) {
	t.Parallel()
	v := map[string]any{"x": 1}
	result, err := Query(v, "")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	m := result.(map[string]any)
	if m["x"] != 1 {
		t.Fatalf("unexpected: %v", result)
	}
}

func TestQueryInvalidExpressionIsQueryError(t *testing.T) {
	t.Parallel()
	_, err := Query(map[string]any{}, "[[[")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestIsRedactedKey(t *testing.T) {
	t.Parallel()
	for _, k := range []string{"password", "api_secret", "Secret", "key", "api_key"} {
		if !isRedactedKey(k) {
			t.Errorf("expected %q to be redacted", k)
		}
	}
	if isRedactedKey("name") {
		t.Error("name should not be redacted")
	}
}

func TestTruncateLongCell(t *testing.T) {
	t.Parallel()
	long := ""
	for i := 0; i < 100; i++ {
		long += "x"
	}
	out := truncate(long)
	runes := []rune(out)
	if len(runes) != maxCellWidth {
		t.Fatalf("expected truncated rune length %d, got %d", maxCellWidth, len(runes))
	}
	if runes[len(runes)-1] != '…' {
		t.Fatalf("expected ellipsis suffix, got %q", out)
	}
}

func TestTruncateShortCellUnchanged(t *testing.T) {
	t.Parallel()
	if truncate("short") != "short" {
		t.Fatal("short cell should be unchanged")
	}
}

func TestObjectRowsUnionOfKeysFirstSeenOrder(t *testing.T) {
	t.Parallel()
	items := []any{
		map[string]any{"name": "a", "status": "active"},
		map[string]any{"name": "b", "status": "pending", "region": "us-east-1"},
	}
	rows, headers, ok := objectRows(items)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	want := []string{"name", "status", "region"}
	if len(headers) != len(want) {
		t.Fatalf("unexpected headers: %v", headers)
	}
	for i, h := range want {
		if headers[i] != h {
			t.Fatalf("headers[%d] = %q, want %q (full: %v)", i, headers[i], h, headers)
		}
	}
}
