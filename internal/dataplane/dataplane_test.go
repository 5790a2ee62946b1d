package dataplane

import (
	"testing"

	"redisctl/internal/config"
)

func TestAddrDefaultsPort(t *testing.T) {
	t.Parallel()
	if got := addr(config.DatabaseCredentials{Host: "localhost"}); got != "localhost:6379" {
		t.Fatalf("got %q", got)
	}
	if got := addr(config.DatabaseCredentials{Host: "localhost", Port: 12000}); got != "localhost:12000" {
		t.Fatalf("got %q", got)
	}
}

func TestIsWriteCommand(t *testing.T) {
	t.Parallel()
	for _, cmd := range []string{"SET foo bar", "set foo bar", "DEL k1 k2", "HSET h f v", "EXPIRE k 10"} {
		if !IsWriteCommand(cmd) {
			t.Errorf("expected %q to be a write command", cmd)
		}
	}
	for _, cmd := range []string{"GET foo", "HGETALL h", "SCAN 0", "PING", "INFO server"} {
		if IsWriteCommand(cmd) {
			t.Errorf("expected %q to not be a write command", cmd)
		}
	}
}

func TestJSONValueUTF8String(t *testing.T) {
	t.Parallel()
	if v := JSONValue("hello"); v != "hello" {
		t.Fatalf("got %v", v)
	}
}

func TestJSONValueBinaryString(t *testing.T) {
	t.Parallel()
	binary := string([]byte{0xff, 0xfe, 0x00, 0x01})
	v := JSONValue(binary)
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v)
	}
	if m["type"] != "binary" {
		t.Fatalf("expected binary type marker, got %v", m)
	}
	if _, ok := m["base64"].(string); !ok {
		t.Fatalf("expected base64 string field, got %v", m)
	}
}

func TestJSONValueSlice(t *testing.T) {
	t.Parallel()
	binary := string([]byte{0xff, 0xfe})
	v := JSONValue([]any{"ok", binary})
	out, ok := v.([]any)
	if !ok || len(out) != 2 {
		t.Fatalf("unexpected result: %v", v)
	}
	if out[0] != "ok" {
		t.Fatalf("expected first element unchanged")
	}
	if _, ok := out[1].(map[string]any); !ok {
		t.Fatalf("expected binary marker for second element")
	}
}
