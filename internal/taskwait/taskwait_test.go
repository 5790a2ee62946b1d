package taskwait

import (
	"context"
	"testing"
	"time"

	"redisctl/internal/errs"
)

func TestClassifyTerminalVariants(t *testing.T) {
	t.Parallel()
	cases := map[string]State{
		"completed":            Success,
		"complete":             Success,
		"succeeded":            Success,
		"SUCCESS":              Success,
		"processing-completed": Success,
		"finished":             Success,
		"done":                 Success,
		"failed":               Failure,
		"ERROR":                Failure,
		"processing-error":     Failure,
		"cancelled":            Cancelled,
		"CANCELED":             Cancelled,
		"processing":           Running,
		"running":              Running,
		"in_progress":          Running,
		"in-progress":          Running,
		"pending":              Pending,
		"queued":               Pending,
		"received":             Pending,
		"unrecognized-state":   Pending,
		"":                     Pending,
	}
	for raw, want := range cases {
		if got := classify(raw); got != want {
			t.Errorf("classify(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestFormatStatePreservesCaseAddsSymbol(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"completed":   "✓ completed",
		"COMPLETED":   "✓ COMPLETED",
		"failed":      "✗ failed",
		"cancelled":   "⊘ cancelled",
		"processing":  "⟳ processing",
		"pending":     "pending",
		"custom_spin": "custom_spin",
	}
	for raw, want := range cases {
		if got := FormatState(raw); got != want {
			t.Errorf("FormatState(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestExtractIDPrecedence(t *testing.T) {
	t.Parallel()
	if id := ExtractID(map[string]any{"taskId": "t1", "task_id": "t2"}); id != "t1" {
		t.Fatalf("taskId should win, got %q", id)
	}
	if id := ExtractID(map[string]any{"task_id": "t2"}); id != "t2" {
		t.Fatalf("task_id should be used, got %q", id)
	}
	if id := ExtractID(map[string]any{"response": map[string]any{"id": "t3"}}); id != "t3" {
		t.Fatalf("response.id should be used, got %q", id)
	}
	if id := ExtractID(map[string]any{}); id != "" {
		t.Fatalf("expected empty id for synchronous response, got %q", id)
	}
}

func TestParseStatusPriorityOverState(t *testing.T) {
	t.Parallel()
	rec := Parse(map[string]any{"status": "completed", "state": "processing"})
	if rec.State != Success {
		t.Fatalf("status should take priority over state, got %v", rec.State)
	}
}

func TestParseExtractsNestedResourceID(t *testing.T) {
	t.Parallel()
	rec := Parse(map[string]any{
		"status":   "completed",
		"response": map[string]any{"resource": map[string]any{"id": "sub-123"}},
	})
	if rec.ResourceID != "sub-123" {
		t.Fatalf("expected sub-123, got %q", rec.ResourceID)
	}
}

func TestParseExtractsErrorPrecedence(t *testing.T) {
	t.Parallel()
	rec := Parse(map[string]any{
		"status": "failed",
		"response": map[string]any{
			"error": map[string]any{"type": "ValidationError", "status": "400", "description": "bad input"},
		},
		"error":        "should not win",
		"errorMessage": "also should not win",
	})
	if rec.ErrorText == "" || rec.ErrorText == "should not win" {
		t.Fatalf("expected nested error object to win, got %q", rec.ErrorText)
	}

	rec2 := Parse(map[string]any{"status": "failed", "errorMessage": "only this"})
	if rec2.ErrorText != "only this" {
		t.Fatalf("expected errorMessage fallback, got %q", rec2.ErrorText)
	}
}

func TestWaitPollsUntilSuccess(t *testing.T) {
	t.Parallel()
	calls := 0
	fetch := func(ctx context.Context, id string) (map[string]any, error) {
		calls++
		if calls < 3 {
			return map[string]any{"status": "processing"}, nil
		}
		return map[string]any{"status": "completed", "taskId": id}, nil
	}
	rec, err := Wait(context.Background(), fetch, "task-1", Options{Interval: time.Millisecond})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if rec.State != Success || calls != 3 {
		t.Fatalf("unexpected result: state=%v calls=%d", rec.State, calls)
	}
}

func TestWaitReturnsAPIErrorOnFailure(t *testing.T) {
	t.Parallel()
	fetch := func(ctx context.Context, id string) (map[string]any, error) {
		return map[string]any{"status": "failed", "errorMessage": "boom"}, nil
	}
	_, err := Wait(context.Background(), fetch, "task-1", Options{Interval: time.Millisecond})
	if err == nil {
		t.Fatal("expected error")
	}
	var e *errs.Error
	if !errs.As(err, &e) || e.Kind != errs.KindAPI {
		t.Fatalf("expected KindAPI, got %v", err)
	}
}

func TestWaitTimesOut(t *testing.T) {
	t.Parallel()
	fetch := func(ctx context.Context, id string) (map[string]any, error) {
		return map[string]any{"status": "processing"}, nil
	}
	_, err := Wait(context.Background(), fetch, "task-1", Options{
		Timeout:  10 * time.Millisecond,
		Interval: 5 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var e *errs.Error
	if !errs.As(err, &e) || e.Kind != errs.KindTimeout {
		t.Fatalf("expected KindTimeout, got %v", err)
	}
}

func TestWaitInvokesOnUpdate(t *testing.T) {
	t.Parallel()
	var updates []string
	fetch := func(ctx context.Context, id string) (map[string]any, error) {
		return map[string]any{"status": "completed"}, nil
	}
	_, err := Wait(context.Background(), fetch, "task-1", Options{
		Interval: time.Millisecond,
		OnUpdate: func(r Record) { updates = append(updates, r.RawState) },
	})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(updates) != 1 || updates[0] != "completed" {
		t.Fatalf("unexpected updates: %v", updates)
	}
}
