// Package taskwait implements the async task polling loop shared by Cloud
// write operations: extract an identifier from a heterogeneous response
// shape, poll until a terminal state, and surface a uniform Record.
// Enterprise bootstrap actions in init-cluster are polled by that
// workflow's own loop, not by this package.
package taskwait

import (
	"context"
	"fmt"
	"strings"
	"time"

	"redisctl/internal/errs"
)

// State is the abstract task/action lifecycle, independent of which literal
// string the API used to spell it.
type State int

const (
	Pending State = iota
	Running
	Success
	Failure
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Running:
		return "Running"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is one that ends the poll loop.
func (s State) IsTerminal() bool {
	return s == Success || s == Failure || s == Cancelled
}

var stateTable = map[string]State{
	"":                     Pending,
	"unknown":              Pending,
	"queued":               Pending,
	"received":             Pending,
	"pending":              Pending,
	"processing":           Running,
	"running":              Running,
	"in_progress":          Running,
	"in-progress":          Running,
	"completed":            Success,
	"complete":             Success,
	"succeeded":            Success,
	"success":              Success,
	"processing-completed": Success,
	"finished":             Success,
	"done":                 Success,
	"failed":               Failure,
	"error":                Failure,
	"processing-error":     Failure,
	"cancelled":            Cancelled,
	"canceled":             Cancelled,
}

// classify maps a raw API state string to the abstract State, comparing
// case-insensitively and defaulting unrecognized strings to Pending so a
// novel in-progress spelling doesn't wedge the loop.
func classify(raw string) State {
	if s, ok := stateTable[strings.ToLower(raw)]; ok {
		return s
	}
	return Pending
}

// Symbol returns the glyph used in progress rendering for state s.
func Symbol(s State) string {
	switch s {
	case Success:
		return "✓"
	case Failure:
		return "✗"
	case Cancelled:
		return "⊘"
	case Running:
		return "⟳"
	default:
		return ""
	}
}

// FormatState renders raw (the API's own spelling, case preserved) with the
// symbol for its classified state prefixed, or bare if Pending.
func FormatState(raw string) string {
	sym := Symbol(classify(raw))
	if sym == "" {
		return raw
	}
	return sym + " " + raw
}

// Record is the normalized view of a task/action response, keeping the raw
// JSON body alongside the fields the orchestrator cares about.
type Record struct {
	ID          string
	RawState    string
	State       State
	Progress    any
	Description string
	CreatedAt   string
	UpdatedAt   string
	ResourceID  string
	ErrorText   string
	Raw         map[string]any
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := asString(v); ok {
				return s
			}
		}
	}
	return ""
}

func nestedMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key]; ok {
		if nm, ok := v.(map[string]any); ok {
			return nm
		}
	}
	return nil
}

// ExtractID probes a write response for a task/action identifier, in the
// order taskId, task_id, response.id. Returns "" if none is present, meaning
// the operation was synchronous.
func ExtractID(response map[string]any) string {
	if id := firstString(response, "taskId", "task_id"); id != "" {
		return id
	}
	if nested := nestedMap(response, "response"); nested != nil {
		if id := firstString(nested, "id"); id != "" {
			return id
		}
	}
	return ""
}

// Parse builds a Record from a raw task/action body.
func Parse(body map[string]any) Record {
	raw := firstString(body, "status", "state")
	rec := Record{
		ID:          firstString(body, "taskId", "id", "action_uid"),
		RawState:    raw,
		State:       classify(raw),
		Description: firstString(body, "description"),
		CreatedAt:   firstString(body, "createdAt", "created_at"),
		UpdatedAt:   firstString(body, "updatedAt", "updated_at"),
		Raw:         body,
	}
	if p, ok := body["progress"]; ok {
		rec.Progress = p
	}
	if nested := nestedMap(body, "response"); nested != nil {
		if rid := firstString(nested, "resourceId"); rid != "" {
			rec.ResourceID = rid
		} else if res := nestedMap(nested, "resource"); res != nil {
			rec.ResourceID = firstString(res, "id")
		}
	}
	rec.ErrorText = extractError(body)
	return rec
}

// extractError implements the §4.7 precedence: nested response.error object
// first (joining type/status/description), then top-level error, then
// errorMessage, then a generic fallback built by the caller.
func extractError(body map[string]any) string {
	if nested := nestedMap(body, "response"); nested != nil {
		if errVal, ok := nested["error"]; ok {
			switch e := errVal.(type) {
			case string:
				if e != "" {
					return e
				}
			case map[string]any:
				var parts []string
				if t := firstString(e, "type"); t != "" {
					parts = append(parts, "type="+t)
				}
				if s := firstString(e, "status"); s != "" {
					parts = append(parts, "status="+s)
				}
				if d := firstString(e, "description"); d != "" {
					parts = append(parts, "description="+d)
				}
				if len(parts) > 0 {
					return strings.Join(parts, " ")
				}
			}
		}
	}
	if e := firstString(body, "error"); e != "" {
		return e
	}
	if e := firstString(body, "errorMessage"); e != "" {
		return e
	}
	return ""
}

// Fetcher retrieves the current state of a single task/action by id. Cloud
// and Enterprise wire this to their respective GET endpoints.
type Fetcher func(ctx context.Context, id string) (map[string]any, error)

// Options configures the wait loop; zero values take the defaults named in
// the spec (300s timeout, 5s interval).
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
	// OnUpdate, if set, is invoked after every poll with the latest Record,
	// letting the caller drive a spinner. Not called for a poll whose fetch
	// failed.
	OnUpdate func(Record)
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 300 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = 5 * time.Second
	}
	return o
}

// Wait polls fetch(id) on Interval until the task reaches a terminal state
// or Timeout elapses, or ctx is cancelled. On Failure it returns the final
// Record alongside an errs.KindAPI error carrying the extracted error text.
// On timeout it returns errs.KindTimeout.
func Wait(ctx context.Context, fetch Fetcher, id string, opts Options) (Record, error) {
	opts = opts.withDefaults()
	deadline := time.Now().Add(opts.Timeout)

	for {
		body, err := fetch(ctx, id)
		if err != nil {
			return Record{}, err
		}
		rec := Parse(body)
		if rec.ID == "" {
			rec.ID = id
		}
		if opts.OnUpdate != nil {
			opts.OnUpdate(rec)
		}

		if rec.State.IsTerminal() {
			if rec.State == Failure {
				msg := rec.ErrorText
				if msg == "" {
					msg = fmt.Sprintf("task %s failed", id)
				}
				return rec, errs.New(errs.KindAPI, msg)
			}
			return rec, nil
		}

		if time.Now().After(deadline) {
			return rec, errs.New(errs.KindTimeout, fmt.Sprintf(
				"task %s did not complete within %s", id, opts.Timeout))
		}

		select {
		case <-ctx.Done():
			return rec, errs.Wrap(errs.KindTimeout, fmt.Sprintf("task %s wait cancelled", id), ctx.Err())
		case <-time.After(opts.Interval):
		}
	}
}
