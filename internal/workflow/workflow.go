// Package workflow is the named-registry runtime for multi-step operations
// that span several API calls: subscription-setup (Cloud) and init-cluster
// (Enterprise) today, with room for more by registration.
package workflow

import (
	"context"

	"redisctl/internal/connmgr"
	"redisctl/internal/errs"
	"redisctl/internal/output"
)

// Context carries what every workflow needs to reach the API and render its
// outcome, without each workflow threading its own copy of these through.
type Context struct {
	Conn         *connmgr.Manager
	ProfileName  string
	OutputFormat output.Format
	// WaitTimeout and WaitInterval are in seconds. The built-in workflows do
	// not read them; they take wait settings from their own args.
	WaitTimeout  int
	WaitInterval int
}

// Quiet reports whether human progress lines should be suppressed, per the
// rule that machine output formats never mix with progress text.
func (c Context) Quiet() bool {
	return c.OutputFormat == output.JSON || c.OutputFormat == output.YAML
}

// Result is what a workflow returns: whether it as a whole succeeded, a
// human summary message, and a map of named outputs attached to the
// rendered payload.
type Result struct {
	Success bool
	Message string
	Outputs map[string]any
}

// Workflow is the single contract every registered operation implements.
type Workflow interface {
	Name() string
	Description() string
	Execute(ctx context.Context, wctx Context, args map[string]any) (Result, error)
}

// Registry is a named lookup table of workflows.
type Registry struct {
	workflows map[string]Workflow
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{workflows: map[string]Workflow{}}
}

// Register adds w, keyed by its own Name(). A later registration with the
// same name replaces the earlier one.
func (r *Registry) Register(w Workflow) {
	r.workflows[w.Name()] = w
}

// Get looks up a workflow by name.
func (r *Registry) Get(name string) (Workflow, bool) {
	w, ok := r.workflows[name]
	return w, ok
}

// Names lists every registered workflow name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.workflows))
	for name := range r.workflows {
		names = append(names, name)
	}
	return names
}

// Default returns a registry pre-populated with the built-in catalog.
func Default() *Registry {
	r := NewRegistry()
	r.Register(&SubscriptionSetup{})
	r.Register(&InitCluster{})
	return r
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func boolArg(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

func float64Arg(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return fallback
}

func intArg(args map[string]any, key string, fallback int) int {
	if v, ok := args[key]; ok {
		switch t := v.(type) {
		case int:
			return t
		case float64:
			return int(t)
		}
	}
	return fallback
}

func requireStringArg(args map[string]any, key string) (string, error) {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s, nil
		}
	}
	return "", errs.New(errs.KindValidation, key+" is required")
}
