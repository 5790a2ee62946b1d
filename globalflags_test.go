package main

import (
	"testing"

	"redisctl/internal/output"
)

func TestParseGlobalFlagsExtractsAnywhere(t *testing.T) {
	t.Parallel()
	g, rest := parseGlobalFlags([]string{"cloud", "--profile", "prod", "subscription", "list", "-o", "json", "--query", "[0].id"})
	if g.Profile != "prod" {
		t.Fatalf("expected profile prod, got %q", g.Profile)
	}
	if g.Output != output.JSON {
		t.Fatalf("expected JSON output, got %v", g.Output)
	}
	if g.Query != "[0].id" {
		t.Fatalf("expected query, got %q", g.Query)
	}
	want := []string{"cloud", "subscription", "list"}
	if len(rest) != len(want) {
		t.Fatalf("expected rest %v, got %v", want, rest)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("expected rest %v, got %v", want, rest)
		}
	}
}

func TestParseGlobalFlagsVerbosity(t *testing.T) {
	t.Parallel()
	g, _ := parseGlobalFlags([]string{"-vv", "profile", "list"})
	if g.Verbosity != 2 {
		t.Fatalf("expected verbosity 2, got %d", g.Verbosity)
	}
}

func TestParseGlobalFlagsEqualsForm(t *testing.T) {
	t.Parallel()
	g, _ := parseGlobalFlags([]string{"--profile=prod", "--output=yaml"})
	if g.Profile != "prod" || g.Output != output.YAML {
		t.Fatalf("unexpected flags: %+v", g)
	}
}
