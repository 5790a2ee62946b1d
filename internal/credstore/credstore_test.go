package credstore

import (
	"os"
	"testing"
)

func TestResolveLiteral(t *testing.T) {
	t.Parallel()
	got, err := Resolve("api_key", "plain-value", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "plain-value" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveEnvPattern(t *testing.T) {
	t.Setenv("REDISCTL_TEST_VAR", "from-env")
	got, err := Resolve("api_secret", "${REDISCTL_TEST_VAR}", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveEnvPatternWithDefault(t *testing.T) {
	t.Parallel()
	os.Unsetenv("REDISCTL_TEST_VAR_UNSET")
	got, err := Resolve("api_secret", "${REDISCTL_TEST_VAR_UNSET:-fallback}", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveEnvPatternUnsetNoDefault(t *testing.T) {
	t.Parallel()
	os.Unsetenv("REDISCTL_TEST_VAR_MISSING")
	_, err := Resolve("api_secret", "${REDISCTL_TEST_VAR_MISSING}", "")
	if err == nil {
		t.Fatal("expected error")
	}
	var credErr *Error
	if !asCredError(err, &credErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
}

func TestResolveKeyringMissingFallsBackToEnv(t *testing.T) {
	t.Setenv("REDISCTL_TEST_FALLBACK", "fallback-secret")
	got, err := Resolve("api_secret", "keyring:redisctl/test-profile", "REDISCTL_TEST_FALLBACK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback-secret" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveKeyringMalformed(t *testing.T) {
	t.Parallel()
	_, err := Resolve("api_secret", "keyring:noslash", "")
	if err == nil {
		t.Fatal("expected error")
	}
}

func asCredError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if ok {
		*target = e
	}
	return ok
}
