package entclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"redisctl/internal/resilience"
)

func TestGetRawSendsBasicAuth(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			t.Fatalf("missing/incorrect basic auth")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"state":"active"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Username: "admin", Password: "secret", Policy: resilience.Default()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	v, err := c.GetRaw(context.Background(), "/v1/cluster")
	if err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if m := v.(map[string]any); m["state"] != "active" {
		t.Fatalf("unexpected: %#v", v)
	}
}

func TestBootstrapCallableWithoutCredentials(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			t.Fatal("did not expect basic auth header")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"state":"unconfigured"}`))
	}))
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Policy: resilience.Default()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.HasCredentials() {
		t.Fatal("expected no credentials")
	}
	if _, err := c.GetRaw(context.Background(), "/v1/bootstrap"); err != nil {
		t.Fatalf("get raw: %v", err)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error")
	}
}
