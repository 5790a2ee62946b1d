// Package cloudclient is the authenticated JSON client for the hosted Cloud
// REST API: two stable header names carry the key/secret, and every call
// flows through a resilience.Policy-governed apiclient.Client.
package cloudclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"redisctl/internal/apiclient"
	"redisctl/internal/errs"
	"redisctl/internal/resilience"
)

const (
	headerAPIKey    = "x-api-key"
	headerAPISecret = "x-api-secret-key"
)

// Client is a RawHTTPClient for the Cloud platform.
type Client struct {
	apiKey  string
	secret  string
	inner   *apiclient.Client
}

// Config bundles the resolved Cloud credentials and the resilience policy to
// apply.
type Config struct {
	APIKey  string
	Secret  string
	BaseURL string
	Policy  resilience.Policy
	Logger  apiclient.EventLogger
}

// New constructs a Cloud client. Construction never makes a network call.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.Secret) == "" {
		return nil, errs.New(errs.KindCredential, "cloud profile is missing api_key/api_secret")
	}
	policy := cfg.Policy
	if policy.RequestTimeout == 0 {
		policy = resilience.Default()
	}
	breaker := resilience.NewBreaker(breakerConfig(policy))
	inner, err := apiclient.NewClient(apiclient.Config{
		BaseURL:      cfg.BaseURL,
		UserAgent:    "redisctl/cloud",
		Timeout:      policy.RequestTimeout,
		MaxRetries:   policy.MaxAttempts - 1,
		Logger:       cfg.Logger,
		RetryDecider: policy.RetryDecider(breaker),
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "failed to construct cloud client", err)
	}
	return &Client{apiKey: cfg.APIKey, secret: cfg.Secret, inner: inner}, nil
}

func breakerConfig(p resilience.Policy) resilience.BreakerConfig {
	if p.Breaker != nil {
		return *p.Breaker
	}
	return resilience.BreakerConfig{}
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{headerAPIKey: c.apiKey, headerAPISecret: c.secret}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (apiclient.Response, error) {
	resp, err := c.inner.Do(ctx, apiclient.Request{
		Method:   method,
		Path:     path,
		Headers:  c.authHeaders(),
		JSONBody: body,
		LogFields: map[string]any{
			"platform": "cloud",
			"auth":     c.MaskedAuthSummary(),
		},
	})
	if err != nil {
		return apiclient.Response{}, errs.Wrap(errs.KindTransport, fmt.Sprintf("%s %s: transport error", method, path), err)
	}
	if resp.StatusCode >= 400 {
		return resp, errs.APIError(resp.StatusCode, string(resp.Body))
	}
	return resp, nil
}

func decode(resp apiclient.Response) (any, error) {
	if len(resp.Body) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := json.Unmarshal(resp.Body, &v); err != nil {
		return nil, errs.Wrap(errs.KindAPI, "failed to decode response body as JSON", err)
	}
	return v, nil
}

// GetRaw issues GET path and returns the decoded JSON value.
func (c *Client) GetRaw(ctx context.Context, path string) (any, error) {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

// PostRaw issues POST path with body and returns the decoded JSON value.
func (c *Client) PostRaw(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.do(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

// PutRaw issues PUT path with body and returns the decoded JSON value.
func (c *Client) PutRaw(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.do(ctx, "PUT", path, body)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

// DeleteRaw issues DELETE path and returns the decoded JSON value.
func (c *Client) DeleteRaw(ctx context.Context, path string) (any, error) {
	resp, err := c.do(ctx, "DELETE", path, nil)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

// GetBytes issues GET path and returns the raw response body, for binary
// payloads such as cost reports.
func (c *Client) GetBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// MaskedAuthSummary returns a debug-level log line describing the auth
// headers without ever printing the secret in cleartext.
func (c *Client) MaskedAuthSummary() string {
	return fmt.Sprintf("%s=%s %s=%s", headerAPIKey, mask(c.apiKey), headerAPISecret, mask(c.secret))
}

func mask(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
