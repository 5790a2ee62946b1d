// Package entclient is the basic-auth JSON client for a self-hosted
// Enterprise cluster's REST API. Unlike cloudclient, credentials are
// optional: the bootstrap endpoints are callable before any user exists.
package entclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"redisctl/internal/apiclient"
	"redisctl/internal/errs"
	"redisctl/internal/resilience"
)

// Client is a RawHTTPClient for the Enterprise platform.
type Client struct {
	username string
	password string
	inner    *apiclient.Client
}

// Config bundles the resolved Enterprise credentials and dial parameters.
// Username/Password may both be empty for bootstrap-only calls.
type Config struct {
	BaseURL     string
	Username    string
	Password    string
	InsecureTLS bool
	Policy      resilience.Policy
	Logger      apiclient.EventLogger
}

// New constructs an Enterprise client. TLS verification is skipped only when
// InsecureTLS is explicitly set — never as an implicit default.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errs.New(errs.KindConfig, "enterprise profile is missing url")
	}
	policy := cfg.Policy
	if policy.RequestTimeout == 0 {
		policy = resilience.Default()
	}
	breaker := resilience.NewBreaker(breakerConfig(policy))

	transport := &http.Transport{}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in for self-signed internal clusters
	}
	httpClient := &http.Client{Timeout: policy.RequestTimeout, Transport: transport}

	inner, err := apiclient.NewClient(apiclient.Config{
		BaseURL:      cfg.BaseURL,
		UserAgent:    "redisctl/enterprise",
		Timeout:      policy.RequestTimeout,
		MaxRetries:   policy.MaxAttempts - 1,
		HTTPClient:   httpClient,
		Logger:       cfg.Logger,
		RetryDecider: policy.RetryDecider(breaker),
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindConfig, "failed to construct enterprise client", err)
	}
	return &Client{username: cfg.Username, password: cfg.Password, inner: inner}, nil
}

// FromEnv builds a client from REDIS_ENTERPRISE_* environment variables
// alone, without consulting any profile.
func FromEnv() (*Client, error) {
	insecure, _ := strconv.ParseBool(os.Getenv("REDIS_ENTERPRISE_INSECURE"))
	return New(Config{
		BaseURL:     os.Getenv("REDIS_ENTERPRISE_URL"),
		Username:    os.Getenv("REDIS_ENTERPRISE_USER"),
		Password:    os.Getenv("REDIS_ENTERPRISE_PASSWORD"),
		InsecureTLS: insecure,
		Policy:      resilience.Default(),
	})
}

func breakerConfig(p resilience.Policy) resilience.BreakerConfig {
	if p.Breaker != nil {
		return *p.Breaker
	}
	return resilience.BreakerConfig{}
}

func (c *Client) prepareAuth(ctx context.Context, attempt int, req *http.Request) error {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (apiclient.Response, error) {
	resp, err := c.inner.Do(ctx, apiclient.Request{
		Method:    method,
		Path:      path,
		JSONBody:  body,
		Prepare:   c.prepareAuth,
		LogFields: map[string]any{"platform": "enterprise"},
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

func (c *Client) GetRaw(ctx context.Context, path string) (any, error) {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

func (c *Client) PostRaw(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.do(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

func (c *Client) PutRaw(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.do(ctx, "PUT", path, body)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

func (c *Client) DeleteRaw(ctx context.Context, path string) (any, error) {
	resp, err := c.do(ctx, "DELETE", path, nil)
	if err != nil {
		return nil, err
	}
	return decode(resp)
}

// GetBytes streams a binary endpoint (support bundles) without JSON parsing.
func (c *Client) GetBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// HasCredentials reports whether this client will send basic auth at all.
func (c *Client) HasCredentials() bool { return c.username != "" }
