// Package connmgr builds a ready HTTP client from a profile name and
// platform. It holds the loaded Config by value and rebuilds a fresh client
// on every call — no cross-invocation connection pooling, no cached
// credentials.
package connmgr

import (
	"context"

	"redisctl/internal/apiclient"
	"redisctl/internal/cloudclient"
	"redisctl/internal/config"
	"redisctl/internal/entclient"
	"redisctl/internal/errs"
	"redisctl/internal/resilience"
)

// RawHTTPClient is the platform-agnostic surface the task orchestrator and
// output pipeline depend on. Both cloudclient.Client and entclient.Client
// satisfy it.
type RawHTTPClient interface {
	GetRaw(ctx context.Context, path string) (any, error)
	PostRaw(ctx context.Context, path string, body any) (any, error)
	PutRaw(ctx context.Context, path string, body any) (any, error)
	DeleteRaw(ctx context.Context, path string) (any, error)
	GetBytes(ctx context.Context, path string) ([]byte, error)
}

// Manager resolves profile names to clients.
type Manager struct {
	Config *config.Config
	Logger apiclient.EventLogger
}

// New returns a Manager over an already-loaded Config.
func New(cfg *config.Config) *Manager {
	return &Manager{Config: cfg}
}

// WithLogger attaches an event logger that every client built afterward will
// report requests and retries to.
func (m *Manager) WithLogger(logger apiclient.EventLogger) *Manager {
	m.Logger = logger
	return m
}

func (m *Manager) profile(platform config.Platform, name string) (string, config.Profile, error) {
	resolved, err := m.Config.ResolveProfile(platform, name)
	if err != nil {
		return "", config.Profile{}, err
	}
	p, ok := m.Config.Profiles[resolved]
	if !ok {
		return "", config.Profile{}, errs.New(errs.KindConfig, "profile \""+resolved+"\" not found")
	}
	if p.DeploymentType != platform {
		return "", config.Profile{}, errs.New(errs.KindConfig, "profile \""+resolved+"\" is not a "+string(platform)+" profile")
	}
	return resolved, p, nil
}

func policyFor(p config.Profile) resilience.Policy {
	base := resilience.Default()
	return p.Resilience.Apply(base)
}

// CloudClient resolves name (or the configured default) and constructs a
// Cloud client from it.
func (m *Manager) CloudClient(name string) (*cloudclient.Client, string, error) {
	resolved, p, err := m.profile(config.PlatformCloud, name)
	if err != nil {
		return nil, "", err
	}
	creds, err := p.ResolveCloudCredentials()
	if err != nil {
		return nil, "", err
	}
	c, err := cloudclient.New(cloudclient.Config{
		APIKey:  creds.APIKey,
		Secret:  creds.APISecret,
		BaseURL: creds.APIURL,
		Policy:  policyFor(p),
		Logger:  m.Logger,
	})
	return c, resolved, err
}

// EnterpriseClient resolves name (or the configured default) and constructs
// an Enterprise client from it.
func (m *Manager) EnterpriseClient(name string) (*entclient.Client, string, error) {
	resolved, p, err := m.profile(config.PlatformEnterprise, name)
	if err != nil {
		return nil, "", err
	}
	creds, err := p.ResolveEnterpriseCredentials()
	if err != nil {
		return nil, "", err
	}
	c, err := entclient.New(entclient.Config{
		BaseURL:     creds.URL,
		Username:    creds.Username,
		Password:    creds.Password,
		InsecureTLS: creds.InsecureTLS,
		Policy:      policyFor(p),
		Logger:      m.Logger,
	})
	return c, resolved, err
}

// DatabaseProfile resolves name (or the configured default) to its raw
// connection parameters, for the direct-Redis adapter.
func (m *Manager) DatabaseProfile(name string) (string, config.Profile, error) {
	return m.profile(config.PlatformDatabase, name)
}
