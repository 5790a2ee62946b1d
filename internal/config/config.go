// Package config implements the profile/credential configuration store: a
// TOML file mapping profile name to connection parameters, with two
// per-platform default slots and environment-variable expansion performed
// at read time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"redisctl/internal/credstore"
	"redisctl/internal/errs"
	"redisctl/internal/resilience"
)

// Platform identifies which administrative surface a profile talks to.
type Platform string

const (
	PlatformCloud      Platform = "cloud"
	PlatformEnterprise Platform = "enterprise"
	PlatformDatabase   Platform = "database"
)

// CloudCredentials holds the header-based auth material for the hosted API.
type CloudCredentials struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
	APIURL    string `toml:"api_url,omitempty"`
}

// DefaultCloudURL is used when a profile omits api_url.
const DefaultCloudURL = "https://api.redislabs.com/v1"

// EnterpriseCredentials holds basic-auth material for a self-hosted cluster.
// Password is optional: when empty the caller is expected to prompt.
type EnterpriseCredentials struct {
	URL          string `toml:"url"`
	Username     string `toml:"username"`
	Password     string `toml:"password,omitempty"`
	InsecureTLS  bool   `toml:"insecure,omitempty"`
}

// DatabaseCredentials holds direct data-plane connection parameters.
type DatabaseCredentials struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
	TLS      bool   `toml:"tls,omitempty"`
	DB       int    `toml:"db,omitempty"`
}

// Profile is a single named connection definition. Exactly one of Cloud,
// Enterprise, Database is populated, selected by DeploymentType.
type Profile struct {
	DeploymentType Platform
	Cloud          *CloudCredentials
	Enterprise     *EnterpriseCredentials
	Database       *DatabaseCredentials

	// FilesAPIKey overrides the global support-bundle upload secret for this
	// profile only.
	FilesAPIKey string

	Resilience *ResilienceOverride
}

// ResilienceOverride is the optional [profiles.<name>.resilience] table.
type ResilienceOverride struct {
	TimeoutMS      int64   `toml:"timeout_ms,omitempty"`
	MaxAttempts    int     `toml:"max_attempts,omitempty"`
	InitialBackoff int64   `toml:"initial_backoff_ms,omitempty"`
	MaxBackoffMS   int64   `toml:"max_backoff_ms,omitempty"`
	Multiplier     float64 `toml:"multiplier,omitempty"`
	Jitter         float64 `toml:"jitter,omitempty"`
}

// Apply overrides the fields of base that are explicitly set.
func (r *ResilienceOverride) Apply(base resilience.Policy) resilience.Policy {
	if r == nil {
		return base
	}
	if r.TimeoutMS > 0 {
		base.RequestTimeout = time.Duration(r.TimeoutMS) * time.Millisecond
	}
	if r.MaxAttempts > 0 {
		base.MaxAttempts = r.MaxAttempts
	}
	if r.InitialBackoff > 0 {
		base.InitialBackoff = time.Duration(r.InitialBackoff) * time.Millisecond
	}
	if r.MaxBackoffMS > 0 {
		base.MaxBackoff = time.Duration(r.MaxBackoffMS) * time.Millisecond
	}
	if r.Multiplier > 0 {
		base.Multiplier = r.Multiplier
	}
	if r.Jitter > 0 {
		base.JitterFraction = r.Jitter
	}
	return base
}

// Config is the process-wide configuration record.
type Config struct {
	DefaultCloud      string             `toml:"default_cloud,omitempty"`
	DefaultEnterprise string             `toml:"default_enterprise,omitempty"`
	FilesAPIKey       string             `toml:"files_api_key,omitempty"`
	Profiles          map[string]Profile `toml:"profiles,omitempty"`
}

// New returns an empty configuration, equivalent to what Load returns for a
// missing config file.
func New() *Config {
	return &Config{Profiles: map[string]Profile{}}
}

// SetProfile inserts or replaces a profile.
func (c *Config) SetProfile(name string, p Profile) {
	if c.Profiles == nil {
		c.Profiles = map[string]Profile{}
	}
	c.Profiles[name] = p
}

// RemoveProfile deletes a profile and clears either default slot that named
// it, in the same in-memory mutation (the caller still must Save to persist
// it atomically).
func (c *Config) RemoveProfile(name string) bool {
	if _, ok := c.Profiles[name]; !ok {
		return false
	}
	delete(c.Profiles, name)
	if c.DefaultCloud == name {
		c.DefaultCloud = ""
	}
	if c.DefaultEnterprise == name {
		c.DefaultEnterprise = ""
	}
	return true
}

// ProfilesOfType returns profile names of the given platform, sorted
// lexicographically.
func (c *Config) ProfilesOfType(platform Platform) []string {
	var names []string
	for name, p := range c.Profiles {
		if p.DeploymentType == platform {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ResolveProfile implements the selection order from §4.2: explicit name,
// then the platform default slot, then the first profile of that platform
// lexicographically, then a helpful error.
func (c *Config) ResolveProfile(platform Platform, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	def := c.defaultFor(platform)
	if def != "" {
		return def, nil
	}
	if names := c.ProfilesOfType(platform); len(names) > 0 {
		return names[0], nil
	}
	other := otherPlatform(platform)
	if names := c.ProfilesOfType(other); len(names) > 0 {
		return "", errs.New(errs.KindConfig, fmt.Sprintf(
			"no %s profiles configured; available %s profiles: %s (run 'profile set' to create a %s profile)",
			platform, other, joinNames(names), platform))
	}
	return "", errs.New(errs.KindConfig, "no profiles configured; run 'profile set' to create one")
}

func (c *Config) defaultFor(platform Platform) string {
	switch platform {
	case PlatformCloud:
		return c.DefaultCloud
	case PlatformEnterprise:
		return c.DefaultEnterprise
	default:
		return ""
	}
}

func otherPlatform(p Platform) Platform {
	if p == PlatformCloud {
		return PlatformEnterprise
	}
	return PlatformCloud
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// ResolveCloudCredentials resolves every credential reference field against
// the credential store, falling back to the standard environment variables
// named in the spec.
func (p Profile) ResolveCloudCredentials() (CloudCredentials, error) {
	if p.Cloud == nil {
		return CloudCredentials{}, errs.New(errs.KindConfig, "profile is not a cloud profile")
	}
	key, err := credstore.Resolve("API key", p.Cloud.APIKey, "REDIS_CLOUD_API_KEY")
	if err != nil {
		return CloudCredentials{}, errs.Wrap(errs.KindCredential, err.Error(), err)
	}
	secret, err := credstore.Resolve("API secret", p.Cloud.APISecret, "REDIS_CLOUD_API_SECRET")
	if err != nil {
		return CloudCredentials{}, errs.Wrap(errs.KindCredential, err.Error(), err)
	}
	url := p.Cloud.APIURL
	if url == "" {
		url = DefaultCloudURL
	}
	url, err = credstore.Resolve("API URL", url, "REDIS_CLOUD_API_URL")
	if err != nil {
		return CloudCredentials{}, errs.Wrap(errs.KindCredential, err.Error(), err)
	}
	return CloudCredentials{APIKey: key, APISecret: secret, APIURL: url}, nil
}

// ResolveEnterpriseCredentials resolves URL/username/password, tolerating an
// absent password (interactive prompting is the caller's job).
func (p Profile) ResolveEnterpriseCredentials() (EnterpriseCredentials, error) {
	if p.Enterprise == nil {
		return EnterpriseCredentials{}, errs.New(errs.KindConfig, "profile is not an enterprise profile")
	}
	url, err := credstore.Resolve("URL", p.Enterprise.URL, "REDIS_ENTERPRISE_URL")
	if err != nil {
		return EnterpriseCredentials{}, errs.Wrap(errs.KindCredential, err.Error(), err)
	}
	user, err := credstore.Resolve("username", p.Enterprise.Username, "REDIS_ENTERPRISE_USER")
	if err != nil {
		return EnterpriseCredentials{}, errs.Wrap(errs.KindCredential, err.Error(), err)
	}
	pass := p.Enterprise.Password
	if pass != "" {
		pass, err = credstore.Resolve("password", pass, "REDIS_ENTERPRISE_PASSWORD")
		if err != nil {
			return EnterpriseCredentials{}, errs.Wrap(errs.KindCredential, err.Error(), err)
		}
	}
	return EnterpriseCredentials{URL: url, Username: user, Password: pass, InsecureTLS: p.Enterprise.InsecureTLS}, nil
}

// Path returns the canonical config file location for the current OS,
// preferring the Linux-style path on macOS when it already exists (so a
// machine migrated from Linux keeps working without a manual move).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrap(errs.KindConfig, "could not determine home directory", err)
	}
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "redis", "redisctl", "config.toml"), nil
	case "darwin":
		linuxStyle := filepath.Join(home, ".config", "redisctl", "config.toml")
		if _, err := os.Stat(linuxStyle); err == nil {
			return linuxStyle, nil
		}
		return filepath.Join(home, "Library", "Application Support", "com.redis.redisctl", "config.toml"), nil
	default:
		return filepath.Join(home, ".config", "redisctl", "config.toml"), nil
	}
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandEnv substitutes ${VAR} / ${VAR:-default} in raw TOML text before
// parsing. References with no default and no set variable pass through
// verbatim (never silently become the empty string).
func expandEnv(content string) string {
	return envPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envPattern.FindStringSubmatch(match)
		name, hasDefault, def := sub[1], sub[2] != "", sub[3]
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// Load reads the config file at Path(). A missing file yields an empty,
// valid Config rather than an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and parses the config file at path.
func LoadFrom(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errs.Wrap(errs.KindIO, fmt.Sprintf("failed to read config %s", path), err)
	}
	expanded := expandEnv(string(raw))
	var doc rawConfig
	if err := toml.Unmarshal([]byte(expanded), &doc); err != nil {
		return nil, errs.Wrap(errs.KindConfig, fmt.Sprintf("failed to parse config %s", path), err)
	}
	return doc.toConfig()
}

// Save writes the config to Path(), atomically (write-temp + rename).
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path, creating parent directories
// and using write-temp-then-rename so a failure mid-write never corrupts the
// previous file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errs.Wrap(errs.KindIO, fmt.Sprintf("failed to create config dir %s", dir), err)
	}
	doc := c.toRaw()
	body, err := toml.Marshal(doc)
	if err != nil {
		return errs.Wrap(errs.KindConfig, "failed to encode config", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.toml.tmp")
	if err != nil {
		return errs.Wrap(errs.KindIO, "failed to create temp config file", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errs.Wrap(errs.KindIO, "failed to write temp config file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(errs.KindIO, "failed to close temp config file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(errs.KindIO, "failed to persist config file", err)
	}
	return nil
}
