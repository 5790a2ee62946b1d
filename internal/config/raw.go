package config

import "fmt"

// rawConfig and rawProfile are the literal TOML document shapes. Profile's
// three credential variants are modeled in Rust (and originally here) as a
// tagged union discriminated by the sibling deployment_type field; go-toml/v2
// has no serde-style flatten-of-an-enum, so the raw shape carries every
// field inline and toConfig/toRaw project it onto the typed union.
type rawConfig struct {
	DefaultCloud      string                `toml:"default_cloud,omitempty"`
	DefaultEnterprise string                `toml:"default_enterprise,omitempty"`
	FilesAPIKey       string                `toml:"files_api_key,omitempty"`
	Profiles          map[string]rawProfile `toml:"profiles,omitempty"`
}

type rawProfile struct {
	DeploymentType string `toml:"deployment_type"`

	// Cloud fields.
	APIKey    string `toml:"api_key,omitempty"`
	APISecret string `toml:"api_secret,omitempty"`
	APIURL    string `toml:"api_url,omitempty"`

	// Enterprise fields.
	URL      string `toml:"url,omitempty"`
	Username string `toml:"username,omitempty"`
	Password string `toml:"password,omitempty"`
	Insecure bool   `toml:"insecure,omitempty"`

	// Database fields.
	Host string `toml:"host,omitempty"`
	Port int    `toml:"port,omitempty"`
	DB   int    `toml:"db,omitempty"`
	TLS  bool   `toml:"tls,omitempty"`

	FilesAPIKey string              `toml:"files_api_key,omitempty"`
	Resilience  *ResilienceOverride `toml:"resilience,omitempty"`
}

func (d rawConfig) toConfig() (*Config, error) {
	c := &Config{
		DefaultCloud:      d.DefaultCloud,
		DefaultEnterprise: d.DefaultEnterprise,
		FilesAPIKey:       d.FilesAPIKey,
		Profiles:          map[string]Profile{},
	}
	for name, rp := range d.Profiles {
		p, err := rp.toProfile()
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		c.Profiles[name] = p
	}
	return c, nil
}

func (rp rawProfile) toProfile() (Profile, error) {
	p := Profile{
		DeploymentType: Platform(rp.DeploymentType),
		FilesAPIKey:    rp.FilesAPIKey,
		Resilience:     rp.Resilience,
	}
	switch p.DeploymentType {
	case PlatformCloud:
		url := rp.APIURL
		if url == "" {
			url = DefaultCloudURL
		}
		p.Cloud = &CloudCredentials{APIKey: rp.APIKey, APISecret: rp.APISecret, APIURL: url}
	case PlatformEnterprise:
		p.Enterprise = &EnterpriseCredentials{URL: rp.URL, Username: rp.Username, Password: rp.Password, InsecureTLS: rp.Insecure}
	case PlatformDatabase:
		p.Database = &DatabaseCredentials{Host: rp.Host, Port: rp.Port, Username: rp.Username, Password: rp.Password, TLS: rp.TLS, DB: rp.DB}
	default:
		return Profile{}, fmt.Errorf("unknown deployment_type %q", rp.DeploymentType)
	}
	return p, nil
}

func (c *Config) toRaw() rawConfig {
	d := rawConfig{
		DefaultCloud:      c.DefaultCloud,
		DefaultEnterprise: c.DefaultEnterprise,
		FilesAPIKey:       c.FilesAPIKey,
		Profiles:          map[string]rawProfile{},
	}
	for name, p := range c.Profiles {
		d.Profiles[name] = p.toRaw()
	}
	return d
}

func (p Profile) toRaw() rawProfile {
	rp := rawProfile{
		DeploymentType: string(p.DeploymentType),
		FilesAPIKey:    p.FilesAPIKey,
		Resilience:     p.Resilience,
	}
	switch {
	case p.Cloud != nil:
		rp.APIKey = p.Cloud.APIKey
		rp.APISecret = p.Cloud.APISecret
		rp.APIURL = p.Cloud.APIURL
	case p.Enterprise != nil:
		rp.URL = p.Enterprise.URL
		rp.Username = p.Enterprise.Username
		rp.Password = p.Enterprise.Password
		rp.Insecure = p.Enterprise.InsecureTLS
	case p.Database != nil:
		rp.Host = p.Database.Host
		rp.Port = p.Database.Port
		rp.Username = p.Database.Username
		rp.Password = p.Database.Password
		rp.TLS = p.Database.TLS
		rp.DB = p.Database.DB
	}
	return rp
}
