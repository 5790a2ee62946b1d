package config

import (
	"path/filepath"
	"testing"
)

func sampleConfig() *Config {
	c := New()
	c.SetProfile("prod", Profile{
		DeploymentType: PlatformCloud,
		Cloud:          &CloudCredentials{APIKey: "k", APISecret: "s", APIURL: DefaultCloudURL},
	})
	c.SetProfile("staging", Profile{
		DeploymentType: PlatformEnterprise,
		Enterprise:     &EnterpriseCredentials{URL: "https://host:9443", Username: "admin", Password: "pw"},
	})
	c.DefaultCloud = "prod"
	return c
}

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()
	c := sampleConfig()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := c.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DefaultCloud != "prod" {
		t.Fatalf("default cloud = %q", loaded.DefaultCloud)
	}
	if len(loaded.Profiles) != 2 {
		t.Fatalf("got %d profiles", len(loaded.Profiles))
	}
	prod := loaded.Profiles["prod"]
	if prod.Cloud == nil || prod.Cloud.APIKey != "k" || prod.Cloud.APISecret != "s" {
		t.Fatalf("prod profile mismatch: %+v", prod)
	}
	staging := loaded.Profiles["staging"]
	if staging.Enterprise == nil || staging.Enterprise.Username != "admin" {
		t.Fatalf("staging profile mismatch: %+v", staging)
	}
}

func TestLoadMissingFileYieldsEmptyConfig(t *testing.T) {
	t.Parallel()
	c, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Profiles) != 0 {
		t.Fatalf("expected empty config, got %+v", c)
	}
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("REDISCTL_CFG_TEST", "resolved-value")
	in := `default_cloud = "${REDISCTL_CFG_TEST}"
files_api_key = "${REDISCTL_CFG_MISSING:-fallback}"
`
	out := expandEnv(in)
	if !contains(out, "resolved-value") {
		t.Fatalf("expected env var expanded, got %q", out)
	}
	if !contains(out, "fallback") {
		t.Fatalf("expected default applied, got %q", out)
	}
}

func TestEnvExpansionLeavesUnsetVarsWithoutDefaultVerbatim(t *testing.T) {
	t.Parallel()
	in := `default_cloud = "${REDISCTL_CFG_TOTALLY_UNSET}"`
	out := expandEnv(in)
	if !contains(out, "${REDISCTL_CFG_TOTALLY_UNSET}") {
		t.Fatalf("expected literal reference preserved, got %q", out)
	}
}

func TestResolveProfilePrecedence(t *testing.T) {
	t.Parallel()
	c := New()
	c.SetProfile("a", Profile{DeploymentType: PlatformCloud, Cloud: &CloudCredentials{}})
	c.SetProfile("b", Profile{DeploymentType: PlatformCloud, Cloud: &CloudCredentials{}})

	got, err := c.ResolveProfile(PlatformCloud, "")
	if err != nil || got != "a" {
		t.Fatalf("expected lexicographic first 'a', got %q err=%v", got, err)
	}

	c.DefaultCloud = "b"
	got, err = c.ResolveProfile(PlatformCloud, "")
	if err != nil || got != "b" {
		t.Fatalf("expected default 'b', got %q err=%v", got, err)
	}

	got, err = c.ResolveProfile(PlatformCloud, "a")
	if err != nil || got != "a" {
		t.Fatalf("expected explicit 'a', got %q err=%v", got, err)
	}

	_, err = c.ResolveProfile(PlatformEnterprise, "")
	if err == nil {
		t.Fatal("expected error naming cross-platform profiles")
	}
	if !contains(err.Error(), "a") || !contains(err.Error(), "b") {
		t.Fatalf("expected error to name available cloud profiles, got %v", err)
	}
}

func TestRemoveProfileClearsDefaults(t *testing.T) {
	t.Parallel()
	c := sampleConfig()
	if !c.RemoveProfile("prod") {
		t.Fatal("expected profile to be removed")
	}
	if c.DefaultCloud != "" {
		t.Fatalf("expected default_cloud cleared, got %q", c.DefaultCloud)
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
