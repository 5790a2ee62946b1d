package main

import (
	"flag"
	"fmt"

	"redisctl/internal/config"
	"redisctl/internal/credstore"
	"redisctl/internal/errs"
)

func cmdProfile(rc *runContext, args []string) error {
	if len(args) == 0 {
		printUsage("usage: redisctl profile <list|path|show|set|remove|default|validate>")
		return nil
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return profileList(rc)
	case "path":
		return profilePath(rc)
	case "show":
		return profileShow(rc, rest)
	case "set":
		return profileSet(rc, rest)
	case "remove", "rm", "delete":
		return profileRemove(rc, rest)
	case "default":
		return profileDefault(rc, rest)
	case "validate":
		return profileValidate(rc)
	default:
		return errs.New(errs.KindValidation, "unknown profile subcommand: "+sub)
	}
}

func profileList(rc *runContext) error {
	rows := make([]any, 0, len(rc.Config.Profiles))
	for name, p := range rc.Config.Profiles {
		row := map[string]any{"name": name, "type": string(p.DeploymentType)}
		if name == rc.Config.DefaultCloud || name == rc.Config.DefaultEnterprise {
			row["default"] = true
		}
		rows = append(rows, row)
	}
	return rc.render(rows)
}

func profilePath(rc *runContext) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	if rc.Global.ConfigFile != "" {
		path = rc.Global.ConfigFile
	}
	fmt.Println(path)
	return nil
}

func profileShow(rc *runContext, args []string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "profile show requires a name")
	}
	name := args[0]
	p, ok := rc.Config.Profiles[name]
	if !ok {
		return errs.New(errs.KindConfig, "profile \""+name+"\" not found")
	}
	out := map[string]any{"name": name, "type": string(p.DeploymentType)}
	switch p.DeploymentType {
	case config.PlatformCloud:
		if p.Cloud != nil {
			out["api_key"] = p.Cloud.APIKey
			out["api_secret"] = p.Cloud.APISecret
			out["api_url"] = p.Cloud.APIURL
		}
	case config.PlatformEnterprise:
		if p.Enterprise != nil {
			out["url"] = p.Enterprise.URL
			out["username"] = p.Enterprise.Username
			out["password"] = p.Enterprise.Password
			out["insecure"] = p.Enterprise.InsecureTLS
		}
	case config.PlatformDatabase:
		if p.Database != nil {
			out["host"] = p.Database.Host
			out["port"] = p.Database.Port
			out["username"] = p.Database.Username
			out["password"] = p.Database.Password
			out["tls"] = p.Database.TLS
			out["db"] = p.Database.DB
		}
	}
	return rc.render(out)
}

func profileSet(rc *runContext, args []string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "profile set requires a name")
	}
	name := args[0]
	rest := args[1:]

	fs := flag.NewFlagSet("profile set", flag.ExitOnError)
	typ := fs.String("type", "", "cloud|enterprise|database")
	apiKey := fs.String("api-key", "", "Cloud API key")
	apiSecret := fs.String("api-secret", "", "Cloud API secret")
	apiURL := fs.String("api-url", "", "Cloud API base URL")
	url := fs.String("url", "", "Enterprise cluster URL")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	insecure := fs.Bool("insecure", false, "skip TLS verification (Enterprise only)")
	host := fs.String("host", "", "database host")
	port := fs.Int("port", 0, "database port")
	tls := fs.Bool("tls", false, "use TLS (database only)")
	db := fs.Int("db", 0, "database index (database only)")
	keyringService := fs.String("keyring", "", "store secrets in the OS keyring under this service name instead of plaintext")
	vaultFile := fs.String("vault-file", "", "store secrets encrypted in this age vault file instead of plaintext")
	vaultRecipient := fs.String("vault-recipient", "", "age recipient (age1...) to encrypt vault-file entries for")
	if err := fs.Parse(rest); err != nil {
		return errs.Wrap(errs.KindValidation, "failed to parse flags", err)
	}
	if *vaultFile != "" && *vaultRecipient == "" {
		return errs.New(errs.KindValidation, "--vault-file requires --vault-recipient")
	}

	platform := config.Platform(*typ)
	p := config.Profile{DeploymentType: platform}

	secretOpts := secretStorageOptions{
		keyringService: *keyringService,
		vaultFile:      *vaultFile,
		vaultRecipient: *vaultRecipient,
	}

	switch platform {
	case config.PlatformCloud:
		key, secret := *apiKey, *apiSecret
		var err error
		if key, err = storeSecret(secretOpts, name+"-api-key", key); err != nil {
			return err
		}
		if secret, err = storeSecret(secretOpts, name+"-api-secret", secret); err != nil {
			return err
		}
		p.Cloud = &config.CloudCredentials{APIKey: key, APISecret: secret, APIURL: *apiURL}
	case config.PlatformEnterprise:
		pass, err := storeSecret(secretOpts, name+"-password", *password)
		if err != nil {
			return err
		}
		p.Enterprise = &config.EnterpriseCredentials{URL: *url, Username: *username, Password: pass, InsecureTLS: *insecure}
	case config.PlatformDatabase:
		pass, err := storeSecret(secretOpts, name+"-password", *password)
		if err != nil {
			return err
		}
		p.Database = &config.DatabaseCredentials{Host: *host, Port: *port, Username: *username, Password: pass, TLS: *tls, DB: *db}
	default:
		return errs.New(errs.KindValidation, "--type must be one of cloud, enterprise, database")
	}

	rc.Config.SetProfile(name, p)
	if err := saveConfig(rc); err != nil {
		return err
	}
	successf("profile %q saved", name)
	return nil
}

// secretStorageOptions selects where profile set writes credential material:
// the OS keyring, an age-encrypted vault file, or plaintext in the config
// itself (the default, when neither flag is given).
type secretStorageOptions struct {
	keyringService string
	vaultFile      string
	vaultRecipient string
}

func storeSecret(opts secretStorageOptions, key, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	switch {
	case opts.keyringService != "":
		if err := credstore.Set(opts.keyringService, key, value); err != nil {
			return "", errs.Wrap(errs.KindCredential, "failed to store secret in keyring", err)
		}
		return "keyring:" + opts.keyringService + "/" + key, nil
	case opts.vaultFile != "":
		ciphertext, err := credstore.EncryptVaultValue(value, opts.vaultRecipient)
		if err != nil {
			return "", errs.Wrap(errs.KindCredential, "failed to encrypt secret for vault", err)
		}
		if err := credstore.WriteVaultEntry(opts.vaultFile, key, ciphertext); err != nil {
			return "", errs.Wrap(errs.KindCredential, "failed to write vault file", err)
		}
		return "vault:" + opts.vaultFile + "#" + key, nil
	default:
		return value, nil
	}
}

func profileRemove(rc *runContext, args []string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "profile remove requires a name")
	}
	name := args[0]
	if !rc.Config.RemoveProfile(name) {
		return errs.New(errs.KindConfig, "profile \""+name+"\" not found")
	}
	if err := saveConfig(rc); err != nil {
		return err
	}
	successf("profile %q removed", name)
	return nil
}

func profileDefault(rc *runContext, args []string) error {
	if len(args) == 0 {
		return errs.New(errs.KindValidation, "profile default requires a name")
	}
	name := args[0]
	rest := args[1:]
	fs := flag.NewFlagSet("profile default", flag.ExitOnError)
	typ := fs.String("type", "", "cloud|enterprise")
	if err := fs.Parse(rest); err != nil {
		return errs.Wrap(errs.KindValidation, "failed to parse flags", err)
	}
	p, ok := rc.Config.Profiles[name]
	if !ok {
		return errs.New(errs.KindConfig, "profile \""+name+"\" not found")
	}
	platform := config.Platform(*typ)
	if platform == "" {
		platform = p.DeploymentType
	}
	if p.DeploymentType != platform {
		return errs.New(errs.KindValidation, "profile \""+name+"\" is not a "+string(platform)+" profile")
	}
	switch platform {
	case config.PlatformCloud:
		rc.Config.DefaultCloud = name
	case config.PlatformEnterprise:
		rc.Config.DefaultEnterprise = name
	default:
		return errs.New(errs.KindValidation, "only cloud and enterprise profiles can be set as default")
	}
	if err := saveConfig(rc); err != nil {
		return err
	}
	successf("default %s profile set to %q", platform, name)
	return nil
}

func profileValidate(rc *runContext) error {
	var problems []string
	if rc.Config.DefaultCloud != "" {
		if p, ok := rc.Config.Profiles[rc.Config.DefaultCloud]; !ok || p.DeploymentType != config.PlatformCloud {
			problems = append(problems, "default_cloud names a missing or non-cloud profile")
		}
	}
	if rc.Config.DefaultEnterprise != "" {
		if p, ok := rc.Config.Profiles[rc.Config.DefaultEnterprise]; !ok || p.DeploymentType != config.PlatformEnterprise {
			problems = append(problems, "default_enterprise names a missing or non-enterprise profile")
		}
	}
	if len(problems) > 0 {
		return rc.render(map[string]any{"valid": false, "problems": problems})
	}
	return rc.render(map[string]any{"valid": true, "profiles": len(rc.Config.Profiles)})
}

func saveConfig(rc *runContext) error {
	if rc.Global.ConfigFile != "" {
		return rc.Config.SaveTo(rc.Global.ConfigFile)
	}
	return rc.Config.Save()
}
