// Package credstore resolves credential reference strings found in profile
// configuration into plaintext values at the point a client is constructed.
//
// A reference is one of:
//
//	keyring:SERVICE/KEY      looked up in the OS secret backend
//	vault:PATH#KEY           looked up in an age-encrypted vault file
//	${VAR} or ${VAR:-default} looked up in the process environment
//	anything else            returned unchanged (a literal secret)
//
// Resolution is read-only and lazy: nothing is cached across calls, and a
// reference is only resolved the moment a caller asks for it.
package credstore

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Error names the profile field that failed to resolve, so the dispatcher can
// print "Failed to resolve API secret" rather than a bare parse error.
type Error struct {
	Field string
	Ref   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to resolve %s (%s): %v", e.Field, e.Ref, e.Cause)
	}
	return fmt.Sprintf("failed to resolve %s: unresolved reference %q", e.Field, e.Ref)
}

func (e *Error) Unwrap() error { return e.Cause }

var envPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(:-(.*))?\}$`)

// Resolve returns the plaintext value of ref. field names the profile field
// being resolved, for error messages. fallbackEnv, if non-empty, is consulted
// when the primary reference cannot be satisfied (a missing keyring entry or
// an unset environment variable with no default).
func Resolve(field, ref, fallbackEnv string) (string, error) {
	switch {
	case strings.HasPrefix(ref, "keyring:"):
		return resolveKeyring(field, ref, fallbackEnv)
	case strings.HasPrefix(ref, "vault:"):
		return resolveVault(field, ref, fallbackEnv)
	case envPattern.MatchString(ref):
		return resolveEnvPattern(field, ref, fallbackEnv)
	default:
		return ref, nil
	}
}

func resolveKeyring(field, ref, fallbackEnv string) (string, error) {
	spec := strings.TrimPrefix(ref, "keyring:")
	service, key, ok := strings.Cut(spec, "/")
	if !ok || strings.TrimSpace(service) == "" || strings.TrimSpace(key) == "" {
		return "", &Error{Field: field, Ref: ref, Cause: fmt.Errorf("expected keyring:SERVICE/KEY")}
	}
	value, err := keyringGet(service, key)
	if err == nil {
		return value, nil
	}
	if fallbackEnv != "" {
		if v, ok := os.LookupEnv(fallbackEnv); ok {
			return v, nil
		}
	}
	return "", &Error{Field: field, Ref: ref, Cause: err}
}

// resolveVault decrypts KEY out of the vault file at PATH using the age
// identity read from the file whose path is in REDISCTL_VAULT_IDENTITY. The
// identity itself never lives in the vault file or the config; it is not
// looked up in the OS keyring.
func resolveVault(field, ref, fallbackEnv string) (string, error) {
	spec := strings.TrimPrefix(ref, "vault:")
	path, key, ok := strings.Cut(spec, "#")
	if !ok || path == "" || key == "" {
		return "", &Error{Field: field, Ref: ref, Cause: fmt.Errorf("expected vault:PATH#KEY")}
	}
	value, err := resolveVaultEntry(path, key)
	if err == nil {
		return value, nil
	}
	if fallbackEnv != "" {
		if v, ok := os.LookupEnv(fallbackEnv); ok {
			return v, nil
		}
	}
	return "", &Error{Field: field, Ref: ref, Cause: err}
}

func resolveVaultEntry(path, key string) (string, error) {
	identityPath := os.Getenv("REDISCTL_VAULT_IDENTITY")
	if identityPath == "" {
		return "", fmt.Errorf("REDISCTL_VAULT_IDENTITY is not set")
	}
	identity, err := loadIdentity(identityPath)
	if err != nil {
		return "", fmt.Errorf("failed to load vault identity: %w", err)
	}
	entries, err := readVaultFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read vault file: %w", err)
	}
	ciphertext, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in vault file %s", key, path)
	}
	return decryptVaultValue(ciphertext, identity)
}

func resolveEnvPattern(field, ref, fallbackEnv string) (string, error) {
	m := envPattern.FindStringSubmatch(ref)
	varName, hasDefault, def := m[1], m[2] != "", m[3]
	if v, ok := os.LookupEnv(varName); ok {
		return v, nil
	}
	if hasDefault {
		return def, nil
	}
	if fallbackEnv != "" {
		if v, ok := os.LookupEnv(fallbackEnv); ok {
			return v, nil
		}
	}
	return "", &Error{Field: field, Ref: ref}
}

// Set writes a secret into the OS keyring backend, for "profile set --keyring".
func Set(service, key, secret string) error {
	if err := ValidateKeyName(key); err != nil {
		return err
	}
	return keyringSet(service, key, secret)
}
