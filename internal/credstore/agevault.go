package credstore

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"
)

// vaultEncryptedPrefix marks a vault file value as age ciphertext rather
// than a plaintext fallback, so a half-migrated vault file still resolves.
const vaultEncryptedPrefix = "encrypted:redisctl:v1:"

// EncryptVaultValue encrypts plaintext to recipient (an age X25519 public
// key, "age1...") for storage in a vault file consumed by a "vault:" profile
// reference. Used by "profile set --vault-file".
func EncryptVaultValue(plaintext, recipient string) (string, error) {
	r, err := age.ParseX25519Recipient(recipient)
	if err != nil {
		return "", fmt.Errorf("invalid age recipient: %w", err)
	}
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, r)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return vaultEncryptedPrefix + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func decryptVaultValue(ciphertext string, identity *age.X25519Identity) (string, error) {
	if !strings.HasPrefix(ciphertext, vaultEncryptedPrefix) {
		return ciphertext, nil
	}
	payload := strings.TrimPrefix(ciphertext, vaultEncryptedPrefix)
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid vault ciphertext: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		return "", err
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// loadIdentity reads a single age X25519 identity (an "AGE-SECRET-KEY-..."
// line) from path.
func loadIdentity(path string) (*age.X25519Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "AGE-SECRET-KEY-") {
			return age.ParseX25519Identity(line)
		}
	}
	return nil, fmt.Errorf("no AGE-SECRET-KEY found in %s", path)
}

// readVaultFile parses a vault file as KEY=VALUE lines, one per line,
// blank lines and "#"-prefixed comments skipped.
func readVaultFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, scanner.Err()
}

// WriteVaultEntry upserts key=value into the vault file at path, creating it
// if necessary, and rewrites the whole file (vault files are small).
func WriteVaultEntry(path, key, value string) error {
	if err := ValidateKeyName(key); err != nil {
		return err
	}
	entries, err := readVaultFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if entries == nil {
		entries = map[string]string{}
	}
	entries[key] = value

	var b strings.Builder
	for k, v := range entries {
		fmt.Fprintf(&b, "%s=%s\n", k, v)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}
