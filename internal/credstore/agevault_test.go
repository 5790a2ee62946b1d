package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
)

func writeTestIdentity(t *testing.T) (identityPath, recipient string) {
	t.Helper()
	id, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("generate identity: %v", err)
	}
	identityPath = filepath.Join(t.TempDir(), "identity.txt")
	if err := os.WriteFile(identityPath, []byte(id.String()+"\n"), 0o600); err != nil {
		t.Fatalf("write identity: %v", err)
	}
	return identityPath, id.Recipient().String()
}

func TestEncryptDecryptVaultValueRoundTrip(t *testing.T) {
	t.Parallel()
	identityPath, recipient := writeTestIdentity(t)
	identity, err := loadIdentity(identityPath)
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}

	ciphertext, err := EncryptVaultValue("super-secret", recipient)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	got, err := decryptVaultValue(ciphertext, identity)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if got != "super-secret" {
		t.Fatalf("got %q", got)
	}
}

func TestDecryptVaultValuePassesThroughPlaintext(t *testing.T) {
	t.Parallel()
	got, err := decryptVaultValue("not-encrypted", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "not-encrypted" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveVaultReference(t *testing.T) {
	identityPath, recipient := writeTestIdentity(t)
	t.Setenv("REDISCTL_VAULT_IDENTITY", identityPath)

	ciphertext, err := EncryptVaultValue("db-password", recipient)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	vaultPath := filepath.Join(t.TempDir(), "vault.env")
	if err := WriteVaultEntry(vaultPath, "prod-password", ciphertext); err != nil {
		t.Fatalf("write vault entry: %v", err)
	}

	got, err := Resolve("password", "vault:"+vaultPath+"#prod-password", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "db-password" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveVaultReferenceMissingKeyFallsBackToEnv(t *testing.T) {
	identityPath, _ := writeTestIdentity(t)
	t.Setenv("REDISCTL_VAULT_IDENTITY", identityPath)
	t.Setenv("REDISCTL_TEST_VAULT_FALLBACK", "fallback-value")

	vaultPath := filepath.Join(t.TempDir(), "vault.env")
	if err := WriteVaultEntry(vaultPath, "other-key", "irrelevant"); err != nil {
		t.Fatalf("write vault entry: %v", err)
	}

	got, err := Resolve("password", "vault:"+vaultPath+"#missing-key", "REDISCTL_TEST_VAULT_FALLBACK")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "fallback-value" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveVaultReferenceMalformed(t *testing.T) {
	t.Parallel()
	_, err := Resolve("password", "vault:no-hash-here", "")
	if err == nil {
		t.Fatal("expected error")
	}
}
