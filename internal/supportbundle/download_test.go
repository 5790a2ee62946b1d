package supportbundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestPathByScope(t *testing.T) {
	t.Parallel()
	if p, err := Path(ScopeCluster, ""); err != nil || p != "/v1/cluster/debuginfo" {
		t.Fatalf("cluster path: %q, %v", p, err)
	}
	if p, err := Path(ScopeAllNodes, ""); err != nil || p != "/v1/nodes/debuginfo" {
		t.Fatalf("all-nodes path: %q, %v", p, err)
	}
	if p, err := Path(ScopeNode, "n1"); err != nil || p != "/v1/nodes/n1/debuginfo" {
		t.Fatalf("node path: %q, %v", p, err)
	}
	if _, err := Path(ScopeNode, ""); err == nil {
		t.Fatal("expected error for missing node id")
	}
	if p, err := Path(ScopeDatabase, "42"); err != nil || p != "/v1/bdbs/42/debuginfo" {
		t.Fatalf("database path: %q, %v", p, err)
	}
}

func TestDefaultFilename(t *testing.T) {
	t.Parallel()
	if got := DefaultFilename(ScopeCluster, "20260729T120000"); got != "support-package-cluster-20260729T120000.tar.gz" {
		t.Fatalf("got %q", got)
	}
}

func TestDownloadRefusesOverwriteWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dest := filepath.Join(dir, "bundle.tar.gz")
	if err := os.WriteFile(dest, []byte("existing"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	fetch := func(ctx context.Context, path string) ([]byte, error) {
		return []byte("new-data"), nil
	}
	_, err := Download(context.Background(), fetch, "/v1/cluster/debuginfo", dest, false, nil)
	if err == nil {
		t.Fatal("expected overwrite error")
	}
}

func TestDownloadWritesBytesAndReportsSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dest := filepath.Join(dir, "bundle.tar.gz")
	fetch := func(ctx context.Context, path string) ([]byte, error) {
		return []byte("hello-bundle"), nil
	}
	result, err := Download(context.Background(), fetch, "/v1/cluster/debuginfo", dest, false, nil)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if result.Size != len("hello-bundle") {
		t.Fatalf("unexpected size: %d", result.Size)
	}
	body, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(body) != "hello-bundle" {
		t.Fatalf("unexpected content: %q", body)
	}
}

func TestDownloadOptimizesWhenRequested(t *testing.T) {
	t.Parallel()
	data := buildTarGz(t, map[string]string{"bundle/a.log": "line\n"})
	dir := t.TempDir()
	dest := filepath.Join(dir, "bundle.tar.gz")
	fetch := func(ctx context.Context, path string) ([]byte, error) {
		return data, nil
	}
	opts := DefaultOptimizationOptions()
	result, err := Download(context.Background(), fetch, "/v1/cluster/debuginfo", dest, false, &opts)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if result.Size == 0 {
		t.Fatal("expected non-empty optimized output")
	}
}
