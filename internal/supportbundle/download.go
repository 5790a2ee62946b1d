package supportbundle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"redisctl/internal/errs"
)

// Scope selects which of the four endpoint families to pull the bundle
// from.
type Scope string

const (
	ScopeCluster  Scope = "cluster"
	ScopeAllNodes Scope = "all-nodes"
	ScopeNode     Scope = "node"
	ScopeDatabase Scope = "database"
)

// BytesFetcher streams a binary endpoint body, the shape both
// cloudclient.Client and entclient.Client satisfy via GetBytes.
type BytesFetcher func(ctx context.Context, path string) ([]byte, error)

// Path builds the API path for scope, with id required for node/database
// scopes and ignored otherwise.
func Path(scope Scope, id string) (string, error) {
	switch scope {
	case ScopeCluster:
		return "/v1/cluster/debuginfo", nil
	case ScopeAllNodes:
		return "/v1/nodes/debuginfo", nil
	case ScopeNode:
		if id == "" {
			return "", errs.New(errs.KindValidation, "node id is required for node-scoped support bundle")
		}
		return fmt.Sprintf("/v1/nodes/%s/debuginfo", id), nil
	case ScopeDatabase:
		if id == "" {
			return "", errs.New(errs.KindValidation, "database id is required for database-scoped support bundle")
		}
		return fmt.Sprintf("/v1/bdbs/%s/debuginfo", id), nil
	default:
		return "", errs.New(errs.KindValidation, fmt.Sprintf("unknown support bundle scope %q", scope))
	}
}

// DefaultFilename builds the conventional support-package-<scope>-<timestamp>.tar.gz
// name. now is injected by the caller (this package never reads the clock).
func DefaultFilename(scope Scope, now string) string {
	return fmt.Sprintf("support-package-%s-%s.tar.gz", scope, now)
}

// DownloadResult reports the outcome for the final CLI summary line.
type DownloadResult struct {
	Path string
	Size int
}

// Download streams the bundle via fetch, optionally optimizes it, and
// writes it to destPath. Pre-flight: refuses to overwrite an existing file
// unless overwrite is true.
func Download(ctx context.Context, fetch BytesFetcher, apiPath, destPath string, overwrite bool, optimize *OptimizationOptions) (DownloadResult, error) {
	if !overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return DownloadResult{}, errs.New(errs.KindValidation, fmt.Sprintf("%s already exists; use --force to overwrite", destPath))
		}
	}
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DownloadResult{}, errs.Wrap(errs.KindIO, fmt.Sprintf("failed to create %s", dir), err)
	}

	data, err := fetch(ctx, apiPath)
	if err != nil {
		return DownloadResult{}, err
	}

	if optimize != nil {
		optimized, _, err := Optimize(data, *optimize)
		if err != nil {
			return DownloadResult{}, err
		}
		data = optimized
	}

	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return DownloadResult{}, errs.Wrap(errs.KindIO, fmt.Sprintf("failed to write %s", destPath), err)
	}

	return DownloadResult{Path: destPath, Size: len(data)}, nil
}
