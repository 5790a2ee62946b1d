// Package supportbundle implements the binary support-package download path
// and its optional tar.gz optimization pass: truncate log entries to their
// last N lines, drop nested compressed archives, and re-encode.
package supportbundle

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"redisctl/internal/errs"
)

// OptimizationOptions configures the optional post-download shrink pass.
type OptimizationOptions struct {
	MaxLogLines    int
	RemoveNestedGz bool
	ExcludePatterns []string
}

// DefaultOptimizationOptions matches the conventional defaults: keep the
// last 1000 lines of any log file, drop nested archives.
func DefaultOptimizationOptions() OptimizationOptions {
	return OptimizationOptions{MaxLogLines: 1000, RemoveNestedGz: true}
}

// OptimizationResult reports what the pass did, for the final CLI summary.
type OptimizationResult struct {
	OriginalSize    int
	OptimizedSize   int
	FilesProcessed  int
	FilesTruncated  int
	FilesRemoved    int
}

// ReductionPercentage is the size saved, as a percentage of the original.
func (r OptimizationResult) ReductionPercentage() float64 {
	if r.OriginalSize == 0 {
		return 0
	}
	return float64(r.OriginalSize-r.OptimizedSize) / float64(r.OriginalSize) * 100
}

var nestedArchiveSuffixes = []string{".tar.gz", ".tgz", ".gz"}

// Optimize walks a tar.gz byte stream and rewrites it per opts, returning
// the new archive bytes and a summary. Optimization never alters bytes
// outside the truncation/removal rules it defines.
func Optimize(data []byte, opts OptimizationOptions) ([]byte, OptimizationResult, error) {
	gzr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, OptimizationResult{}, errs.Wrap(errs.KindIO, "failed to open support bundle as gzip", err)
	}
	defer gzr.Close()
	tr := tar.NewReader(gzr)

	var out bytes.Buffer
	gzw := gzip.NewWriter(&out)
	tw := tar.NewWriter(gzw)

	result := OptimizationResult{OriginalSize: len(data)}

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, OptimizationResult{}, errs.Wrap(errs.KindIO, "failed to read support bundle entry", err)
		}
		result.FilesProcessed++

		if shouldExclude(hdr.Name, opts) {
			result.FilesRemoved++
			continue
		}

		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, OptimizationResult{}, errs.Wrap(errs.KindIO, fmt.Sprintf("failed to read entry %s", hdr.Name), err)
		}

		if isLogFile(hdr.Name) {
			truncated := truncateLog(content, opts.MaxLogLines)
			if len(truncated) < len(content) {
				result.FilesTruncated++
				content = truncated
				hdr.Size = int64(len(content))
			}
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return nil, OptimizationResult{}, errs.Wrap(errs.KindIO, fmt.Sprintf("failed to write entry header %s", hdr.Name), err)
		}
		if _, err := tw.Write(content); err != nil {
			return nil, OptimizationResult{}, errs.Wrap(errs.KindIO, fmt.Sprintf("failed to write entry %s", hdr.Name), err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, OptimizationResult{}, errs.Wrap(errs.KindIO, "failed to finalize tar", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, OptimizationResult{}, errs.Wrap(errs.KindIO, "failed to finalize gzip", err)
	}

	result.OptimizedSize = out.Len()
	return out.Bytes(), result, nil
}

func shouldExclude(path string, opts OptimizationOptions) bool {
	for _, pattern := range opts.ExcludePatterns {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	if opts.RemoveNestedGz && strings.Contains(path, "/") {
		lower := strings.ToLower(path)
		for _, suffix := range nestedArchiveSuffixes {
			if strings.HasSuffix(lower, suffix) {
				return true
			}
		}
	}
	return false
}

func isLogFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".log") ||
		strings.HasSuffix(lower, ".log.txt") ||
		strings.Contains(lower, "/logs/") ||
		strings.Contains(lower, "/log/")
}

// truncateLog keeps only the last maxLines lines of content, prepending a
// banner describing the truncation. Returns content unchanged if it already
// fits.
func truncateLog(content []byte, maxLines int) []byte {
	if maxLines <= 0 {
		return content
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) <= maxLines {
		return content
	}
	skip := len(lines) - maxLines
	kept := lines[skip:]
	banner := fmt.Sprintf("=== LOG TRUNCATED: Showing last %d of %d lines ===", maxLines, len(lines))
	var buf bytes.Buffer
	buf.WriteString(banner)
	buf.WriteByte('\n')
	for _, l := range kept {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
