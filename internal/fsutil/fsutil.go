// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil holds filesystem helpers shared by the pipeline and the CLI.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// ErrNotDirectory is returned by CheckDirectory for paths that exist but are
// not directories.
var ErrNotDirectory = errors.New("not a directory")

// TempDirectory returns <os temp>/<component>, creating it if needed. It
// falls back to the bare temp dir when the sub-directory cannot be created.
func TempDirectory(component string) string {
	base := os.TempDir()
	if component == "" {
		return base
	}
	dir := filepath.Join(base, component)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return base
	}
	return dir
}

// CheckDirectory returns nil when path exists and is a directory.
func CheckDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("empty path: %w", os.ErrNotExist)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	return nil
}

// IsValidDirectory reports whether path exists and is a directory.
func IsValidDirectory(path string) bool {
	return CheckDirectory(path) == nil
}

// IsRegularFile checks if path exists and is a regular file.
func IsRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}

// FileSize returns the size of path in bytes, or -1 when it cannot be read.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

// FormatSize renders a byte count for logs, e.g. "12 MB". Negative sizes
// render as "unknown".
func FormatSize(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return humanize.Bytes(uint64(n))
}
