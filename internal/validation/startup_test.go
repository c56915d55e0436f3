// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vcompress/internal/config"
)

// fakeBinary writes an executable that prints a version line.
func fakeBinary(t *testing.T, dir, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a unix shell")
	}
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\necho \""+name+" version 7.1\"\n"), 0o700))
	return p
}

func TestPerformStartupChecks(t *testing.T) {
	bin := t.TempDir()
	cfg := config.DefaultAppConfig()
	cfg.Engine.FFmpegBin = fakeBinary(t, bin, "ffmpeg")
	fakeBinary(t, bin, "ffprobe")
	cfg.Compression.OutputDir = t.TempDir()

	require.NoError(t, PerformStartupChecks(context.Background(), cfg))

	entries, err := os.ReadDir(cfg.Compression.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")
}

func TestPerformStartupChecks_MissingBinary(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) { return "", errors.New("executable file not found") }

	err := PerformStartupChecks(context.Background(), config.DefaultAppConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ffmpeg not found")
}

func TestPerformStartupChecks_BadOutputDir(t *testing.T) {
	bin := t.TempDir()
	cfg := config.DefaultAppConfig()
	cfg.Engine.FFmpegBin = fakeBinary(t, bin, "ffmpeg")
	fakeBinary(t, bin, "ffprobe")

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	cfg.Compression.OutputDir = file
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), cfg), "not a directory")

	cfg.Compression.OutputDir = filepath.Join(bin, "missing")
	assert.ErrorContains(t, PerformStartupChecks(context.Background(), cfg), "does not exist")
}
