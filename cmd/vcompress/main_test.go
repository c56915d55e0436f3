// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/media"
)

func TestRun_Dispatch(t *testing.T) {
	assert.Equal(t, exitUsage, run(nil))
	assert.Equal(t, exitOK, run([]string{"-version"}))
	assert.Equal(t, exitUsage, run([]string{"transcode"}))
	assert.Equal(t, exitUsage, run([]string{"compress"}), "input is required")
	assert.Equal(t, exitUsage, run([]string{"batch"}), "inputs are required")
	assert.Equal(t, exitUsage, run([]string{"watch", "a", "b"}))
}

func parseOverrides(t *testing.T, args ...string) *overrides {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o := registerOverrides(fs)
	require.NoError(t, fs.Parse(args))
	return o
}

func TestOverrides_Apply(t *testing.T) {
	o := parseOverrides(t, "-o", "/srv/out", "-resolution", "1280x720", "-bitrate", "3000000", "-container", "mkv")
	cfg := config.Default()
	require.NoError(t, o.apply(&cfg))

	assert.Equal(t, "/srv/out", cfg.OutputDir)
	require.NotNil(t, cfg.Resolution)
	assert.Equal(t, media.Size{Width: 1280, Height: 720}, cfg.Resolution.PixelSize())
	assert.Equal(t, int64(3_000_000), cfg.VideoBitrate)
	assert.Equal(t, media.ContainerMKV, cfg.Container)
}

func TestOverrides_ApplyNothing(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, parseOverrides(t).apply(&cfg))
	assert.Equal(t, config.Default(), cfg)
}

func TestOverrides_Invalid(t *testing.T) {
	cfg := config.Default()
	assert.Error(t, parseOverrides(t, "-resolution", "huge").apply(&cfg))

	cfg = config.Default()
	assert.Error(t, parseOverrides(t, "-container", "avi2").apply(&cfg))
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestConfigValidate(t *testing.T) {
	var out, errOut bytes.Buffer
	good := writeConfig(t, "compression:\n  resolution: 720p\n  videoBitrate: 1500000\nbatch:\n  jobs: 4\n")
	assert.Equal(t, exitOK, configCLI([]string{"validate", "-f", good}, &out, &errOut), errOut.String())
	assert.Contains(t, out.String(), "is valid")

	errOut.Reset()
	bad := writeConfig(t, "compression:\n  bogus: 1\n")
	assert.Equal(t, exitFailure, configCLI([]string{"validate", "-f", bad}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Configuration error")

	assert.Equal(t, exitUsage, configCLI([]string{"validate"}, &out, &errOut))
	assert.Equal(t, exitUsage, configCLI([]string{"frobnicate"}, &out, &errOut))
}

func TestConfigDump_JSON(t *testing.T) {
	var out, errOut bytes.Buffer
	p := writeConfig(t, "compression:\n  resolution: 1080p\nbatch:\n  jobs: 3\n")
	require.Equal(t, exitOK, configCLI([]string{"dump", "-f", p, "-format", "json"}, &out, &errOut), errOut.String())

	var got struct {
		Compression struct {
			Resolution   string
			VideoBitrate int64
		}
		Batch struct{ Jobs int }
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "1080p", got.Compression.Resolution)
	assert.Equal(t, config.DefaultVideoBitrate, got.Compression.VideoBitrate)
	assert.Equal(t, 3, got.Batch.Jobs)
}

func TestConfigDump_YAML(t *testing.T) {
	var out, errOut bytes.Buffer
	require.Equal(t, exitOK, configCLI([]string{"dump"}, &out, &errOut), errOut.String())
	assert.Contains(t, out.String(), "compression:")
	assert.Contains(t, out.String(), "ffmpegBin: ffmpeg")

	assert.Equal(t, exitUsage, configCLI([]string{"dump", "-format", "toml"}, &out, &errOut))
}
