// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package validation runs pre-flight checks before any compression starts.
package validation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/log"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// PerformStartupChecks verifies the engine binaries and the output directory.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Debug().Msg("running pre-flight checks")

	if err := checkBinary(ctx, logger, "ffmpeg", cfg.Engine.FFmpegBin); err != nil {
		return fmt.Errorf("engine check failed: %w", err)
	}
	probe := config.ResolveFFprobeBin(cfg.Engine.FFprobeBin, cfg.Engine.FFmpegBin)
	if err := checkBinary(ctx, logger, "ffprobe", probe); err != nil {
		return fmt.Errorf("engine check failed: %w", err)
	}

	if dir := strings.TrimSpace(cfg.Compression.OutputDir); dir != "" {
		if err := checkOutputDir(logger, dir); err != nil {
			return fmt.Errorf("output directory check failed: %w", err)
		}
	}
	return nil
}

func checkBinary(ctx context.Context, logger zerolog.Logger, name, bin string) error {
	if strings.TrimSpace(bin) == "" {
		return fmt.Errorf("%s binary is not configured", name)
	}
	resolved, err := lookPath(bin)
	if err != nil {
		return fmt.Errorf("%s not found (%s): %w", name, bin, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	// #nosec G204 -- operator configured binary
	out, err := exec.CommandContext(ctx, resolved, "-version").Output()
	if err != nil {
		return fmt.Errorf("%s -version failed: %w", resolved, err)
	}
	first, _, _ := strings.Cut(string(out), "\n")
	logger.Info().Str("binary", resolved).Str("version", strings.TrimSpace(first)).Msgf("%s found", name)
	return nil
}

func checkOutputDir(logger zerolog.Logger, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(testFile)

	logger.Info().Str(log.FieldOutputPath, path).Msg("output directory is writable")
	return nil
}
