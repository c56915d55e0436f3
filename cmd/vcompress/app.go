// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/engine/ffmpeg"
	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/media"
	"github.com/ManuGH/vcompress/internal/metrics"
	"github.com/ManuGH/vcompress/internal/pipeline"
	"github.com/ManuGH/vcompress/internal/telemetry"
	"github.com/ManuGH/vcompress/internal/validation"
	"github.com/ManuGH/vcompress/internal/version"
)

// overrides are the compression flags shared by every command.
type overrides struct {
	configPath string
	outputDir  string
	resolution string
	bitrate    int64
	container  string
}

func registerOverrides(fs *flag.FlagSet) *overrides {
	o := &overrides{}
	fs.StringVar(&o.configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&o.outputDir, "o", "", "output directory (default: temp dir)")
	fs.StringVar(&o.resolution, "resolution", "", "target resolution: preset (360p..4320p) or WxH")
	fs.Int64Var(&o.bitrate, "bitrate", 0, "target video bitrate in bits per second")
	fs.StringVar(&o.container, "container", "", "output container (mp4, mov, m4v, 3gp, mkv, webm)")
	return o
}

// apply writes the set flags over cfg.
func (o *overrides) apply(cfg *config.CompressionConfig) error {
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.resolution != "" {
		r, err := config.ParseResolution(o.resolution)
		if err != nil {
			return err
		}
		cfg.Resolution = &r
	}
	if o.bitrate != 0 {
		cfg.VideoBitrate = o.bitrate
	}
	if o.container != "" {
		cfg.Container = media.ParseContainer(o.container)
	}
	return config.ValidateCompression(*cfg)
}

// app is the wired runtime shared by the commands.
type app struct {
	cfg        config.AppConfig
	compressor *pipeline.Compressor
	tp         *telemetry.Provider
}

// bootstrap loads configuration, applies flag overrides, runs the pre-flight
// checks and wires the engine.
func bootstrap(ctx context.Context, o *overrides) (*app, error) {
	log.Configure(log.Config{Level: "info", Service: "vcompress", Version: version.Version})

	loader := config.NewLoader(strings.TrimSpace(o.configPath), version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if err := o.apply(&cfg.Compression); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: cfg.LogService, Version: cfg.Version})
	logger := log.WithComponent("cli")
	if keys := loader.ConsumedEnvKeys(); len(keys) > 0 {
		logger.Debug().Strs("env", keys).Msg("environment overrides applied")
	}

	if err := validation.PerformStartupChecks(ctx, cfg); err != nil {
		return nil, err
	}

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.ExporterType,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	engine := ffmpeg.New(ffmpeg.FromConfig(cfg.Engine))
	return &app{cfg: cfg, compressor: pipeline.New(engine), tp: tp}, nil
}

// close flushes traces and writes the metrics textfile when configured.
func (a *app) close() {
	logger := log.WithComponent("cli")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tp.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("telemetry shutdown")
	}
	if path := a.cfg.Metrics.TextfilePath; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn().Err(err).Str(log.FieldPath, path).Msg("write metrics textfile")
		}
	}
}
