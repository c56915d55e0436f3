// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ffmpeg implements the media engine on top of the ffmpeg and
// ffprobe command line tools. Each source track is decoded by its own
// ffmpeg process writing raw frames to a pipe; the sink is one ffmpeg
// process reading every track from an inherited pipe.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/media"
)

// Config tunes the engine.
type Config struct {
	FFmpegBin  string
	FFprobeBin string
	// QueueDepth bounds the samples buffered per sink input.
	QueueDepth int
	// KillGrace is the time between SIGTERM and SIGKILL on abort.
	KillGrace time.Duration
}

// FromConfig maps the application engine settings.
func FromConfig(c config.EngineConfig) Config {
	return Config{
		FFmpegBin:  c.FFmpegBin,
		FFprobeBin: config.ResolveFFprobeBin(c.FFprobeBin, c.FFmpegBin),
		QueueDepth: c.QueueDepth,
		KillGrace:  c.KillGrace,
	}
}

// Engine implements media.Engine.
type Engine struct {
	cfg Config
}

// New returns an engine; zero config values get defaults.
func New(cfg Config) *Engine {
	if cfg.FFmpegBin == "" {
		cfg.FFmpegBin = "ffmpeg"
	}
	if cfg.FFprobeBin == "" {
		cfg.FFprobeBin = config.ResolveFFprobeBin("", cfg.FFmpegBin)
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 8
	}
	if cfg.KillGrace <= 0 {
		cfg.KillGrace = 5 * time.Second
	}
	return &Engine{cfg: cfg}
}

// OpenSource probes input and returns a source over its tracks. No decoder
// runs until StartReading.
func (e *Engine) OpenSource(ctx context.Context, input string) (media.Source, error) {
	tracks, err := Probe(ctx, e.cfg.FFprobeBin, input)
	if err != nil {
		return nil, err
	}
	return &Source{cfg: e.cfg, input: input, tracks: tracks}, nil
}

// OpenSink returns a sink writing output. The encoder starts on BeginSession.
func (e *Engine) OpenSink(_ context.Context, output string, container media.Container) (media.Sink, error) {
	if !container.Known() {
		return nil, fmt.Errorf("unsupported container %q", container)
	}
	return &Sink{cfg: e.cfg, output: output, container: container, aborted: make(chan struct{})}, nil
}

// errCancelled is returned by handles used after Cancel or Abort.
var errCancelled = errors.New("engine session cancelled")
