// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package pipeline coordinates one compression run: it validates the target,
// opens the engine handles, runs one pump per track and finalizes the output.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/fsutil"
	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/media"
	"github.com/ManuGH/vcompress/internal/metrics"
	"github.com/ManuGH/vcompress/internal/params"
	"github.com/ManuGH/vcompress/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Compressor runs compressions against one engine. It is safe for
// concurrent use; every run owns its own session.
type Compressor struct {
	engine media.Engine
	newID  func() string
}

// New returns a Compressor using engine for all runs.
func New(engine media.Engine) *Compressor {
	return &Compressor{engine: engine, newID: uuid.NewString}
}

// Compress runs a compression and blocks until it completes.
func (c *Compressor) Compress(ctx context.Context, input string, cfg config.CompressionConfig) (Artifact, error) {
	job, err := c.Start(ctx, input, cfg)
	if err != nil {
		return Artifact{}, err
	}
	return job.Result()
}

// Start validates the target, opens the session and launches the pumps.
// Setup failures are returned synchronously with nothing left running; the
// pumping outcome is delivered once through the returned Job.
//
// Cancelling ctx aborts an in-flight run.
func (c *Compressor) Start(ctx context.Context, input string, cfg config.CompressionConfig) (*Job, error) {
	started := time.Now()
	id := c.newID()
	ctx = log.ContextWithJobID(ctx, id)
	ctx, span := telemetry.StartSpan(ctx, "compress",
		trace.WithAttributes(telemetry.JobAttributes(id, input, "", string(cfg.Container))...))
	logger := log.WithContext(ctx, log.WithComponent("pipeline"))
	metrics.JobStarted()

	fail := func(err error) (*Job, error) {
		metrics.RecordJob(metrics.OutcomeFailure, Reason(err), time.Since(started))
		span.SetAttributes(telemetry.ErrorAttributes(Reason(err))...)
		telemetry.EndSpan(span, err)
		logger.Error().Err(err).Str(log.FieldInputPath, input).Msg("compression failed")
		return nil, err
	}

	dir := cfg.OutputDir
	if dir == "" {
		dir = fsutil.TempDirectory(config.DefaultOutputComponent)
	}
	if err := fsutil.CheckDirectory(dir); err != nil {
		return fail(&OutputPathError{Path: dir, Err: err})
	}
	outPath := filepath.Join(dir, id+"."+cfg.Container.Extension())
	span.SetAttributes(telemetry.JobAttributes(id, input, outPath, string(cfg.Container))...)

	s, err := c.open(ctx, input, outPath, cfg)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(telemetry.VideoAttributes(
		cfg.VideoCodec, s.video.NaturalSize.String(), s.params.Size.String(),
		s.video.EstimatedBitrate, s.params.Bitrate)...)
	span.SetAttributes(telemetry.AudioAttributes(s.params.HasAudio(), cfg.AudioFormat)...)

	logger.Info().
		Str(log.FieldInputPath, input).
		Str(log.FieldOutputPath, outPath).
		Str(log.FieldResolution, s.params.Size.String()).
		Int64(log.FieldBitrate, s.params.Bitrate).
		Int("pumps", len(s.pumps)).
		Msg("compression started")

	job := newJob(id)
	go func() {
		a, err := s.run(ctx)
		elapsed := time.Since(started)
		if err != nil {
			metrics.RecordJob(metrics.OutcomeFailure, Reason(err), elapsed)
			span.SetAttributes(telemetry.ErrorAttributes(Reason(err))...)
			logger.Error().Err(err).Str(log.FieldOutputPath, outPath).Dur("elapsed", elapsed).Msg("compression failed")
		} else {
			a.JobID = id
			a.Elapsed = elapsed
			a.InputSize = fsutil.FileSize(input)
			metrics.RecordJob(metrics.OutcomeSuccess, "", elapsed)
			metrics.RecordOutput(string(a.Container), a.InputSize, a.Size)
			logger.Info().
				Str(log.FieldOutputPath, a.Path).
				Dur("elapsed", elapsed).
				Str("input_size", fsutil.FormatSize(a.InputSize)).
				Str(log.FieldSize, fsutil.FormatSize(a.Size)).
				Msg("compression finished")
		}
		telemetry.EndSpan(span, err)
		job.complete(a, err)
	}()
	return job, nil
}

// open runs the setup sequence. On error every handle opened so far has
// been released.
func (c *Compressor) open(ctx context.Context, input, outPath string, cfg config.CompressionConfig) (*session, error) {
	src, err := c.engine.OpenSource(ctx, input)
	if err != nil {
		return nil, failed(StageOpenSource, err)
	}

	video := media.FirstTrack(src.Tracks(media.KindVideo), media.KindVideo)
	if video == nil {
		src.Cancel()
		return nil, fmt.Errorf("%s: %w", input, ErrNoVideoTrack)
	}
	audio := media.FirstTrack(src.Tracks(media.KindAudio), media.KindAudio)
	p := params.Resolve(cfg, *video, audio)

	sink, err := c.engine.OpenSink(ctx, outPath, cfg.Container)
	if err != nil {
		src.Cancel()
		return nil, failed(StageOpenSink, err)
	}

	s := &session{
		src:       src,
		sink:      sink,
		outPath:   outPath,
		container: cfg.Container,
		video:     *video,
		params:    p,
	}
	if err := s.configure(ctx, audio); err != nil {
		s.abort()
		return nil, err
	}
	return s, nil
}
