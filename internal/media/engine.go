// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import (
	"context"
	"errors"
	"time"
)

// ErrEndOfStream is returned by TrackOutput.NextSample once the track is drained.
var ErrEndOfStream = errors.New("end of stream")

// Source is an opened demux+decode engine over one input asset.
type Source interface {
	// Tracks lists the tracks of the given kind in container order.
	Tracks(kind TrackKind) []Track
	// OpenOutput prepares a decoded-sample output for one track.
	OpenOutput(track Track, format SampleFormat) (TrackOutput, error)
	// StartReading starts decoding on all opened outputs.
	StartReading(ctx context.Context) error
	// Cancel stops decoding and releases the engine. Safe to call repeatedly.
	Cancel()
}

// TrackOutput is the pull side of one decoded track.
type TrackOutput interface {
	// NextSample returns the next unit in decode order or ErrEndOfStream.
	NextSample(ctx context.Context) (SampleUnit, error)
}

// Sink is an opened encode+mux engine writing one output file.
type Sink interface {
	// AddInput configures an encoder input for one track.
	AddInput(spec InputSpec) (TrackInput, error)
	// BeginSession starts writing; the first sample is placed at the given time.
	BeginSession(ctx context.Context, at time.Duration) error
	// Finalize waits for all inputs to drain and completes the container.
	Finalize(ctx context.Context) error
	// Abort stops writing without completing the file. Safe to call repeatedly.
	Abort()
}

// TrackInput is the push side of one encoder input.
type TrackInput interface {
	// IsReady reports whether Append may be called without overrunning the
	// encoder's buffering.
	IsReady() bool
	// Ready returns a channel that receives a signal whenever capacity may
	// have become available.
	Ready() <-chan struct{}
	// Append hands one sample to the encoder. Callers must check IsReady first.
	Append(sample SampleUnit) error
	// MarkFinished signals that no more samples follow.
	MarkFinished() error
}

// InputSpec configures one sink input.
type InputSpec struct {
	Kind TrackKind
	// Settings are the resolved encode parameters for the track.
	Settings Settings
	// Format describes the decoded samples that will be appended.
	Format SampleFormat
	// Rotation is the source display rotation in degrees (video only).
	Rotation int
}

// Engine opens sources and sinks. Implementations wrap an external codec
// engine; the pipeline owns the returned handles for one session.
type Engine interface {
	OpenSource(ctx context.Context, input string) (Source, error)
	OpenSink(ctx context.Context, outputPath string, container Container) (Sink, error)
}
