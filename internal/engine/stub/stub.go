// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package stub is an in-memory media engine. Sources synthesize samples,
// sinks consume them on a background goroutine with bounded buffering and
// write a small manifest file on Finalize.
package stub

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/ManuGH/vcompress/internal/media"
)

var (
	// ErrOverrun is returned by Append when the input reports not ready.
	ErrOverrun = errors.New("stub: append while input not ready")
	// ErrAborted is returned by handles used after Abort or Cancel.
	ErrAborted = errors.New("stub: aborted")
	// ErrNotStarted is returned when a handle is used before its session starts.
	ErrNotStarted = errors.New("stub: session not started")
)

// Asset describes a synthetic input.
type Asset struct {
	Tracks []media.Track
	// Samples is the number of samples each track kind yields.
	Samples map[media.TrackKind]int
	// SampleDuration is the PTS step between samples; defaults to 40ms.
	SampleDuration time.Duration
	// FailAfter makes NextSample fail once the given number of samples was read.
	FailAfter map[media.TrackKind]int
	// Hold delays end of stream for a track kind until the channel is closed.
	Hold map[media.TrackKind]chan struct{}
	// Block makes NextSample of a kind block until ctx or Cancel.
	Block map[media.TrackKind]bool
}

// Engine implements media.Engine over registered assets.
type Engine struct {
	// Capacity bounds the samples buffered per sink input. Defaults to 2.
	Capacity int
	// DrainDelay slows the sink consumer down to force backpressure.
	DrainDelay time.Duration

	// Failure injection.
	OpenSourceErr error
	OpenSinkErr   error
	FinalizeErr   error
	AddInputErr   map[media.TrackKind]error

	mu      sync.Mutex
	assets  map[string]Asset
	sources []*Source
	sinks   []*Sink
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{Capacity: 2, assets: make(map[string]Asset)}
}

// AddAsset registers an asset under a path.
func (e *Engine) AddAsset(path string, a Asset) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assets[path] = a
}

// OpenSource implements media.Engine.
func (e *Engine) OpenSource(_ context.Context, input string) (media.Source, error) {
	if e.OpenSourceErr != nil {
		return nil, e.OpenSourceErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.assets[input]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", input, fs.ErrNotExist)
	}
	s := newSource(input, a)
	e.sources = append(e.sources, s)
	return s, nil
}

// OpenSink implements media.Engine.
func (e *Engine) OpenSink(_ context.Context, outputPath string, container media.Container) (media.Sink, error) {
	if e.OpenSinkErr != nil {
		return nil, e.OpenSinkErr
	}
	capacity := e.Capacity
	if capacity <= 0 {
		capacity = 2
	}
	s := &Sink{
		path:        outputPath,
		container:   container,
		capacity:    capacity,
		drainDelay:  e.DrainDelay,
		finalizeErr: e.FinalizeErr,
		addInputErr: e.AddInputErr,
		aborted:     make(chan struct{}),
	}
	e.mu.Lock()
	e.sinks = append(e.sinks, s)
	e.mu.Unlock()
	return s, nil
}

// Sources returns every source opened so far.
func (e *Engine) Sources() []*Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Source(nil), e.sources...)
}

// Sinks returns every sink opened so far.
func (e *Engine) Sinks() []*Sink {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Sink(nil), e.sinks...)
}
