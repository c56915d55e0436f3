// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/vcompress/internal/media"
)

// Source is a synthetic media.Source.
type Source struct {
	input string
	asset Asset

	started   chan struct{}
	startOnce sync.Once
	cancelled chan struct{}
	cancel    sync.Once
	nCancel   atomic.Int32

	mu      sync.Mutex
	outputs []*Output
}

func newSource(input string, a Asset) *Source {
	if a.SampleDuration <= 0 {
		a.SampleDuration = 40 * time.Millisecond
	}
	return &Source{
		input:     input,
		asset:     a,
		started:   make(chan struct{}),
		cancelled: make(chan struct{}),
	}
}

// Tracks implements media.Source.
func (s *Source) Tracks(kind media.TrackKind) []media.Track {
	var out []media.Track
	for _, t := range s.asset.Tracks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// OpenOutput implements media.Source.
func (s *Source) OpenOutput(track media.Track, format media.SampleFormat) (media.TrackOutput, error) {
	select {
	case <-s.cancelled:
		return nil, ErrAborted
	default:
	}
	o := &Output{
		src:       s,
		kind:      track.Kind,
		format:    format,
		total:     s.asset.Samples[track.Kind],
		failAfter: -1,
	}
	if n, ok := s.asset.FailAfter[track.Kind]; ok {
		o.failAfter = n
	}
	s.mu.Lock()
	s.outputs = append(s.outputs, o)
	s.mu.Unlock()
	return o, nil
}

// StartReading implements media.Source.
func (s *Source) StartReading(context.Context) error {
	s.startOnce.Do(func() { close(s.started) })
	return nil
}

// Cancel implements media.Source.
func (s *Source) Cancel() {
	s.nCancel.Add(1)
	s.cancel.Do(func() { close(s.cancelled) })
}

// Cancelled reports whether Cancel was called.
func (s *Source) Cancelled() bool { return s.nCancel.Load() > 0 }

// Outputs returns the outputs opened so far.
func (s *Source) Outputs() []*Output {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Output(nil), s.outputs...)
}

// Output is a synthetic media.TrackOutput.
type Output struct {
	src       *Source
	kind      media.TrackKind
	format    media.SampleFormat
	total     int
	failAfter int

	next int
}

// Format returns the requested decode format.
func (o *Output) Format() media.SampleFormat { return o.format }

// NextSample implements media.TrackOutput.
func (o *Output) NextSample(ctx context.Context) (media.SampleUnit, error) {
	select {
	case <-o.src.started:
	default:
		return media.SampleUnit{}, ErrNotStarted
	}
	select {
	case <-o.src.cancelled:
		return media.SampleUnit{}, ErrAborted
	case <-ctx.Done():
		return media.SampleUnit{}, ctx.Err()
	default:
	}

	if o.src.asset.Block[o.kind] {
		select {
		case <-o.src.cancelled:
			return media.SampleUnit{}, ErrAborted
		case <-ctx.Done():
			return media.SampleUnit{}, ctx.Err()
		}
	}
	if o.failAfter >= 0 && o.next >= o.failAfter {
		return media.SampleUnit{}, fmt.Errorf("stub: decode %s sample %d: %w", o.kind, o.next, errors.New("corrupt frame"))
	}
	if o.next >= o.total {
		if hold := o.src.asset.Hold[o.kind]; hold != nil {
			select {
			case <-hold:
			case <-o.src.cancelled:
				return media.SampleUnit{}, ErrAborted
			case <-ctx.Done():
				return media.SampleUnit{}, ctx.Err()
			}
		}
		return media.SampleUnit{}, media.ErrEndOfStream
	}

	seq := uint64(o.next)
	o.next++
	d := o.src.asset.SampleDuration
	return media.SampleUnit{
		Kind:     o.kind,
		Seq:      seq,
		PTS:      time.Duration(seq) * d,
		Duration: d,
		Data:     []byte(fmt.Sprintf("%s-%d", o.kind, seq)),
	}, nil
}
