// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stub

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/vcompress/internal/media"
)

// Sink is an in-memory media.Sink.
type Sink struct {
	path        string
	container   media.Container
	capacity    int
	drainDelay  time.Duration
	finalizeErr error
	addInputErr map[media.TrackKind]error

	mu        sync.Mutex
	inputs    []*Input
	began     bool
	finalized bool

	aborted   chan struct{}
	abortOnce sync.Once
	nAbort    atomic.Int32
}

// Path returns the output path the sink was opened for.
func (s *Sink) Path() string { return s.path }

// Container returns the requested container.
func (s *Sink) Container() media.Container { return s.container }

// Inputs returns the inputs added so far.
func (s *Sink) Inputs() []*Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Input(nil), s.inputs...)
}

// Aborted reports whether Abort was called.
func (s *Sink) Aborted() bool { return s.nAbort.Load() > 0 }

// Finalized reports whether Finalize completed.
func (s *Sink) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

// Input returns the first input of kind, or nil.
func (s *Sink) Input(kind media.TrackKind) *Input {
	for _, in := range s.Inputs() {
		if in.spec.Kind == kind {
			return in
		}
	}
	return nil
}

// AddInput implements media.Sink.
func (s *Sink) AddInput(spec media.InputSpec) (media.TrackInput, error) {
	if err := s.addInputErr[spec.Kind]; err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.began {
		return nil, errors.New("stub: AddInput after BeginSession")
	}
	in := &Input{
		sink:    s,
		spec:    spec,
		queue:   make(chan media.SampleUnit, s.capacity),
		ready:   make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
	s.inputs = append(s.inputs, in)
	return in, nil
}

// BeginSession implements media.Sink.
func (s *Sink) BeginSession(_ context.Context, at time.Duration) error {
	if at != 0 {
		return fmt.Errorf("stub: session must start at zero, got %v", at)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.began {
		return errors.New("stub: session already started")
	}
	s.began = true
	for _, in := range s.inputs {
		go in.consume()
	}
	return nil
}

// Finalize implements media.Sink. It waits for every input to be finished
// and drained, then writes a manifest to the output path.
func (s *Sink) Finalize(ctx context.Context) error {
	inputs := s.Inputs()
	for _, in := range inputs {
		select {
		case <-in.drained:
		case <-s.aborted:
			return ErrAborted
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.finalizeErr != nil {
		return s.finalizeErr
	}

	var b strings.Builder
	fmt.Fprintf(&b, "container=%s\n", s.container)
	for _, in := range inputs {
		fmt.Fprintf(&b, "%s samples=%d settings=%#v rotation=%d\n", in.spec.Kind, len(in.Received()), in.spec.Settings, in.spec.Rotation)
	}
	if err := os.WriteFile(s.path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("stub: write output: %w", err)
	}

	s.mu.Lock()
	s.finalized = true
	s.mu.Unlock()
	return nil
}

// Abort implements media.Sink.
func (s *Sink) Abort() {
	s.nAbort.Add(1)
	s.abortOnce.Do(func() {
		close(s.aborted)
		for _, in := range s.Inputs() {
			in.notify()
		}
	})
}

// Input is a bounded media.TrackInput drained by a consumer goroutine.
type Input struct {
	sink  *Sink
	spec  media.InputSpec
	queue chan media.SampleUnit
	ready chan struct{}

	mu       sync.Mutex
	finished bool
	received []media.SampleUnit
	overruns int

	drained chan struct{}
}

// Spec returns the input configuration.
func (in *Input) Spec() media.InputSpec { return in.spec }

// Received returns the samples consumed so far, in consumption order.
func (in *Input) Received() []media.SampleUnit {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]media.SampleUnit(nil), in.received...)
}

// Overruns returns how many Append calls arrived while not ready.
func (in *Input) Overruns() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.overruns
}

// Finished reports whether MarkFinished was called.
func (in *Input) Finished() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.finished
}

// IsReady implements media.TrackInput. An aborted input reports ready so
// that the next Append returns ErrAborted.
func (in *Input) IsReady() bool {
	select {
	case <-in.sink.aborted:
		return true
	default:
	}
	return len(in.queue) < cap(in.queue)
}

// Ready implements media.TrackInput.
func (in *Input) Ready() <-chan struct{} { return in.ready }

// Append implements media.TrackInput.
func (in *Input) Append(sample media.SampleUnit) error {
	select {
	case <-in.sink.aborted:
		return ErrAborted
	default:
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.finished {
		return errors.New("stub: append after MarkFinished")
	}
	select {
	case in.queue <- sample:
		return nil
	default:
		in.overruns++
		return ErrOverrun
	}
}

// MarkFinished implements media.TrackInput.
func (in *Input) MarkFinished() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.finished {
		return errors.New("stub: input already finished")
	}
	in.finished = true
	close(in.queue)
	return nil
}

func (in *Input) consume() {
	defer close(in.drained)
	for {
		select {
		case <-in.sink.aborted:
			in.notify()
			return
		case sample, ok := <-in.queue:
			if !ok {
				return
			}
			if in.sink.drainDelay > 0 {
				select {
				case <-time.After(in.sink.drainDelay):
				case <-in.sink.aborted:
					in.notify()
					return
				}
			}
			in.mu.Lock()
			in.received = append(in.received, sample)
			in.mu.Unlock()
			in.notify()
		}
	}
}

func (in *Input) notify() {
	select {
	case in.ready <- struct{}{}:
	default:
	}
}
