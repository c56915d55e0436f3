// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/media"
)

var (
	// ErrQueueFull is returned by Append when the caller ignored IsReady.
	ErrQueueFull = errors.New("encoder input queue full")
	// ErrInputFinished is returned by Append after MarkFinished.
	ErrInputFinished = errors.New("encoder input already finished")
)

// progressLogInterval throttles encoder progress logging.
const progressLogInterval = 2 * time.Second

// Sink feeds every input to a single encoder process. Each input is written
// to its own inherited pipe by a writer goroutine draining a bounded queue.
type Sink struct {
	cfg       Config
	output    string
	container media.Container

	mu       sync.Mutex
	inputs   []*input
	proc     *process
	progress Progress
	progDone chan struct{}

	aborted   chan struct{}
	abortOnce sync.Once
}

// AddInput implements media.Sink.
func (s *Sink) AddInput(spec media.InputSpec) (media.TrackInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc != nil {
		return nil, errors.New("AddInput after BeginSession")
	}
	if s.isAborted() {
		return nil, errCancelled
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("input pipe: %w", err)
	}
	in := &input{
		spec:    spec,
		queue:   make(chan media.SampleUnit, s.cfg.QueueDepth),
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		pr:      pr,
		pw:      pw,
		aborted: s.aborted,
	}
	s.inputs = append(s.inputs, in)
	return in, nil
}

// BeginSession implements media.Sink. Only sessions starting at zero are
// supported.
func (s *Sink) BeginSession(ctx context.Context, at time.Duration) error {
	if at != 0 {
		return fmt.Errorf("session start %s: only zero is supported", at)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isAborted() {
		return errCancelled
	}
	if s.proc != nil {
		return errors.New("session already started")
	}
	if len(s.inputs) == 0 {
		return errors.New("sink has no inputs")
	}

	specs := make([]media.InputSpec, len(s.inputs))
	files := make([]*os.File, len(s.inputs))
	for i, in := range s.inputs {
		specs[i] = in.spec
		files[i] = in.pr
	}
	args, err := BuildEncodeArgs(specs, s.output, s.container)
	if err != nil {
		return err
	}

	p := newProcess(ctx, "encoder", s.cfg.FFmpegBin, args, s.cfg.KillGrace)
	p.cmd.ExtraFiles = files
	stdout, err := p.stdoutPipe()
	if err != nil {
		return err
	}
	if err := p.start(); err != nil {
		_ = stdout.Close()
		return err
	}
	s.proc = p

	// The child holds its own copies of the read ends.
	for _, in := range s.inputs {
		_ = in.pr.Close()
	}

	logger := log.WithComponentFromContext(ctx, "encoder")
	s.progDone = make(chan struct{})
	throttle := rate.Sometimes{Interval: progressLogInterval}
	go func() {
		defer close(s.progDone)
		defer stdout.Close()
		s.progress.Consume(stdout, func(snap ProgressSnapshot) {
			if snap.Ended {
				return
			}
			throttle.Do(func() {
				logger.Debug().
					Int64("frame", snap.Frame).
					Dur("out_time", snap.OutTime).
					Int64(log.FieldSize, snap.TotalSize).
					Str("speed", snap.Speed).
					Msg("encode progress")
			})
		})
	}()

	for _, in := range s.inputs {
		go in.write()
	}
	return nil
}

// Finalize implements media.Sink. It waits for every input to drain and the
// encoder to exit.
func (s *Sink) Finalize(ctx context.Context) error {
	s.mu.Lock()
	p := s.proc
	inputs := s.inputs
	s.mu.Unlock()
	if p == nil {
		return errors.New("session not started")
	}
	if s.isAborted() {
		return errCancelled
	}

	for _, in := range inputs {
		select {
		case <-in.done:
		case <-ctx.Done():
			s.Abort()
			return ctx.Err()
		}
	}
	if err := p.wait(ctx); err != nil {
		return err
	}
	<-s.progDone
	for _, in := range inputs {
		if err := in.err(); err != nil {
			return fmt.Errorf("%s input: %w", in.spec.Kind, err)
		}
	}
	return nil
}

// Abort implements media.Sink. The partial output file is left on disk.
func (s *Sink) Abort() {
	s.abortOnce.Do(func() {
		close(s.aborted)
		s.mu.Lock()
		p := s.proc
		inputs := s.inputs
		s.mu.Unlock()
		for _, in := range inputs {
			in.closeWriter()
			if p == nil {
				_ = in.pr.Close()
			}
			in.notify()
		}
		if p != nil {
			go p.terminate()
		}
	})
}

func (s *Sink) isAborted() bool {
	select {
	case <-s.aborted:
		return true
	default:
		return false
	}
}

// input is one encoder pipe with its bounded queue.
type input struct {
	spec    media.InputSpec
	queue   chan media.SampleUnit
	ready   chan struct{}
	done    chan struct{}
	pr, pw  *os.File
	aborted <-chan struct{}

	mu       sync.Mutex
	finished bool
	werr     error
	wclose   sync.Once
}

// IsReady implements media.TrackInput. A failed or aborted input reports
// ready so that the next Append surfaces the failure.
func (in *input) IsReady() bool {
	select {
	case <-in.aborted:
		return true
	default:
	}
	return in.err() != nil || len(in.queue) < cap(in.queue)
}

// Ready implements media.TrackInput.
func (in *input) Ready() <-chan struct{} { return in.ready }

// Append implements media.TrackInput.
func (in *input) Append(sample media.SampleUnit) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.finished {
		return ErrInputFinished
	}
	if in.werr != nil {
		return in.werr
	}
	select {
	case <-in.aborted:
		return errCancelled
	default:
	}
	select {
	case in.queue <- sample:
		return nil
	default:
		return ErrQueueFull
	}
}

// MarkFinished implements media.TrackInput.
func (in *input) MarkFinished() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.finished {
		return nil
	}
	in.finished = true
	close(in.queue)
	return in.werr
}

func (in *input) err() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.werr
}

// write drains the queue into the pipe until the queue is closed, a write
// fails or the sink is aborted.
func (in *input) write() {
	defer close(in.done)
	defer in.closeWriter()
	for {
		select {
		case s, ok := <-in.queue:
			if !ok {
				return
			}
			if _, err := in.pw.Write(s.Data); err != nil {
				in.mu.Lock()
				in.werr = fmt.Errorf("write %s sample %d: %w", in.spec.Kind, s.Seq, err)
				in.mu.Unlock()
				in.notify()
				return
			}
			in.notify()
		case <-in.aborted:
			in.notify()
			return
		}
	}
}

func (in *input) notify() {
	select {
	case in.ready <- struct{}{}:
	default:
	}
}

func (in *input) closeWriter() {
	in.wclose.Do(func() { _ = in.pw.Close() })
}
