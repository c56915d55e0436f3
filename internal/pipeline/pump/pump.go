// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package pump moves decoded samples of one track from a source output into
// a sink input under cooperative backpressure.
package pump

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/media"
	"github.com/ManuGH/vcompress/internal/metrics"
	"github.com/ManuGH/vcompress/internal/pipeline/fsm"
	"github.com/rs/zerolog"
)

// State of a pump.
type State string

const (
	StateIdle     State = "idle"
	StatePumping  State = "pumping"
	StateFinished State = "finished"
	StateFailed   State = "failed"
)

type event string

const (
	evStart  event = "start"
	evFinish event = "finish"
	evFail   event = "fail"
)

// ErrAlreadyStarted is returned when Run is called more than once.
var ErrAlreadyStarted = errors.New("pump already started")

var transitions = []fsm.Transition[State, event]{
	{From: StateIdle, Event: evStart, To: StatePumping},
	{From: StateIdle, Event: evFail, To: StateFailed},
	{From: StatePumping, Event: evFinish, To: StateFinished},
	{From: StatePumping, Event: evFail, To: StateFailed},
}

// Pump borrows exactly one output/input pair. It never owns or closes the
// source or sink behind them.
type Pump struct {
	kind media.TrackKind
	out  media.TrackOutput
	in   media.TrackInput

	machine *fsm.Machine[State, event]
	logger  zerolog.Logger

	started atomic.Bool
	samples atomic.Uint64
	waits   atomic.Uint64

	done    chan struct{}
	errOnce sync.Once
	err     error
}

// New binds a pump to one track output and one sink input.
func New(kind media.TrackKind, out media.TrackOutput, in media.TrackInput) *Pump {
	p := &Pump{
		kind: kind,
		out:  out,
		in:   in,
		done: make(chan struct{}),
	}
	m, err := fsm.New(StateIdle, transitions,
		fsm.WithTerminal[State, event](StateFinished, StateFailed),
		fsm.WithObserver[State, event](func(from, to State, _ event) {
			p.logger.Debug().Str("from", string(from)).Str(log.FieldState, string(to)).Msg("pump transition")
		}),
	)
	if err != nil {
		// The transition table is static.
		panic(fmt.Sprintf("pump: invalid state table: %v", err))
	}
	p.machine = m
	p.logger = log.WithComponent("pump").With().Str(log.FieldTrack, string(kind)).Logger()
	return p
}

// Kind returns the track kind the pump serves.
func (p *Pump) Kind() media.TrackKind { return p.kind }

// State returns the current state.
func (p *Pump) State() State { return p.machine.State() }

// Samples returns the number of samples appended so far.
func (p *Pump) Samples() uint64 { return p.samples.Load() }

// Waits returns the number of times the pump blocked on sink capacity.
func (p *Pump) Waits() uint64 { return p.waits.Load() }

// Done is closed once the pump reaches a terminal state.
func (p *Pump) Done() <-chan struct{} { return p.done }

// Err returns the terminal error after Done is closed; nil on success.
func (p *Pump) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Run pumps until the source output reports end of stream, an engine call
// fails, or ctx is cancelled. It returns the terminal error, nil once the
// sink input has been marked finished.
func (p *Pump) Run(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	p.logger = log.WithContext(ctx, p.logger)

	if _, err := p.machine.Fire(ctx, evStart); err != nil {
		return p.finish(ctx, err)
	}
	return p.finish(ctx, p.loop(ctx))
}

func (p *Pump) loop(ctx context.Context) error {
	track := string(p.kind)
	for {
		if !p.in.IsReady() {
			p.waits.Add(1)
			metrics.IncPumpWait(track)
			select {
			case <-p.in.Ready():
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		sample, err := p.out.NextSample(ctx)
		if errors.Is(err, media.ErrEndOfStream) {
			if err := p.in.MarkFinished(); err != nil {
				return fmt.Errorf("mark %s input finished: %w", track, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s sample %d: %w", track, p.samples.Load(), err)
		}

		if err := p.in.Append(sample); err != nil {
			return fmt.Errorf("append %s sample %d: %w", track, sample.Seq, err)
		}
		p.samples.Add(1)
		metrics.IncPumpSample(track)
	}
}

// finish moves the machine to its terminal state and publishes the result once.
func (p *Pump) finish(ctx context.Context, runErr error) error {
	p.errOnce.Do(func() {
		ev := evFinish
		if runErr != nil {
			ev = evFail
		}
		to, err := p.machine.Fire(ctx, ev)
		if err != nil && runErr == nil {
			runErr = err
			to = StateFailed
		}
		p.err = runErr
		metrics.RecordPumpResult(string(p.kind), string(to))

		if runErr != nil {
			p.logger.Warn().Err(runErr).Uint64(log.FieldSamples, p.samples.Load()).Msg("pump failed")
		} else {
			p.logger.Debug().Uint64(log.FieldSamples, p.samples.Load()).Uint64("waits", p.waits.Load()).Msg("pump finished")
		}
		close(p.done)
	})
	return p.err
}
