// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsm is a small, strict finite state machine used by pipeline workers.
package fsm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidTransition is returned when no edge exists for (state, event).
var ErrInvalidTransition = errors.New("invalid transition")

// ErrTerminal is returned when an event is fired on a terminal state.
var ErrTerminal = errors.New("state is terminal")

// Transition describes a single edge in the FSM.
// Guard may reject the transition; Action performs side effects before the
// state changes.
type Transition[S ~string, E ~string] struct {
	From   S
	Event  E
	To     S
	Guard  func(ctx context.Context, from S, event E) error
	Action func(ctx context.Context, from S, to S, event E) error
}

// Observer is called after every applied transition.
type Observer[S ~string, E ~string] func(from, to S, event E)

// Machine runs transitions atomically. Unknown transitions are errors.
type Machine[S ~string, E ~string] struct {
	mu       sync.Mutex
	state    S
	index    map[string]Transition[S, E]
	terminal map[S]struct{}
	observe  Observer[S, E]
}

// Option configures a Machine.
type Option[S ~string, E ~string] func(*Machine[S, E])

// WithTerminal marks states that accept no further events.
func WithTerminal[S ~string, E ~string](states ...S) Option[S, E] {
	return func(m *Machine[S, E]) {
		for _, s := range states {
			m.terminal[s] = struct{}{}
		}
	}
}

// WithObserver registers a callback run after each transition.
func WithObserver[S ~string, E ~string](fn Observer[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) { m.observe = fn }
}

// New builds a machine in the initial state.
func New[S ~string, E ~string](initial S, transitions []Transition[S, E], opts ...Option[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{
		state:    initial,
		index:    make(map[string]Transition[S, E], len(transitions)),
		terminal: make(map[S]struct{}),
	}
	for _, t := range transitions {
		k := key(t.From, t.Event)
		if _, exists := m.index[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s -> %s", t.From, t.Event)
		}
		m.index[k] = t
	}
	for _, o := range opts {
		o(m)
	}
	for _, t := range transitions {
		if _, ok := m.terminal[t.From]; ok {
			return nil, fmt.Errorf("transition out of terminal state %s", t.From)
		}
	}
	return m, nil
}

// State returns the current state.
func (m *Machine[S, E]) State() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Terminal reports whether the current state accepts no further events.
func (m *Machine[S, E]) Terminal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.terminal[m.state]
	return ok
}

// Fire attempts to apply an event atomically.
func (m *Machine[S, E]) Fire(ctx context.Context, event E) (S, error) {
	m.mu.Lock()
	from := m.state
	if _, ok := m.terminal[from]; ok {
		m.mu.Unlock()
		return from, fmt.Errorf("%w: state=%s event=%s", ErrTerminal, from, event)
	}
	t, ok := m.index[key(from, event)]
	if !ok {
		m.mu.Unlock()
		return from, fmt.Errorf("%w: state=%s event=%s", ErrInvalidTransition, from, event)
	}
	to := t.To
	m.mu.Unlock()

	// Guard and Action run outside the lock.
	if t.Guard != nil {
		if err := t.Guard(ctx, from, event); err != nil {
			return from, err
		}
	}
	if t.Action != nil {
		if err := t.Action(ctx, from, to, event); err != nil {
			return from, err
		}
	}

	m.mu.Lock()
	if m.state != from {
		cur := m.state
		m.mu.Unlock()
		return cur, fmt.Errorf("concurrent transition detected: from=%s cur=%s event=%s", from, cur, event)
	}
	m.state = to
	observe := m.observe
	m.mu.Unlock()

	if observe != nil {
		observe(from, to, event)
	}
	return to, nil
}

func key[S ~string, E ~string](from S, event E) string {
	return string(from) + "|" + string(event)
}
