// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package watch compresses media files as they appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/fsutil"
	"github.com/ManuGH/vcompress/internal/log"
)

// Handler processes one settled file and returns the path it produced.
type Handler func(ctx context.Context, path string) (output string, err error)

// Watcher reacts to files created in a single directory. A file is handed
// to the handler once it saw no writes for the settle period. Each path is
// handled at most once, and files produced by the handler are ignored.
type Watcher struct {
	dir    string
	settle time.Duration
	exts   map[string]struct{}
	jobs   int
	handle Handler

	mu     sync.Mutex
	timers map[string]*time.Timer
	seen   map[string]struct{}
}

// New validates dir and returns a watcher running up to jobs handlers at once.
func New(dir string, cfg config.WatchConfig, jobs int, handle Handler) (*Watcher, error) {
	if handle == nil {
		return nil, errors.New("watch: nil handler")
	}
	if err := fsutil.CheckDirectory(dir); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if jobs <= 0 {
		jobs = 1
	}
	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}
	return &Watcher{
		dir:    abs,
		settle: cfg.Settle,
		exts:   exts,
		jobs:   jobs,
		handle: handle,
		timers: make(map[string]*time.Timer),
		seen:   make(map[string]struct{}),
	}, nil
}

// Run watches until ctx is cancelled. Running handlers see the same ctx and
// are waited for before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	logger := log.WithComponentFromContext(ctx, "watch")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = fw.Close()
	}()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.dir, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fired := make(chan string)
	queue := make(chan string, 64)
	var wg sync.WaitGroup
	for range w.jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				w.process(ctx, path)
			}
		}()
	}
	defer func() {
		w.stopTimers()
		close(queue)
		wg.Wait()
	}()

	logger.Info().Str(log.FieldPath, w.dir).Dur("settle", w.settle).Msg("watching directory")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("watcher channel closed")
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				w.arm(ctx, ev.Name, fired)
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				w.disarm(ev.Name)
			}
		case path := <-fired:
			w.mu.Lock()
			delete(w.timers, path)
			w.mu.Unlock()
			select {
			case queue <- path:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}

// arm starts or restarts the settle timer of path.
func (w *Watcher) arm(ctx context.Context, path string, fired chan<- string) {
	if !w.wants(path) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, done := w.seen[seenKey(path)]; done {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.timers[path] = time.AfterFunc(w.settle, func() {
		select {
		case fired <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) disarm(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
}

func (w *Watcher) wants(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	_, ok := w.exts[strings.ToLower(filepath.Ext(base))]
	return ok
}

// seenKey normalises path to NFC so decomposed names from some
// filesystems match their composed form.
func seenKey(path string) string {
	return norm.NFC.String(filepath.Clean(path))
}

// markSeen records path and reports whether it was new.
func (w *Watcher) markSeen(path string) bool {
	key := seenKey(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[key]; ok {
		return false
	}
	w.seen[key] = struct{}{}
	return true
}

func (w *Watcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	logger := log.WithComponentFromContext(ctx, "watch").With().Str(log.FieldInputPath, path).Logger()

	if err := fsutil.IsRegularFile(path); err != nil {
		logger.Debug().Err(err).Msg("skipping")
		return
	}
	resolved, err := fsutil.ConfineAbsPath(w.dir, path)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping file outside watch directory")
		return
	}
	if !w.markSeen(path) {
		return
	}

	out, err := w.handle(ctx, resolved)
	if err != nil {
		logger.Error().Err(err).Msg("compression failed")
		return
	}
	if out != "" {
		if abs, err := filepath.Abs(out); err == nil {
			w.markSeen(abs)
		}
	}
	logger.Info().Str(log.FieldOutputPath, out).Msg("compressed")
}
