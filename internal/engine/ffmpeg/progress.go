// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Progress tracks the key=value blocks ffmpeg writes with -progress.
type Progress struct {
	mu sync.RWMutex

	frame     int64
	outTime   time.Duration
	totalSize int64
	speed     string
	ended     bool
	updated   time.Time
}

// ProgressSnapshot is a copy of the latest reported values.
type ProgressSnapshot struct {
	Frame     int64
	OutTime   time.Duration
	TotalSize int64
	Speed     string
	Ended     bool
	Updated   time.Time
}

// ParseLine processes one line of -progress output.
func (p *Progress) ParseLine(line string) {
	key, val, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	p.mu.Lock()
	defer p.mu.Unlock()
	switch key {
	case "frame":
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			p.frame = n
		}
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds.
		if n, err := strconv.ParseInt(val, 10, 64); err == nil && n >= 0 {
			p.outTime = time.Duration(n) * time.Microsecond
		}
	case "total_size":
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			p.totalSize = n
		}
	case "speed":
		p.speed = val
	case "progress":
		p.updated = time.Now()
		if val == "end" {
			p.ended = true
		}
	}
}

// Consume reads r until EOF, feeding every line to ParseLine. onBlock is
// called after each complete block when non-nil.
func (p *Progress) Consume(r io.Reader, onBlock func(ProgressSnapshot)) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		p.ParseLine(line)
		if onBlock != nil && strings.HasPrefix(line, "progress=") {
			onBlock(p.Snapshot())
		}
	}
}

// Snapshot returns the latest values.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return ProgressSnapshot{
		Frame:     p.frame,
		OutTime:   p.outTime,
		TotalSize: p.totalSize,
		Speed:     p.speed,
		Ended:     p.ended,
		Updated:   p.updated,
	}
}
