// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/metrics"
	"github.com/ManuGH/vcompress/internal/procgroup"
)

const stderrTailLines = 20

// process is one running engine process with its stderr tail and exit status.
type process struct {
	role  string
	cmd   *exec.Cmd
	tail  *LineRing
	grace time.Duration

	exited  chan struct{}
	waitErr error
	stop    sync.Once

	// closeAfterStart are the child's pipe ends held by the parent.
	closeAfterStart []*os.File
}

// newProcess prepares bin with args in its own process group. Cancelling
// ctx terminates the whole group.
func newProcess(ctx context.Context, role, bin string, args []string, grace time.Duration) *process {
	// #nosec G204 -- the binary is operator configured and args are built internally
	cmd := exec.CommandContext(ctx, bin, args...)
	procgroup.Set(cmd)
	tail := NewLineRing(stderrTailLines)
	cmd.Stderr = tail
	p := &process{role: role, cmd: cmd, tail: tail, grace: grace, exited: make(chan struct{})}
	cmd.Cancel = func() error {
		go p.terminate()
		return nil
	}
	cmd.WaitDelay = grace + time.Second
	return p
}

// stdoutPipe connects the child's stdout to a pipe owned by the caller.
// Unlike exec.Cmd.StdoutPipe the read end stays open after the process
// exits, so buffered output can still be drained.
func (p *process) stdoutPipe() (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%s stdout: %w", p.role, err)
	}
	p.cmd.Stdout = w
	p.closeAfterStart = append(p.closeAfterStart, w)
	return r, nil
}

func (p *process) start() error {
	defer func() {
		for _, f := range p.closeAfterStart {
			_ = f.Close()
		}
		p.closeAfterStart = nil
	}()
	if err := p.cmd.Start(); err != nil {
		metrics.RecordProcExit(p.role, err)
		return fmt.Errorf("start %s: %w", p.role, err)
	}
	logger := log.WithComponent("engine")
	logger.Debug().
		Str("role", p.role).
		Int("pid", p.cmd.Process.Pid).
		Str("args", strings.Join(p.cmd.Args, " ")).
		Msg("engine process started")
	go func() {
		p.waitErr = p.cmd.Wait()
		metrics.RecordProcExit(p.role, p.waitErr)
		close(p.exited)
	}()
	return nil
}

// wait blocks until the process exits or ctx ends, and returns the exit
// error annotated with the stderr tail.
func (p *process) wait(ctx context.Context) error {
	select {
	case <-p.exited:
		return p.exitError()
	case <-ctx.Done():
		p.terminate()
		return ctx.Err()
	}
}

func (p *process) exitError() error {
	if p.waitErr == nil {
		return nil
	}
	if tail := p.tail.LastN(stderrTailLines); len(tail) > 0 {
		return fmt.Errorf("%s exited: %w: %s", p.role, p.waitErr, strings.Join(tail, " | "))
	}
	return fmt.Errorf("%s exited: %w", p.role, p.waitErr)
}

// terminate stops the process group once and waits for the exit.
func (p *process) terminate() {
	p.stop.Do(func() {
		if p.cmd.Process == nil {
			return
		}
		select {
		case <-p.exited:
			return
		default:
		}
		waitCh := make(chan error, 1)
		go func() {
			<-p.exited
			waitCh <- p.waitErr
		}()
		if err := procgroup.Terminate(p.cmd, waitCh, p.grace); err != nil && !isSignalExit(err) {
			logger := log.WithComponent("engine")
			logger.Debug().Err(err).Str("role", p.role).Msg("terminate")
		}
	})
}

func isSignalExit(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && !exitErr.Exited()
}
