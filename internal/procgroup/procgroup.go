// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup starts engine processes in their own process group and
// tears the whole group down on abort.
package procgroup

import (
	"os/exec"
	"syscall"
	"time"

	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/metrics"
)

// Terminate stops the process group of cmd: SIGTERM, then SIGKILL once grace
// elapses. waitCh must deliver the result of cmd.Wait; Terminate always
// drains it and returns that result. Nil commands return nil.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	logger := log.WithComponent("procgroup").With().Int("pid", cmd.Process.Pid).Logger()

	if err := Kill(cmd, syscall.SIGTERM); err != nil {
		logger.Debug().Err(err).Msg("SIGTERM failed")
	}
	metrics.IncProcTerminate("SIGTERM")

	select {
	case err := <-waitCh:
		return err
	case <-time.After(grace):
	}

	logger.Warn().Dur("grace", grace).Msg("SIGTERM grace period exceeded, sending SIGKILL to process group")
	if err := Kill(cmd, syscall.SIGKILL); err != nil {
		logger.Debug().Err(err).Msg("SIGKILL failed")
	}
	metrics.IncProcTerminate("SIGKILL")
	return <-waitCh
}
