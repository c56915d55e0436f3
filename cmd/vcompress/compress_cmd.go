// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ManuGH/vcompress/internal/fsutil"
	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/pipeline"
)

func runCompress(args []string) int {
	fs := flag.NewFlagSet("vcompress compress", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one input file is required")
		return exitUsage
	}
	input := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer a.close()

	artifact, err := a.compressor.Compress(ctx, input, a.cfg.Compression)
	if err != nil {
		logger := log.WithComponent("cli")
		logger.Error().
			Err(err).
			Str(log.FieldInputPath, input).
			Str("reason", pipeline.Reason(err)).
			Msg("compression failed")
		return exitFailure
	}

	fmt.Printf("%s\t%s -> %s\t%s\n",
		artifact.Path,
		fsutil.FormatSize(artifact.InputSize),
		fsutil.FormatSize(artifact.Size),
		artifact.Elapsed.Round(10*time.Millisecond))
	return exitOK
}
