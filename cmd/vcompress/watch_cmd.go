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

	"github.com/ManuGH/vcompress/internal/watch"
)

func runWatch(args []string) int {
	fs := flag.NewFlagSet("vcompress watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one directory is required")
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
	defer a.close()

	cfg := a.cfg.Compression
	w, err := watch.New(fs.Arg(0), a.cfg.Watch, a.cfg.Batch.Jobs, func(ctx context.Context, path string) (string, error) {
		artifact, err := a.compressor.Compress(ctx, path, cfg)
		if err != nil {
			return "", err
		}
		return artifact.Path, nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
	if err := w.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}
