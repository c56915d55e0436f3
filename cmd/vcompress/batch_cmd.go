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

	"github.com/ManuGH/vcompress/internal/batch"
	"github.com/ManuGH/vcompress/internal/fsutil"
)

func runBatch(args []string) int {
	fs := flag.NewFlagSet("vcompress batch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	o := registerOverrides(fs)
	jobs := fs.Int("jobs", 0, "concurrent compressions (default from config)")
	report := fs.String("report", "", "write a JSON report to this path")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one input file is required")
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

	n := a.cfg.Batch.Jobs
	if *jobs > 0 {
		n = *jobs
	}
	rep := batch.Run(ctx, a.compressor, fs.Args(), a.cfg.Compression, n)

	for _, r := range rep.Results {
		if r.OK() {
			fmt.Printf("ok\t%s\t%s\t%s\n", r.Input, r.Output, fsutil.FormatSize(r.Size))
		} else {
			fmt.Printf("failed\t%s\t%s\t%s\n", r.Input, r.Reason, r.Error)
		}
	}

	path := a.cfg.Batch.ReportPath
	if *report != "" {
		path = *report
	}
	if path != "" {
		if err := batch.WriteReport(ctx, path, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFailure
		}
	}

	if rep.Failed > 0 {
		return exitFailure
	}
	return exitOK
}
