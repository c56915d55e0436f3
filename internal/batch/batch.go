// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package batch compresses several inputs with bounded concurrency and
// reports the outcome of each.
package batch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vcompress/internal/config"
	"github.com/ManuGH/vcompress/internal/log"
	"github.com/ManuGH/vcompress/internal/pipeline"
)

// Compressor runs one compression to completion.
type Compressor interface {
	Compress(ctx context.Context, input string, cfg config.CompressionConfig) (pipeline.Artifact, error)
}

// Result is the outcome for one input.
type Result struct {
	Input     string             `json:"input"`
	JobID     string             `json:"job_id,omitempty"`
	Output    string             `json:"output,omitempty"`
	Size      int64              `json:"size,omitempty"`
	InputSize int64              `json:"input_size,omitempty"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Error     string             `json:"error,omitempty"`
	Reason    string             `json:"reason,omitempty"`
	Artifact  *pipeline.Artifact `json:"-"`
}

// OK reports whether the input was compressed.
func (r Result) OK() bool { return r.Error == "" }

// Report summarises a batch run. Results keep the order of the inputs.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Jobs      int           `json:"jobs"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Results   []Result      `json:"results"`
}

// Run compresses every input with at most jobs running at once. A failing
// input does not stop the others; cancelling ctx stops pending inputs.
func Run(ctx context.Context, c Compressor, inputs []string, cfg config.CompressionConfig, jobs int) Report {
	if jobs <= 0 {
		jobs = 1
	}
	logger := log.WithComponentFromContext(ctx, "batch")
	rep := Report{StartedAt: time.Now(), Jobs: jobs, Results: make([]Result, len(inputs))}

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, input := range inputs {
		g.Go(func() error {
			rep.Results[i] = runOne(ctx, c, input, cfg)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range rep.Results {
		if r.OK() {
			rep.Succeeded++
		} else {
			rep.Failed++
		}
	}
	rep.Elapsed = time.Since(rep.StartedAt)
	logger.Info().
		Int("inputs", len(inputs)).
		Int("succeeded", rep.Succeeded).
		Int("failed", rep.Failed).
		Dur("elapsed", rep.Elapsed).
		Msg("batch complete")
	return rep
}

func runOne(ctx context.Context, c Compressor, input string, cfg config.CompressionConfig) Result {
	res := Result{Input: input}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		res.Reason = pipeline.Reason(err)
		return res
	}
	start := time.Now()
	a, err := c.Compress(ctx, input, cfg)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		res.Reason = pipeline.Reason(err)
		logger := log.WithComponentFromContext(ctx, "batch")
		logger.Warn().
			Err(err).
			Str(log.FieldInputPath, input).
			Msg("input failed")
		return res
	}
	res.JobID = a.JobID
	res.Output = a.Path
	res.Size = a.Size
	res.InputSize = a.InputSize
	res.Artifact = &a
	return res
}
