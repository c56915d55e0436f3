// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"context"
	"time"

	"github.com/ManuGH/vcompress/internal/media"
)

// Artifact describes the file produced by a successful run.
type Artifact struct {
	JobID     string
	Path      string
	Container media.Container
	// Size is the output size in bytes; -1 when it could not be read.
	Size int64
	// InputSize is the source size in bytes; -1 for non-file inputs.
	InputSize int64
	Elapsed   time.Duration

	VideoSize    media.Size
	VideoBitrate int64
	HasAudio     bool
	// Samples counts appended samples per track kind.
	Samples map[media.TrackKind]uint64
}

// Job is the single-shot result of one run.
type Job struct {
	id   string
	done chan struct{}

	artifact Artifact
	err      error
}

func newJob(id string) *Job {
	return &Job{id: id, done: make(chan struct{})}
}

// ID returns the job id, which is also the output file stem.
func (j *Job) ID() string { return j.id }

// Done is closed once the outcome is known.
func (j *Job) Done() <-chan struct{} { return j.done }

// Result returns the outcome. It must only be called after Done is closed.
func (j *Job) Result() (Artifact, error) {
	<-j.done
	return j.artifact, j.err
}

// Wait blocks until the job completes or ctx ends. A ctx error does not
// stop the job; cancel the context passed to Start for that.
func (j *Job) Wait(ctx context.Context) (Artifact, error) {
	select {
	case <-j.done:
		return j.artifact, j.err
	case <-ctx.Done():
		return Artifact{}, ctx.Err()
	}
}

// complete publishes the outcome. It is called exactly once.
func (j *Job) complete(a Artifact, err error) {
	j.artifact = a
	j.err = err
	close(j.done)
}
