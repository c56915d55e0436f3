// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNoVideoTrack is returned when the source has no video track.
	ErrNoVideoTrack = errors.New("no video track")
	// ErrOutputPathNotValid is returned when the output directory is missing
	// or not a directory.
	ErrOutputPathNotValid = errors.New("output path not valid")
	// ErrCompressionFailed wraps any source, sink or codec failure.
	ErrCompressionFailed = errors.New("compression failed")
)

// Stage names the step of a run that failed.
type Stage string

const (
	StageOpenSource   Stage = "open_source"
	StageOpenSink     Stage = "open_sink"
	StageOpenOutput   Stage = "open_output"
	StageAddInput     Stage = "add_input"
	StageStartReading Stage = "start_reading"
	StageBeginSession Stage = "begin_session"
	StagePumpVideo    Stage = "pump_video"
	StagePumpAudio    Stage = "pump_audio"
	StageFinalize     Stage = "finalize"
)

// OutputPathError reports an unusable output directory.
// errors.Is(err, ErrOutputPathNotValid) holds for it.
type OutputPathError struct {
	Path string
	Err  error
}

func (e *OutputPathError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrOutputPathNotValid, e.Path, e.Err)
}

func (e *OutputPathError) Unwrap() []error {
	return []error{ErrOutputPathNotValid, e.Err}
}

// CompressionError reports an engine failure and the stage it happened in.
// errors.Is(err, ErrCompressionFailed) holds for it.
type CompressionError struct {
	Stage Stage
	Err   error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrCompressionFailed, e.Stage, e.Err)
}

func (e *CompressionError) Unwrap() []error {
	return []error{ErrCompressionFailed, e.Err}
}

func failed(stage Stage, err error) error {
	return &CompressionError{Stage: stage, Err: err}
}

// Reason classifies err for metrics and reports: the stage for compression
// failures, a short name for structural errors.
func Reason(err error) string {
	var ce *CompressionError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoVideoTrack):
		return "no_video_track"
	case errors.Is(err, ErrOutputPathNotValid):
		return "output_path_not_valid"
	case errors.As(err, &ce):
		return string(ce.Stage)
	default:
		return "unknown"
	}
}
