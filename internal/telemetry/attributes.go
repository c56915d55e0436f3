// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used on compression spans.
const (
	InputPathKey  = "compress.input"
	OutputPathKey = "compress.output"
	ContainerKey  = "compress.container"
	JobIDKey      = "compress.job_id"

	VideoCodecKey      = "video.codec"
	VideoResolutionKey = "video.resolution"
	VideoBitrateKey    = "video.bitrate"
	SourceBitrateKey   = "video.source_bitrate"
	SourceSizeKey      = "video.source_resolution"

	AudioFormatKey  = "audio.format"
	AudioEnabledKey = "audio.enabled"

	TrackKey   = "track.kind"
	SamplesKey = "track.samples"

	ErrorTypeKey = "error.type"
)

// JobAttributes describes one compression run.
func JobAttributes(jobID, input, output, container string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(JobIDKey, jobID),
		attribute.String(InputPathKey, input),
		attribute.String(ContainerKey, container),
	}
	if output != "" {
		attrs = append(attrs, attribute.String(OutputPathKey, output))
	}
	return attrs
}

// VideoAttributes describes resolved video parameters against the source.
func VideoAttributes(codec, sourceSize, targetSize string, sourceBitrate, targetBitrate int64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(VideoCodecKey, codec),
		attribute.String(SourceSizeKey, sourceSize),
		attribute.String(VideoResolutionKey, targetSize),
		attribute.Int64(SourceBitrateKey, sourceBitrate),
		attribute.Int64(VideoBitrateKey, targetBitrate),
	}
}

// AudioAttributes reports whether an audio pump runs and its target format.
func AudioAttributes(enabled bool, format string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Bool(AudioEnabledKey, enabled)}
	if enabled {
		attrs = append(attrs, attribute.String(AudioFormatKey, format))
	}
	return attrs
}

// PumpAttributes describes a finished track pump.
func PumpAttributes(track string, samples uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(TrackKey, track),
		attribute.Int64(SamplesKey, int64(samples)),
	}
}

// ErrorAttributes classifies a failure.
func ErrorAttributes(errType string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(ErrorTypeKey, errType)}
}
