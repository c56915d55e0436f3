// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldJobID   = "job_id"
	FieldTraceID = "trace_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldTrack     = "track"
	FieldState     = "state"
	FieldSamples   = "samples"

	// Media fields
	FieldCodec       = "codec"
	FieldResolution  = "resolution"
	FieldFPS         = "fps"
	FieldBitrate     = "bitrate"
	FieldMediaFormat = "media_format"
	FieldSampleRate  = "sample_rate"
	FieldChannels    = "channels"
	FieldSettings    = "settings"
	FieldContainer   = "container"

	// Path fields
	FieldPath       = "path"
	FieldInputPath  = "input_path"
	FieldOutputPath = "output_path"
	FieldSize       = "size"
)
