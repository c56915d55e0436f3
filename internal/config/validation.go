// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"strings"

	"github.com/ManuGH/vcompress/internal/validate"
)

// Validate checks the effective configuration. The output directory is not
// checked here: the pipeline reports it with its own typed error.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("logLevel", cfg.LogLevel)

	validateCompression(v, "compression", cfg.Compression)

	v.NotEmpty("engine.ffmpegBin", cfg.Engine.FFmpegBin)
	v.Range("engine.queueDepth", cfg.Engine.QueueDepth, 1, 1024)
	v.NonNegative("engine.killGrace", int64(cfg.Engine.KillGrace))

	v.Range("batch.jobs", cfg.Batch.Jobs, 1, 64)
	v.NonNegative("watch.settle", int64(cfg.Watch.Settle))
	for i, ext := range cfg.Watch.Extensions {
		if !strings.HasPrefix(ext, ".") {
			v.AddError(fmt.Sprintf("watch.extensions[%d]", i), "extension must start with '.'", ext)
		}
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.ExporterType, []string{"grpc", "http"})
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.RangeFloat("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}

// ValidateCompression checks a standalone CompressionConfig.
func ValidateCompression(c CompressionConfig) error {
	v := validate.New()
	validateCompression(v, "compression", c)
	return v.Err()
}

func validateCompression(v *validate.Validator, prefix string, c CompressionConfig) {
	field := func(name string) string { return prefix + "." + name }

	if c.Resolution != nil && c.Resolution.Preset() != PresetCustom {
		if _, ok := presetSizes[c.Resolution.Preset()]; !ok {
			v.AddError(field("resolution"), fmt.Sprintf("unknown preset, want one of %s", presetList()), c.Resolution.String())
		}
	}
	v.NotEmpty(field("videoCodec"), c.VideoCodec)
	v.Positive(field("videoBitrate"), c.VideoBitrate)
	v.Positive(field("videoMaxKeyFrameInterval"), int64(c.VideoMaxKeyFrameInterval))
	v.RangeFloat(field("videoFramerate"), c.VideoFramerate, 1, 240)
	if c.VideoProfileLevel != "" {
		v.Custom(field("videoProfileLevel"), c.VideoProfileLevel, func(val any) error {
			_, _, err := SplitProfileLevel(val.(string))
			return err
		})
	}

	v.NotEmpty(field("audioFormat"), c.AudioFormat)
	v.Range(field("audioSampleRate"), c.AudioSampleRate, 8_000, 192_000)
	v.Positive(field("audioBitrate"), c.AudioBitrate)
	v.Range(field("audioChannels"), c.AudioChannels, 1, 8)

	if !c.Container.Known() {
		v.AddError(field("container"), "unsupported container", string(c.Container))
	}
}

// SplitProfileLevel splits "high@4.1" into ("high", "4.1"). A value without
// "@" is a profile with no level constraint.
func SplitProfileLevel(s string) (profile, level string, err error) {
	s = strings.TrimSpace(s)
	profile, level, _ = strings.Cut(s, "@")
	if profile == "" {
		return "", "", fmt.Errorf("profile missing in %q", s)
	}
	if strings.EqualFold(level, "auto") {
		level = ""
	}
	return strings.ToLower(profile), level, nil
}
