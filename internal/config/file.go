// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/vcompress/internal/media"
)

// FileConfig is the on-disk YAML shape. Pointer fields distinguish "unset"
// from an explicit zero so the file only overrides what it names.
type FileConfig struct {
	LogLevel   string `yaml:"logLevel,omitempty"`
	LogService string `yaml:"logService,omitempty"`

	Compression *CompressionFile `yaml:"compression,omitempty"`
	Engine      *EngineFile      `yaml:"engine,omitempty"`
	Batch       *BatchFile       `yaml:"batch,omitempty"`
	Watch       *WatchFile       `yaml:"watch,omitempty"`
	Telemetry   *TelemetryFile   `yaml:"telemetry,omitempty"`
	Metrics     *MetricsFile     `yaml:"metrics,omitempty"`
}

type CompressionFile struct {
	Resolution               *string        `yaml:"resolution,omitempty"`
	VideoCodec               string         `yaml:"videoCodec,omitempty"`
	VideoBitrate             *int64         `yaml:"videoBitrate,omitempty"`
	VideoMaxKeyFrameInterval *int           `yaml:"videoMaxKeyFrameInterval,omitempty"`
	VideoFramerate           *float64       `yaml:"videoFramerate,omitempty"`
	VideoProfileLevel        string         `yaml:"videoProfileLevel,omitempty"`
	VideoSettings            media.Settings `yaml:"videoSettings,omitempty"`
	AudioFormat              string         `yaml:"audioFormat,omitempty"`
	AudioSampleRate          *int           `yaml:"audioSampleRate,omitempty"`
	AudioBitrate             *int64         `yaml:"audioBitrate,omitempty"`
	AudioChannels            *int           `yaml:"audioChannels,omitempty"`
	AudioChannelLayout       string         `yaml:"audioChannelLayout,omitempty"`
	AudioSettings            media.Settings `yaml:"audioSettings,omitempty"`
	Container                *string        `yaml:"container,omitempty"`
	OutputDir                string         `yaml:"outputDir,omitempty"`
}

type EngineFile struct {
	FFmpegBin  string         `yaml:"ffmpegBin,omitempty"`
	FFprobeBin string         `yaml:"ffprobeBin,omitempty"`
	QueueDepth *int           `yaml:"queueDepth,omitempty"`
	KillGrace  *time.Duration `yaml:"killGrace,omitempty"`
}

type BatchFile struct {
	Jobs       *int   `yaml:"jobs,omitempty"`
	ReportPath string `yaml:"reportPath,omitempty"`
}

type WatchFile struct {
	Settle     *time.Duration `yaml:"settle,omitempty"`
	Extensions []string       `yaml:"extensions,omitempty"`
}

type TelemetryFile struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	ExporterType string   `yaml:"exporter,omitempty"`
	Endpoint     string   `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
	Environment  string   `yaml:"environment,omitempty"`
}

type MetricsFile struct {
	TextfilePath string `yaml:"textfilePath,omitempty"`
}
