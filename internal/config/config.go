// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/vcompress/internal/media"
)

// Compression defaults.
const (
	DefaultVideoCodec               = "h264"
	DefaultVideoBitrate       int64 = 2_000_000
	DefaultVideoMaxKeyFrame         = 10
	DefaultVideoFramerate           = 24.0
	DefaultVideoProfileLevel        = "high@4.1"
	DefaultAudioFormat              = "aac"
	DefaultAudioSampleRate          = 44_100
	DefaultAudioBitrate       int64 = 128_000
	DefaultAudioChannels            = 2
	DefaultAudioChannelLayout       = "stereo"
	DefaultContainer                = media.ContainerMP4

	// DefaultOutputComponent is the temp sub-directory used when no output
	// directory is configured.
	DefaultOutputComponent = "CompressedVideo"
)

// CompressionConfig is the caller's target policy for one compression run.
// It is read-only to the pipeline.
type CompressionConfig struct {
	// Resolution is the resize policy; nil keeps the original size.
	Resolution *Resolution `yaml:"resolution,omitempty"`

	VideoCodec string `yaml:"videoCodec"`
	// VideoBitrate is the target average bitrate in bps. It is ignored when
	// the source bitrate is lower.
	VideoBitrate int64 `yaml:"videoBitrate"`
	// VideoMaxKeyFrameInterval is the maximum distance between keyframes in
	// frames; 1 makes every frame a keyframe.
	VideoMaxKeyFrameInterval int `yaml:"videoMaxKeyFrameInterval"`
	// VideoFramerate is the expected frame rate of the output.
	VideoFramerate float64 `yaml:"videoFramerate"`
	// VideoProfileLevel is "profile@level", e.g. "high@4.1".
	VideoProfileLevel string `yaml:"videoProfileLevel"`
	// VideoSettings override resolved video parameters (last write wins).
	VideoSettings media.Settings `yaml:"videoSettings,omitempty"`

	AudioFormat        string `yaml:"audioFormat"`
	AudioSampleRate    int    `yaml:"audioSampleRate"`
	AudioBitrate       int64  `yaml:"audioBitrate"`
	AudioChannels      int    `yaml:"audioChannels"`
	AudioChannelLayout string `yaml:"audioChannelLayout"`
	// AudioSettings override resolved audio parameters (last write wins).
	AudioSettings media.Settings `yaml:"audioSettings,omitempty"`

	Container media.Container `yaml:"container"`
	// OutputDir receives the compressed file. Empty means a fresh temp dir.
	OutputDir string `yaml:"outputDir,omitempty"`
}

// Default returns a CompressionConfig populated with the documented defaults.
// Every call returns an independent value.
func Default() CompressionConfig {
	return CompressionConfig{
		VideoCodec:               DefaultVideoCodec,
		VideoBitrate:             DefaultVideoBitrate,
		VideoMaxKeyFrameInterval: DefaultVideoMaxKeyFrame,
		VideoFramerate:           DefaultVideoFramerate,
		VideoProfileLevel:        DefaultVideoProfileLevel,
		AudioFormat:              DefaultAudioFormat,
		AudioSampleRate:          DefaultAudioSampleRate,
		AudioBitrate:             DefaultAudioBitrate,
		AudioChannels:            DefaultAudioChannels,
		AudioChannelLayout:       DefaultAudioChannelLayout,
		Container:                DefaultContainer,
	}
}

// WithResolution returns a copy of c using the given resize policy.
func (c CompressionConfig) WithResolution(r Resolution) CompressionConfig {
	c.Resolution = &r
	return c
}

// EngineConfig locates and tunes the external codec engine.
type EngineConfig struct {
	FFmpegBin  string `yaml:"ffmpegBin"`
	FFprobeBin string `yaml:"ffprobeBin,omitempty"`
	// QueueDepth bounds the samples buffered per sink input before the
	// input reports not-ready.
	QueueDepth int `yaml:"queueDepth"`
	// KillGrace is the time between SIGTERM and SIGKILL on abort.
	KillGrace time.Duration `yaml:"killGrace"`
}

// BatchConfig controls multi-file runs.
type BatchConfig struct {
	Jobs       int    `yaml:"jobs"`
	ReportPath string `yaml:"reportPath,omitempty"`
}

// WatchConfig controls watch-folder runs.
type WatchConfig struct {
	// Settle is how long a file must stay unchanged before it is compressed.
	Settle     time.Duration `yaml:"settle"`
	Extensions []string      `yaml:"extensions"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint,omitempty"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment,omitempty"`
}

// MetricsConfig controls metric export. Metrics are written in the
// Prometheus text format to a file for a node_exporter textfile collector.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath,omitempty"`
}

// AppConfig is the complete effective configuration.
type AppConfig struct {
	Version    string `yaml:"-"`
	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	Compression CompressionConfig `yaml:"compression"`
	Engine      EngineConfig      `yaml:"engine"`
	Batch       BatchConfig       `yaml:"batch"`
	Watch       WatchConfig       `yaml:"watch"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// DefaultAppConfig returns the application defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		LogLevel:    "info",
		LogService:  "vcompress",
		Compression: Default(),
		Engine: EngineConfig{
			FFmpegBin:  "ffmpeg",
			QueueDepth: 8,
			KillGrace:  5 * time.Second,
		},
		Batch: BatchConfig{Jobs: 2},
		Watch: WatchConfig{
			Settle:     2 * time.Second,
			Extensions: []string{".mp4", ".mov", ".m4v", ".mkv", ".webm", ".avi", ".3gp"},
		},
		Telemetry: TelemetryConfig{
			ExporterType: "grpc",
			SamplingRate: 1.0,
			Environment:  "development",
		},
	}
}
