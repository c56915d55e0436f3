// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ManuGH/vcompress/internal/media"
	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence:
// defaults < file < environment.
type Loader struct {
	configPath string
	version    string

	consumed map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath skips
// the file layer.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath: configPath,
		version:    version,
		consumed:   make(map[string]struct{}),
	}
}

// Load builds the effective configuration and validates it.
func (l *Loader) Load() (AppConfig, error) {
	cfg := DefaultAppConfig()
	cfg.Version = l.version

	if l.configPath != "" {
		fileCfg, err := l.loadFile(l.configPath)
		if err != nil {
			return AppConfig{}, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.mergeEnvConfig(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// ConsumedEnvKeys returns the environment keys that overrode a value during
// the last Load, sorted.
func (l *Loader) ConsumedEnvKeys() []string {
	keys := make([]string, 0, len(l.consumed))
	for k := range l.consumed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// loadFile parses a YAML file strictly: unknown keys and multiple documents
// are rejected, an empty file yields the zero FileConfig.
func (l *Loader) loadFile(path string) (*FileConfig, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("%w: %q (want .yaml or .yml)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- the config path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return &fc, nil
		}
		if strings.Contains(err.Error(), "not found in type") {
			return nil, fmt.Errorf("%w: %v", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: multiple YAML documents are not supported", path)
	}
	return &fc, nil
}

// mergeFileConfig applies values present in the file on top of cfg.
func mergeFileConfig(dst *AppConfig, src *FileConfig) error {
	if src == nil {
		return nil
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogService != "" {
		dst.LogService = src.LogService
	}

	if c := src.Compression; c != nil {
		cc := &dst.Compression
		if c.Resolution != nil {
			r, err := ParseResolution(*c.Resolution)
			if err != nil {
				return err
			}
			cc.Resolution = &r
		}
		setString(&cc.VideoCodec, c.VideoCodec)
		setInt64(&cc.VideoBitrate, c.VideoBitrate)
		setInt(&cc.VideoMaxKeyFrameInterval, c.VideoMaxKeyFrameInterval)
		if c.VideoFramerate != nil {
			cc.VideoFramerate = *c.VideoFramerate
		}
		setString(&cc.VideoProfileLevel, c.VideoProfileLevel)
		if c.VideoSettings.Len() > 0 {
			cc.VideoSettings = c.VideoSettings.Clone()
		}
		setString(&cc.AudioFormat, c.AudioFormat)
		setInt(&cc.AudioSampleRate, c.AudioSampleRate)
		setInt64(&cc.AudioBitrate, c.AudioBitrate)
		setInt(&cc.AudioChannels, c.AudioChannels)
		setString(&cc.AudioChannelLayout, c.AudioChannelLayout)
		if c.AudioSettings.Len() > 0 {
			cc.AudioSettings = c.AudioSettings.Clone()
		}
		if c.Container != nil {
			cc.Container = media.ParseContainer(*c.Container)
		}
		setString(&cc.OutputDir, c.OutputDir)
	}

	if e := src.Engine; e != nil {
		setString(&dst.Engine.FFmpegBin, e.FFmpegBin)
		setString(&dst.Engine.FFprobeBin, e.FFprobeBin)
		setInt(&dst.Engine.QueueDepth, e.QueueDepth)
		if e.KillGrace != nil {
			dst.Engine.KillGrace = *e.KillGrace
		}
	}

	if b := src.Batch; b != nil {
		setInt(&dst.Batch.Jobs, b.Jobs)
		setString(&dst.Batch.ReportPath, b.ReportPath)
	}

	if w := src.Watch; w != nil {
		if w.Settle != nil {
			dst.Watch.Settle = *w.Settle
		}
		if len(w.Extensions) > 0 {
			dst.Watch.Extensions = append([]string(nil), w.Extensions...)
		}
	}

	if t := src.Telemetry; t != nil {
		if t.Enabled != nil {
			dst.Telemetry.Enabled = *t.Enabled
		}
		setString(&dst.Telemetry.ExporterType, t.ExporterType)
		setString(&dst.Telemetry.Endpoint, t.Endpoint)
		if t.SamplingRate != nil {
			dst.Telemetry.SamplingRate = *t.SamplingRate
		}
		setString(&dst.Telemetry.Environment, t.Environment)
	}

	if m := src.Metrics; m != nil {
		setString(&dst.Metrics.TextfilePath, m.TextfilePath)
	}
	return nil
}

// mergeEnvConfig applies VCOMPRESS_* overrides.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) error {
	cfg.LogLevel = l.envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogService = l.envString("LOG_SERVICE", cfg.LogService)

	cc := &cfg.Compression
	if raw := l.envString("RESOLUTION", ""); raw != "" {
		r, err := ParseResolution(raw)
		if err != nil {
			return fmt.Errorf("%sRESOLUTION: %w", EnvPrefix, err)
		}
		cc.Resolution = &r
	}
	cc.VideoCodec = l.envString("VIDEO_CODEC", cc.VideoCodec)
	cc.VideoBitrate = l.envInt64("VIDEO_BITRATE", cc.VideoBitrate)
	cc.VideoMaxKeyFrameInterval = l.envInt("VIDEO_KEYFRAME_INTERVAL", cc.VideoMaxKeyFrameInterval)
	cc.VideoFramerate = l.envFloat("VIDEO_FRAMERATE", cc.VideoFramerate)
	cc.VideoProfileLevel = l.envString("VIDEO_PROFILE_LEVEL", cc.VideoProfileLevel)
	cc.AudioFormat = l.envString("AUDIO_FORMAT", cc.AudioFormat)
	cc.AudioSampleRate = l.envInt("AUDIO_SAMPLE_RATE", cc.AudioSampleRate)
	cc.AudioBitrate = l.envInt64("AUDIO_BITRATE", cc.AudioBitrate)
	cc.AudioChannels = l.envInt("AUDIO_CHANNELS", cc.AudioChannels)
	cc.AudioChannelLayout = l.envString("AUDIO_CHANNEL_LAYOUT", cc.AudioChannelLayout)
	if raw := l.envString("CONTAINER", ""); raw != "" {
		cc.Container = media.ParseContainer(raw)
	}
	cc.OutputDir = l.envString("OUTPUT_DIR", cc.OutputDir)

	cfg.Engine.FFmpegBin = l.envString("FFMPEG_BIN", cfg.Engine.FFmpegBin)
	cfg.Engine.FFprobeBin = l.envString("FFPROBE_BIN", cfg.Engine.FFprobeBin)
	cfg.Engine.QueueDepth = l.envInt("ENGINE_QUEUE_DEPTH", cfg.Engine.QueueDepth)
	cfg.Engine.KillGrace = l.envDuration("ENGINE_KILL_GRACE", cfg.Engine.KillGrace)

	cfg.Batch.Jobs = l.envInt("BATCH_JOBS", cfg.Batch.Jobs)
	cfg.Batch.ReportPath = l.envString("BATCH_REPORT", cfg.Batch.ReportPath)
	cfg.Watch.Settle = l.envDuration("WATCH_SETTLE", cfg.Watch.Settle)

	cfg.Telemetry.Enabled = l.envBool("TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.ExporterType = l.envString("TELEMETRY_EXPORTER", cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = l.envString("TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	cfg.Metrics.TextfilePath = l.envString("METRICS_TEXTFILE", cfg.Metrics.TextfilePath)
	return nil
}

func (l *Loader) track(key string) string {
	full := EnvPrefix + key
	if _, ok := os.LookupEnv(full); ok {
		l.consumed[full] = struct{}{}
	}
	return full
}

func (l *Loader) envString(key, def string) string { return ParseString(l.track(key), def) }
func (l *Loader) envInt(key string, def int) int   { return ParseInt(l.track(key), def) }
func (l *Loader) envInt64(key string, def int64) int64 {
	return ParseInt64(l.track(key), def)
}
func (l *Loader) envFloat(key string, def float64) float64 { return ParseFloat(l.track(key), def) }
func (l *Loader) envBool(key string, def bool) bool        { return ParseBool(l.track(key), def) }
func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	return ParseDuration(l.track(key), def)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}
