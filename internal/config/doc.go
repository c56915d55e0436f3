// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for vcompress.
//
// Configuration is layered with precedence ENV > YAML file > Default():
// the compression policy (CompressionConfig), the external engine binaries,
// batch/watch behaviour, logging and telemetry.
package config
