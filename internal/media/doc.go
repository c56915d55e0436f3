// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package media defines the data model shared by the compression pipeline:
// tracks, sample units, and the contracts of the external decode (Source)
// and encode (Sink) engines the pipeline drives.
//
// The pipeline never implements codec or container internals; it configures
// an engine through these interfaces and moves SampleUnits between them.
package media
