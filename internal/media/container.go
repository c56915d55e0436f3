// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package media

import "strings"

// Container identifies the output file type.
type Container string

const (
	ContainerMP4  Container = "mp4"
	ContainerMOV  Container = "mov"
	ContainerM4V  Container = "m4v"
	Container3GP  Container = "3gp"
	ContainerMKV  Container = "mkv"
	ContainerWebM Container = "webm"
)

// UnknownExtension is returned for container types without a known extension.
const UnknownExtension = "unknown"

type containerInfo struct {
	ext   string
	muxer string
}

var containers = map[Container]containerInfo{
	ContainerMP4:  {ext: "mp4", muxer: "mp4"},
	ContainerMOV:  {ext: "mov", muxer: "mov"},
	ContainerM4V:  {ext: "m4v", muxer: "ipod"},
	Container3GP:  {ext: "3gp", muxer: "3gp"},
	ContainerMKV:  {ext: "mkv", muxer: "matroska"},
	ContainerWebM: {ext: "webm", muxer: "webm"},
}

// Uniform type identifiers accepted as aliases.
var containerAliases = map[string]Container{
	"public.mpeg-4":             ContainerMP4,
	"com.apple.quicktime-movie": ContainerMOV,
	"com.apple.m4v-video":       ContainerM4V,
	"public.3gpp":               Container3GP,
	"quicktime":                 ContainerMOV,
	"matroska":                  ContainerMKV,
}

// ParseContainer normalises a container name or type identifier. Unknown
// names are returned as-is so that Extension reports "unknown".
func ParseContainer(s string) Container {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := containerAliases[s]; ok {
		return c
	}
	return Container(strings.TrimPrefix(s, "."))
}

// Extension returns the preferred file extension, or "unknown".
func (c Container) Extension() string {
	if info, ok := containers[ParseContainer(string(c))]; ok {
		return info.ext
	}
	return UnknownExtension
}

// Muxer returns the engine's muxer name for the container.
func (c Container) Muxer() string {
	if info, ok := containers[ParseContainer(string(c))]; ok {
		return info.muxer
	}
	return ""
}

// Known reports whether the container has a registered extension.
func (c Container) Known() bool {
	_, ok := containers[ParseContainer(string(c))]
	return ok
}
