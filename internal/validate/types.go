// SPDX-License-Identifier: MIT
package validate

import (
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// LogLevel is a zerolog level name accepted in configuration.
type LogLevel string

// ErrInvalidLogLevel is returned by ParseLogLevel for unknown names.
var ErrInvalidLogLevel = &Error{
	Field:   "logLevel",
	Message: "invalid log level (must be one of " + strings.Join(logLevelNames(), ", ") + ")",
}

// logLevels lists the levels in increasing severity; fatal and panic are
// not configurable because they would silence ordinary failures.
var logLevels = []zerolog.Level{
	zerolog.TraceLevel,
	zerolog.DebugLevel,
	zerolog.InfoLevel,
	zerolog.WarnLevel,
	zerolog.ErrorLevel,
	zerolog.Disabled,
}

func logLevelNames() []string {
	names := make([]string, len(logLevels))
	for i, l := range logLevels {
		names[i] = l.String()
	}
	return names
}

// IsValid reports whether l names a configurable level.
func (l LogLevel) IsValid() bool {
	return slices.Contains(logLevelNames(), string(l))
}

func (l LogLevel) String() string {
	return string(l)
}

// ParseLogLevel parses a level name case-insensitively.
func ParseLogLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", ErrInvalidLogLevel
	}
	return level, nil
}

// LogLevel validates that value is a configurable log level.
func (v *Validator) LogLevel(field, value string) {
	if _, err := ParseLogLevel(value); err != nil {
		v.AddError(field, ErrInvalidLogLevel.Message, value)
	}
}
