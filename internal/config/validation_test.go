// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"testing"

	"github.com/ManuGH/vcompress/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"info", "WARN", "trace", "disabled"} {
		cfg := DefaultAppConfig()
		cfg.LogLevel = level
		assert.NoError(t, Validate(cfg), level)
	}

	cfg := DefaultAppConfig()
	cfg.LogLevel = "loud"
	err := Validate(cfg)
	require.Error(t, err)

	var verr validate.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Errors(), 1)
	assert.Equal(t, "logLevel", verr.Errors()[0].Field)
	assert.Equal(t, "loud", verr.Errors()[0].Value)
}
