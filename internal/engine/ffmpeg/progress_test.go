// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Consume(t *testing.T) {
	out := strings.Join([]string{
		"frame=120",
		"fps=59.9",
		"total_size=524336",
		"out_time_us=4000000",
		"speed=2.01x",
		"progress=continue",
		"frame=240",
		"total_size=1048624",
		"out_time_ms=8000000",
		"speed=2.00x",
		"progress=end",
		"",
	}, "\n")

	var p Progress
	var blocks []ProgressSnapshot
	p.Consume(strings.NewReader(out), func(s ProgressSnapshot) { blocks = append(blocks, s) })

	assert.Len(t, blocks, 2)
	assert.False(t, blocks[0].Ended)
	assert.Equal(t, int64(120), blocks[0].Frame)
	assert.Equal(t, 4*time.Second, blocks[0].OutTime)

	s := p.Snapshot()
	assert.True(t, s.Ended)
	assert.Equal(t, int64(240), s.Frame)
	assert.Equal(t, int64(1048624), s.TotalSize)
	assert.Equal(t, 8*time.Second, s.OutTime)
	assert.Equal(t, "2.00x", s.Speed)
}

func TestProgress_IgnoresGarbage(t *testing.T) {
	var p Progress
	p.ParseLine("no separator")
	p.ParseLine("out_time_us=N/A")
	p.ParseLine("frame=abc")
	assert.Equal(t, ProgressSnapshot{}, p.Snapshot())
}
