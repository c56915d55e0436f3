// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vcompress/internal/media"
)

func TestNew_Defaults(t *testing.T) {
	e := New(Config{FFmpegBin: "/opt/ff/bin/ffmpeg"})
	assert.Equal(t, 8, e.cfg.QueueDepth)
	assert.Equal(t, 5*time.Second, e.cfg.KillGrace)
	assert.NotEmpty(t, e.cfg.FFprobeBin)
}

func TestSink_InputQueue(t *testing.T) {
	e := New(Config{QueueDepth: 2})
	sink, err := e.OpenSink(context.Background(), filepath.Join(t.TempDir(), "out.mp4"), media.ContainerMP4)
	require.NoError(t, err)
	defer sink.Abort()

	in, err := sink.AddInput(audioSpec())
	require.NoError(t, err)

	require.True(t, in.IsReady())
	require.NoError(t, in.Append(media.SampleUnit{Kind: media.KindAudio, Seq: 0}))
	require.NoError(t, in.Append(media.SampleUnit{Kind: media.KindAudio, Seq: 1}))
	assert.False(t, in.IsReady())
	assert.ErrorIs(t, in.Append(media.SampleUnit{Kind: media.KindAudio, Seq: 2}), ErrQueueFull)

	require.NoError(t, in.MarkFinished())
	require.NoError(t, in.MarkFinished())
	assert.ErrorIs(t, in.Append(media.SampleUnit{Kind: media.KindAudio}), ErrInputFinished)
}

func TestSink_AbortBeforeSession(t *testing.T) {
	e := New(Config{})
	sink, err := e.OpenSink(context.Background(), filepath.Join(t.TempDir(), "out.mp4"), media.ContainerMP4)
	require.NoError(t, err)
	in, err := sink.AddInput(videoSpec())
	require.NoError(t, err)

	sink.Abort()
	sink.Abort()

	assert.True(t, in.IsReady(), "aborted inputs report ready so Append surfaces the abort")
	assert.ErrorIs(t, in.Append(media.SampleUnit{Kind: media.KindVideo}), errCancelled)
	assert.ErrorIs(t, sink.BeginSession(context.Background(), 0), errCancelled)
	_, err = sink.AddInput(audioSpec())
	assert.ErrorIs(t, err, errCancelled)
}

func TestSink_AbortWakesFullInput(t *testing.T) {
	e := New(Config{QueueDepth: 1})
	sink, err := e.OpenSink(context.Background(), filepath.Join(t.TempDir(), "out.mp4"), media.ContainerMP4)
	require.NoError(t, err)
	in, err := sink.AddInput(audioSpec())
	require.NoError(t, err)

	require.NoError(t, in.Append(media.SampleUnit{Kind: media.KindAudio}))
	require.False(t, in.IsReady())

	sink.Abort()

	select {
	case <-in.Ready():
	case <-time.After(time.Second):
		t.Fatal("abort did not signal Ready")
	}
	assert.True(t, in.IsReady())
	assert.ErrorIs(t, in.Append(media.SampleUnit{Kind: media.KindAudio}), errCancelled)
}

func TestSink_Misuse(t *testing.T) {
	e := New(Config{})
	ctx := context.Background()

	_, err := e.OpenSink(ctx, "out.bin", media.ParseContainer("bin"))
	assert.ErrorContains(t, err, "unsupported container")

	sink, err := e.OpenSink(ctx, "out.mp4", media.ContainerMP4)
	require.NoError(t, err)
	defer sink.Abort()
	assert.ErrorContains(t, sink.BeginSession(ctx, 0), "no inputs")
	assert.ErrorContains(t, sink.BeginSession(ctx, time.Second), "only zero")
	assert.ErrorContains(t, sink.Finalize(ctx), "not started")
}

func TestSource_OpenOutputValidation(t *testing.T) {
	src := &Source{cfg: New(Config{}).cfg, input: "in.mp4"}
	video := media.Track{Kind: media.KindVideo, NaturalSize: media.Size{Width: 640, Height: 360}}

	_, err := src.OpenOutput(video, media.SampleFormat{PixelFormat: "rgb24", Size: video.NaturalSize})
	assert.ErrorContains(t, err, "pixel format")
	_, err = src.OpenOutput(media.Track{Kind: media.KindVideo}, media.SampleFormat{PixelFormat: "yuv420p"})
	assert.ErrorContains(t, err, "frame size")
	_, err = src.OpenOutput(media.Track{Kind: media.KindAudio}, media.SampleFormat{})
	assert.ErrorContains(t, err, "sample rate")

	out, err := src.OpenOutput(video, media.VideoFormat(video))
	require.NoError(t, err)
	_, err = out.NextSample(context.Background())
	assert.ErrorContains(t, err, "not started")

	src.Cancel()
	_, err = src.OpenOutput(video, media.VideoFormat(video))
	assert.ErrorIs(t, err, errCancelled)
}

func TestOutput_Timing(t *testing.T) {
	o := &output{track: media.Track{Kind: media.KindAudio}, format: media.DefaultAudioFormat(48000), seq: 3}
	pts, dur := o.timing(1024 * 4)
	assert.Equal(t, 64*time.Millisecond, pts)
	assert.Equal(t, 21333333*time.Nanosecond, dur)

	o = &output{track: media.Track{Kind: media.KindVideo}, format: media.SampleFormat{FrameRate: 25}, seq: 10}
	pts, dur = o.timing(0)
	assert.Equal(t, 400*time.Millisecond, pts)
	assert.Equal(t, 40*time.Millisecond, dur)
}

// TestEngine_RoundTrip decodes a generated clip and encodes it again using
// the installed ffmpeg.
func TestEngine_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("needs ffmpeg")
	}
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dir := t.TempDir()
	input := filepath.Join(dir, "in.mp4")
	gen := exec.CommandContext(ctx, bin, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc2=size=320x240:rate=25:duration=1",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=1",
		"-c:v", "libx264", "-c:a", "aac", "-shortest", input)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate clip: %v: %s", err, out)
	}

	e := New(Config{FFmpegBin: bin})
	src, err := e.OpenSource(ctx, input)
	require.NoError(t, err)
	defer src.Cancel()
	vt := src.Tracks(media.KindVideo)
	require.Len(t, vt, 1)

	output := filepath.Join(dir, "out.mp4")
	sink, err := e.OpenSink(ctx, output, media.ContainerMP4)
	require.NoError(t, err)

	spec := videoSpec()
	spec.Format = media.VideoFormat(vt[0])
	spec.Rotation = 0
	spec.Settings.Set(media.KeyWidth, int64(160))
	spec.Settings.Set(media.KeyHeight, int64(120))
	spec.Settings.Set("preset", "ultrafast")
	spec.Settings.Set(media.KeyProfileLevel, "high@auto")

	tout, err := src.OpenOutput(vt[0], spec.Format)
	require.NoError(t, err)
	tin, err := sink.AddInput(spec)
	require.NoError(t, err)

	require.NoError(t, src.StartReading(ctx))
	require.NoError(t, sink.BeginSession(ctx, 0))

	frames := 0
	for {
		s, err := tout.NextSample(ctx)
		if errors.Is(err, media.ErrEndOfStream) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, uint64(frames), s.Seq)
		for !tin.IsReady() {
			<-tin.Ready()
		}
		require.NoError(t, tin.Append(s))
		frames++
	}
	require.NoError(t, tin.MarkFinished())
	require.NoError(t, sink.Finalize(ctx))

	assert.Equal(t, 25, frames)
	fi, err := os.Stat(output)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}
