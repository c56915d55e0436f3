// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stub

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/vcompress/internal/media"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var video = media.Track{Kind: media.KindVideo, NaturalSize: media.Size{Width: 64, Height: 48}, NominalFrameRate: 25}

func TestSource_Samples(t *testing.T) {
	e := New()
	e.AddAsset("in.mov", Asset{
		Tracks:    []media.Track{video},
		Samples:   map[media.TrackKind]int{media.KindVideo: 3},
		FailAfter: map[media.TrackKind]int{},
	})
	ctx := context.Background()

	_, err := e.OpenSource(ctx, "missing.mov")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	src, err := e.OpenSource(ctx, "in.mov")
	require.NoError(t, err)
	assert.Len(t, src.Tracks(media.KindVideo), 1)
	assert.Empty(t, src.Tracks(media.KindAudio))

	out, err := src.OpenOutput(video, media.VideoFormat(video))
	require.NoError(t, err)
	_, err = out.NextSample(ctx)
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, src.StartReading(ctx))
	for i := range 3 {
		s, err := out.NextSample(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), s.Seq)
	}
	_, err = out.NextSample(ctx)
	assert.ErrorIs(t, err, media.ErrEndOfStream)

	src.Cancel()
	assert.True(t, e.Sources()[0].Cancelled())
}

func TestSource_FailAfter(t *testing.T) {
	e := New()
	e.AddAsset("in.mov", Asset{
		Tracks:    []media.Track{video},
		Samples:   map[media.TrackKind]int{media.KindVideo: 10},
		FailAfter: map[media.TrackKind]int{media.KindVideo: 1},
	})
	ctx := context.Background()
	src, err := e.OpenSource(ctx, "in.mov")
	require.NoError(t, err)
	out, err := src.OpenOutput(video, media.VideoFormat(video))
	require.NoError(t, err)
	require.NoError(t, src.StartReading(ctx))

	_, err = out.NextSample(ctx)
	require.NoError(t, err)
	_, err = out.NextSample(ctx)
	assert.ErrorContains(t, err, "corrupt frame")
}

func TestSink_OverrunAndManifest(t *testing.T) {
	e := New()
	e.Capacity = 1
	path := filepath.Join(t.TempDir(), "out.mp4")
	ctx := context.Background()

	sink, err := e.OpenSink(ctx, path, media.ContainerMP4)
	require.NoError(t, err)
	in, err := sink.AddInput(media.InputSpec{Kind: media.KindVideo, Rotation: 90})
	require.NoError(t, err)

	require.NoError(t, in.Append(media.SampleUnit{Kind: media.KindVideo}))
	assert.False(t, in.IsReady())
	assert.ErrorIs(t, in.Append(media.SampleUnit{Kind: media.KindVideo, Seq: 1}), ErrOverrun)
	assert.Equal(t, 1, e.Sinks()[0].Input(media.KindVideo).Overruns())

	require.NoError(t, sink.BeginSession(ctx, 0))
	require.NoError(t, in.MarkFinished())
	require.NoError(t, sink.Finalize(ctx))

	assert.True(t, e.Sinks()[0].Finalized())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "container=mp4")
	assert.Contains(t, string(data), "video samples=1")
	assert.Contains(t, string(data), "rotation=90")
}

func TestSink_Abort(t *testing.T) {
	e := New()
	ctx := context.Background()
	sink, err := e.OpenSink(ctx, filepath.Join(t.TempDir(), "out.mp4"), media.ContainerMP4)
	require.NoError(t, err)
	in, err := sink.AddInput(media.InputSpec{Kind: media.KindAudio})
	require.NoError(t, err)
	require.NoError(t, sink.BeginSession(ctx, 0))

	sink.Abort()
	sink.Abort()

	assert.ErrorIs(t, in.Append(media.SampleUnit{Kind: media.KindAudio}), ErrAborted)
	assert.ErrorIs(t, sink.Finalize(ctx), ErrAborted)
	assert.True(t, e.Sinks()[0].Aborted())
}

func TestSink_AbortWakesFullInput(t *testing.T) {
	e := New()
	e.Capacity = 1
	sink, err := e.OpenSink(context.Background(), filepath.Join(t.TempDir(), "out.mp4"), media.ContainerMP4)
	require.NoError(t, err)
	in, err := sink.AddInput(media.InputSpec{Kind: media.KindVideo})
	require.NoError(t, err)

	require.NoError(t, in.Append(media.SampleUnit{Kind: media.KindVideo}))
	require.False(t, in.IsReady())

	sink.Abort()

	select {
	case <-in.Ready():
	case <-time.After(time.Second):
		t.Fatal("abort did not signal Ready")
	}
	assert.True(t, in.IsReady())
	assert.ErrorIs(t, in.Append(media.SampleUnit{Kind: media.KindVideo}), ErrAborted)
}

func TestEngine_InjectedErrors(t *testing.T) {
	boom := errors.New("boom")
	e := New()
	e.OpenSourceErr = boom
	e.OpenSinkErr = boom
	_, err := e.OpenSource(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	_, err = e.OpenSink(context.Background(), "x.mp4", media.ContainerMP4)
	assert.ErrorIs(t, err, boom)
}
