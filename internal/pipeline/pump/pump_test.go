// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pump

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ManuGH/vcompress/internal/engine/stub"
	"github.com/ManuGH/vcompress/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var videoTrack = media.Track{Kind: media.KindVideo, NaturalSize: media.Size{Width: 320, Height: 240}, NominalFrameRate: 25}

type harness struct {
	src  *stub.Source
	sink *stub.Sink
	out  media.TrackOutput
	in   *stub.Input
}

func newHarness(t *testing.T, eng *stub.Engine, asset stub.Asset) harness {
	t.Helper()
	ctx := context.Background()
	eng.AddAsset("in.mov", asset)

	src, err := eng.OpenSource(ctx, "in.mov")
	require.NoError(t, err)
	sink, err := eng.OpenSink(ctx, t.TempDir()+"/out.mp4", media.ContainerMP4)
	require.NoError(t, err)

	out, err := src.OpenOutput(videoTrack, media.VideoFormat(videoTrack))
	require.NoError(t, err)
	in, err := sink.AddInput(media.InputSpec{Kind: media.KindVideo})
	require.NoError(t, err)

	require.NoError(t, src.StartReading(ctx))
	require.NoError(t, sink.BeginSession(ctx, 0))

	h := harness{src: src.(*stub.Source), sink: sink.(*stub.Sink), out: out, in: in.(*stub.Input)}
	t.Cleanup(func() {
		h.sink.Abort()
		h.src.Cancel()
	})
	return h
}

func TestPump_PreservesOrderUnderBackpressure(t *testing.T) {
	eng := stub.New()
	eng.Capacity = 1
	eng.DrainDelay = time.Millisecond
	h := newHarness(t, eng, stub.Asset{
		Tracks:  []media.Track{videoTrack},
		Samples: map[media.TrackKind]int{media.KindVideo: 25},
	})

	p := New(media.KindVideo, h.out, h.in)
	assert.Equal(t, StateIdle, p.State())

	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, h.sink.Finalize(context.Background()))

	assert.Equal(t, StateFinished, p.State())
	assert.Equal(t, uint64(25), p.Samples())
	assert.Positive(t, p.Waits(), "capacity 1 with a slow consumer must block")
	assert.Zero(t, h.in.Overruns(), "append while not ready")
	assert.True(t, h.in.Finished())

	got := h.in.Received()
	require.Len(t, got, 25)
	for i, s := range got {
		assert.Equal(t, uint64(i), s.Seq)
	}
}

func TestPump_EmptyTrackFinishes(t *testing.T) {
	h := newHarness(t, stub.New(), stub.Asset{Tracks: []media.Track{videoTrack}})

	p := New(media.KindVideo, h.out, h.in)
	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, StateFinished, p.State())
	assert.True(t, h.in.Finished())
}

func TestPump_SourceFailure(t *testing.T) {
	h := newHarness(t, stub.New(), stub.Asset{
		Tracks:    []media.Track{videoTrack},
		Samples:   map[media.TrackKind]int{media.KindVideo: 10},
		FailAfter: map[media.TrackKind]int{media.KindVideo: 3},
	})

	p := New(media.KindVideo, h.out, h.in)
	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt frame")
	assert.Equal(t, StateFailed, p.State())
	assert.Equal(t, uint64(3), p.Samples())
	assert.False(t, h.in.Finished())
}

func TestPump_CancelWhileBlocked(t *testing.T) {
	h := newHarness(t, stub.New(), stub.Asset{
		Tracks: []media.Track{videoTrack},
		Block:  map[media.TrackKind]bool{media.KindVideo: true},
	})

	ctx, cancel := context.WithCancel(context.Background())
	p := New(media.KindVideo, h.out, h.in)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not stop on cancellation")
	}
	assert.Equal(t, StateFailed, p.State())
}

func TestPump_NotifiesExactlyOnce(t *testing.T) {
	h := newHarness(t, stub.New(), stub.Asset{
		Tracks:  []media.Track{videoTrack},
		Samples: map[media.TrackKind]int{media.KindVideo: 3},
	})

	p := New(media.KindVideo, h.out, h.in)
	select {
	case <-p.Done():
		t.Fatal("done before run")
	default:
	}
	assert.NoError(t, p.Err())

	require.NoError(t, p.Run(context.Background()))
	<-p.Done()
	assert.NoError(t, p.Err())

	assert.ErrorIs(t, p.Run(context.Background()), ErrAlreadyStarted)
	assert.Equal(t, StateFinished, p.State())
}

func TestPump_SinkAbortStopsPump(t *testing.T) {
	eng := stub.New()
	eng.Capacity = 1
	eng.DrainDelay = time.Hour
	h := newHarness(t, eng, stub.Asset{
		Tracks:  []media.Track{videoTrack},
		Samples: map[media.TrackKind]int{media.KindVideo: 100},
	})

	p := New(media.KindVideo, h.out, h.in)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return p.Waits() > 0 }, 2*time.Second, time.Millisecond)
	h.sink.Abort()
	h.src.Cancel()
	cancel()

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not stop after abort")
	}
}
