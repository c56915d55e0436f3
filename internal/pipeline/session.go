// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package pipeline

import (
	"context"
	"sync"

	"github.com/ManuGH/vcompress/internal/fsutil"
	"github.com/ManuGH/vcompress/internal/media"
	"github.com/ManuGH/vcompress/internal/params"
	"github.com/ManuGH/vcompress/internal/pipeline/pump"
	"github.com/ManuGH/vcompress/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// session owns the source and sink of one run. Pumps borrow one
// output/input pair each.
type session struct {
	src       media.Source
	sink      media.Sink
	outPath   string
	container media.Container
	video     media.Track
	params    params.EncodeParameters

	pumps []*pump.Pump

	failOnce  sync.Once
	firstErr  error
	abortOnce sync.Once
}

// configure binds the video pump and, when both an audio track and audio
// parameters exist, the audio pump; then starts both engine sessions.
func (s *session) configure(ctx context.Context, audio *media.Track) error {
	if err := s.bind(s.video, media.VideoFormat(s.video), s.params.Video); err != nil {
		return err
	}

	if audio != nil && s.params.HasAudio() {
		if err := s.bind(*audio, media.DefaultAudioFormat(audio.SampleRate), *s.params.Audio); err != nil {
			return err
		}
	}

	if err := s.src.StartReading(ctx); err != nil {
		return failed(StageStartReading, err)
	}
	if err := s.sink.BeginSession(ctx, 0); err != nil {
		return failed(StageBeginSession, err)
	}
	return nil
}

func (s *session) bind(track media.Track, format media.SampleFormat, settings media.Settings) error {
	out, err := s.src.OpenOutput(track, format)
	if err != nil {
		return failed(StageOpenOutput, err)
	}
	spec := media.InputSpec{Kind: track.Kind, Settings: settings, Format: format}
	if track.Kind == media.KindVideo {
		spec.Rotation = track.Rotation
	}
	in, err := s.sink.AddInput(spec)
	if err != nil {
		return failed(StageAddInput, err)
	}
	s.pumps = append(s.pumps, pump.New(track.Kind, out, in))
	return nil
}

// run launches every pump, joins on all of them and finalizes. The first
// pump failure aborts the sink and cancels the source so the other pumps
// stop promptly; later failures are dropped.
func (s *session) run(ctx context.Context) (Artifact, error) {
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.pumps {
		g.Go(func() error {
			pctx, span := telemetry.StartSpan(gctx, "pump."+string(p.Kind()))
			err := p.Run(pctx)
			span.SetAttributes(telemetry.PumpAttributes(string(p.Kind()), p.Samples())...)
			telemetry.EndSpan(span, err)
			if err != nil {
				err = failed(pumpStage(p.Kind()), err)
				if s.recordFailure(err) {
					s.abort()
				}
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if s.firstErr != nil {
			return Artifact{}, s.firstErr
		}
		return Artifact{}, err
	}

	fctx, span := telemetry.StartSpan(ctx, "finalize")
	err := s.sink.Finalize(fctx)
	telemetry.EndSpan(span, err)
	if err != nil {
		s.abort()
		return Artifact{}, failed(StageFinalize, err)
	}
	s.src.Cancel()

	a := Artifact{
		Path:         s.outPath,
		Container:    s.container,
		Size:         fsutil.FileSize(s.outPath),
		VideoSize:    s.params.Size,
		VideoBitrate: s.params.Bitrate,
		HasAudio:     len(s.pumps) > 1,
		Samples:      make(map[media.TrackKind]uint64, len(s.pumps)),
	}
	for _, p := range s.pumps {
		a.Samples[p.Kind()] = p.Samples()
	}
	return a, nil
}

// recordFailure keeps the first pump failure and reports whether err was it.
// It runs before the abort, so failures caused by the teardown never win.
func (s *session) recordFailure(err error) bool {
	first := false
	s.failOnce.Do(func() {
		s.firstErr = err
		first = true
	})
	return first
}

// abort tears the session down once: sink first, then source.
func (s *session) abort() {
	s.abortOnce.Do(func() {
		s.sink.Abort()
		s.src.Cancel()
	})
}

func pumpStage(kind media.TrackKind) Stage {
	if kind == media.KindAudio {
		return StagePumpAudio
	}
	return StagePumpVideo
}
