// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ManuGH/vcompress/internal/media"
)

// Source is a probed input with one decoder process per opened output.
type Source struct {
	cfg    Config
	input  string
	tracks []media.Track

	mu        sync.Mutex
	outputs   []*output
	started   bool
	cancelled bool
}

// Tracks implements media.Source.
func (s *Source) Tracks(kind media.TrackKind) []media.Track {
	var out []media.Track
	for _, t := range s.tracks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// OpenOutput implements media.Source.
func (s *Source) OpenOutput(track media.Track, format media.SampleFormat) (media.TrackOutput, error) {
	var unit int
	switch track.Kind {
	case media.KindVideo:
		if format.PixelFormat != "yuv420p" {
			return nil, fmt.Errorf("unsupported pixel format %q", format.PixelFormat)
		}
		if format.Size.IsZero() {
			return nil, errors.New("video output needs a frame size")
		}
		unit = videoFrameSize(format.Size)
	case media.KindAudio:
		if format.SampleRate <= 0 || format.Channels <= 0 {
			return nil, errors.New("audio output needs a sample rate and channel count")
		}
		unit = audioChunkFrames * pcmBytesPerFrame(format)
	default:
		return nil, fmt.Errorf("unsupported track kind %q", track.Kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return nil, errCancelled
	}
	if s.started {
		return nil, errors.New("OpenOutput after StartReading")
	}
	o := &output{
		track:  track,
		format: format,
		unit:   unit,
		args:   BuildDecodeArgs(s.input, track, format),
	}
	s.outputs = append(s.outputs, o)
	return o, nil
}

// StartReading implements media.Source. Decoders live until they reach end
// of stream, ctx ends or Cancel is called.
func (s *Source) StartReading(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return errCancelled
	}
	if s.started {
		return errors.New("reading already started")
	}
	s.started = true

	for _, o := range s.outputs {
		role := "decoder_" + string(o.track.Kind)
		p := newProcess(ctx, role, s.cfg.FFmpegBin, o.args, s.cfg.KillGrace)
		stdout, err := p.stdoutPipe()
		if err != nil {
			s.stopLocked()
			return err
		}
		if err := p.start(); err != nil {
			_ = stdout.Close()
			s.stopLocked()
			return err
		}
		o.proc = p
		o.stdout = stdout
		o.r = bufio.NewReaderSize(stdout, o.unit)
	}
	return nil
}

// Cancel implements media.Source.
func (s *Source) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
	s.stopLocked()
}

func (s *Source) stopLocked() {
	for _, o := range s.outputs {
		if o.proc != nil && o.proc.cmd.Process != nil {
			go o.proc.terminate()
		}
		if o.stdout != nil {
			o.close()
		}
	}
}

// output reads fixed-size units from one decoder's stdout.
type output struct {
	track  media.Track
	format media.SampleFormat
	unit   int
	args   []string

	proc   *process
	stdout *os.File
	r      *bufio.Reader
	seq    uint64
	eos    bool
	closed sync.Once
}

// NextSample implements media.TrackOutput.
func (o *output) NextSample(ctx context.Context) (media.SampleUnit, error) {
	if o.r == nil {
		return media.SampleUnit{}, errors.New("reading not started")
	}
	if err := ctx.Err(); err != nil {
		return media.SampleUnit{}, err
	}
	if o.eos {
		return media.SampleUnit{}, media.ErrEndOfStream
	}

	buf := make([]byte, o.unit)
	n, err := io.ReadFull(o.r, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		o.close()
		if werr := o.proc.wait(ctx); werr != nil {
			return media.SampleUnit{}, werr
		}
		o.eos = true
		if n == 0 {
			return media.SampleUnit{}, media.ErrEndOfStream
		}
		if o.track.Kind == media.KindVideo {
			return media.SampleUnit{}, fmt.Errorf("truncated video frame: %d of %d bytes", n, o.unit)
		}
		// The last audio chunk is usually short.
		buf = buf[:n-n%pcmBytesPerFrame(o.format)]
		if len(buf) == 0 {
			return media.SampleUnit{}, media.ErrEndOfStream
		}
	default:
		o.close()
		return media.SampleUnit{}, fmt.Errorf("read %s: %w", o.proc.role, err)
	}

	s := media.SampleUnit{Kind: o.track.Kind, Seq: o.seq, Data: buf}
	s.PTS, s.Duration = o.timing(len(buf))
	o.seq++
	return s, nil
}

func (o *output) close() {
	o.closed.Do(func() { _ = o.stdout.Close() })
}

func (o *output) timing(size int) (pts, dur time.Duration) {
	if o.track.Kind == media.KindVideo {
		dur = time.Duration(float64(time.Second) / frameRate(o.format.FrameRate))
		return time.Duration(o.seq) * dur, dur
	}
	rate := time.Duration(o.format.SampleRate)
	frames := time.Duration(size / pcmBytesPerFrame(o.format))
	pts = time.Duration(o.seq) * audioChunkFrames * time.Second / rate
	return pts, frames * time.Second / rate
}
