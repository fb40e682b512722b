// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_portaudio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/pkg/commons"
	"github.com/pathwiseai/pkg/utils"
)

// sinkFrameSize is the output callback quantum. Small enough that a flushed
// segment is silenced within ~21ms at 48kHz.
const sinkFrameSize = 1024

// segment is one piece of audio pinned to an absolute position on the output
// timeline, measured in samples since the stream opened.
type segment struct {
	samples []float32
	start   int64

	mu      sync.Mutex
	stopped bool
}

// Stop silences the segment from the next callback on. Safe to call from any
// goroutine and any number of times.
func (s *segment) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *segment) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// speakerSink is the PortAudio-backed PlaybackSink. The output clock is the
// count of samples the callback has written since Open, so Now() advances
// exactly as fast as the hardware consumes audio and never drifts against the
// scheduled timeline.
type speakerSink struct {
	logger commons.Logger
	rate   int

	mu       sync.Mutex
	stream   *portaudio.Stream
	opened   bool
	played   int64
	segments []*segment
}

// NewSpeakerSink opens the host's default output device at the given sample
// rate, mono.
func NewSpeakerSink(logger commons.Logger, sampleRate int) (internal_type.PlaybackSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", err)
	}

	s := &speakerSink{logger: logger, rate: sampleRate}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), sinkFrameSize, s.mix)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open default playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start playback stream: %w", err)
	}

	s.stream = stream
	s.opened = true
	logger.Infow("speaker sink opened", "sample_rate", sampleRate)
	return s, nil
}

func (s *speakerSink) SampleRate() int { return s.rate }

// Now reports the output clock: samples played since open, as a duration.
func (s *speakerSink) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.played) * time.Second / time.Duration(s.rate)
}

// PlayAt pins samples to an absolute start time on the output timeline. The
// samples slice is retained until the segment finishes or is stopped, so the
// caller must not reuse it.
func (s *speakerSink) PlayAt(samples []float32, start time.Duration) (internal_type.PlaybackHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return nil, fmt.Errorf("playback sink is closed")
	}

	seg := &segment{
		samples: samples,
		start:   int64(start) * int64(s.rate) / int64(time.Second),
	}
	s.segments = append(s.segments, seg)
	return seg, nil
}

// mix is the PortAudio output callback. It sums every live segment's overlap
// with the current output window and drops segments that are finished or
// stopped.
func (s *speakerSink) mix(out []float32) {
	for i := range out {
		out[i] = 0
	}

	s.mu.Lock()
	windowStart := s.played
	windowEnd := windowStart + int64(len(out))

	kept := s.segments[:0]
	for _, seg := range s.segments {
		if seg.isStopped() || seg.start+int64(len(seg.samples)) <= windowStart {
			continue
		}
		kept = append(kept, seg)

		from := max(seg.start, windowStart)
		to := min(seg.start+int64(len(seg.samples)), windowEnd)
		for pos := from; pos < to; pos++ {
			out[pos-windowStart] += seg.samples[pos-seg.start]
		}
	}
	s.segments = kept
	s.played = windowEnd
	s.mu.Unlock()

	// Overlaps are rare (only around a flush race) but clipping is audible.
	for i, v := range out {
		out[i] = float32(utils.Clamp(float64(v), -1, 1))
	}
}

// Close stops the stream and releases the device. Idempotent.
func (s *speakerSink) Close() error {
	s.mu.Lock()
	if !s.opened {
		s.mu.Unlock()
		return nil
	}
	s.opened = false
	s.segments = nil
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	if err := stream.Stop(); err != nil {
		s.logger.Warnw("failed to stop playback stream", "error", err)
	}
	if err := stream.Close(); err != nil {
		s.logger.Warnw("failed to close playback stream", "error", err)
	}
	return portaudio.Terminate()
}
