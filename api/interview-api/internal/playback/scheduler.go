// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_playback

import (
	"sync"
	"time"

	internal_audio "github.com/pathwiseai/api/interview-api/internal/audio"
	internal_codec "github.com/pathwiseai/api/interview-api/internal/audio/codec"
	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/pkg/commons"
)

// scheduled is one decoded segment placed on the output timeline.
type scheduled struct {
	handle internal_type.PlaybackHandle
	start  time.Duration
	end    time.Duration
}

// Scheduler keeps inbound agent speech gapless. Chunks arrive in bursts of
// arbitrary size and timing; each is decoded and scheduled at the nextStart
// cursor, which is clamped to the output clock so late chunks never play in
// the past, then advanced by the chunk's duration so consecutive chunks play
// back-to-back.
//
// The cursor only ever moves backward on Flush (barge-in), which stops every
// tracked segment and resets the cursor to "now".
type Scheduler struct {
	logger commons.Logger
	sink   internal_type.PlaybackSink

	wireCfg *internal_audio.Config

	mu        sync.Mutex
	nextStart time.Duration
	segments  []scheduled
}

// NewScheduler builds a scheduler over the given sink. wireCfg describes the
// inbound chunk format; chunks are resampled to the sink's native rate.
func NewScheduler(logger commons.Logger, sink internal_type.PlaybackSink, wireCfg *internal_audio.Config) *Scheduler {
	return &Scheduler{
		logger:    logger,
		sink:      sink,
		wireCfg:   wireCfg,
		nextStart: sink.Now(),
	}
}

// Reset moves the cursor to the output clock's current position. Called when
// a session goes active so stale cursor state never leaks across sessions.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextStart = s.sink.Now()
	s.pruneLocked(s.nextStart)
}

// Enqueue decodes one inbound chunk and schedules it after everything already
// queued. Returns a *FormatError for malformed payloads; the caller discards
// the chunk and the session continues.
func (s *Scheduler) Enqueue(chunk []byte) error {
	samples, err := internal_codec.Decode(chunk, s.wireCfg.Channels)
	if err != nil {
		return err
	}
	out := internal_codec.Resample(samples, s.wireCfg.SampleRate, s.sink.SampleRate())
	duration := internal_codec.Duration(len(out), s.sink.SampleRate())
	if duration == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.sink.Now()
	s.pruneLocked(now)

	// Late chunks must not play in the past.
	if s.nextStart < now {
		s.nextStart = now
	}

	handle, err := s.sink.PlayAt(out, s.nextStart)
	if err != nil {
		return &internal_type.DeviceError{Op: "schedule playback", Err: err}
	}

	s.segments = append(s.segments, scheduled{
		handle: handle,
		start:  s.nextStart,
		end:    s.nextStart + duration,
	})
	s.nextStart += duration
	return nil
}

// Flush stops every scheduled-or-playing segment and resets the cursor to
// "now". Called on barge-in: the agent's voice stops within one scheduling
// quantum and stale audio never resumes.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seg := range s.segments {
		seg.handle.Stop()
	}
	stopped := len(s.segments)
	s.segments = s.segments[:0]
	s.nextStart = s.sink.Now()

	if stopped > 0 {
		s.logger.Debugw("playback flushed", "segments_stopped", stopped)
	}
}

// Pending returns how many segments are scheduled or playing right now.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.sink.Now())
	return len(s.segments)
}

// NextStart exposes the cursor for observers and tests.
func (s *Scheduler) NextStart() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

// Close flushes unconditionally and releases the sink. Idempotent.
func (s *Scheduler) Close() {
	s.Flush()
	if err := s.sink.Close(); err != nil {
		s.logger.Warnw("failed to close playback sink", "error", err)
	}
}

// pruneLocked drops segments that have finished playing. Caller holds mu.
func (s *Scheduler) pruneLocked(now time.Duration) {
	kept := s.segments[:0]
	for _, seg := range s.segments {
		if seg.end > now {
			kept = append(kept, seg)
		}
	}
	s.segments = kept
}
