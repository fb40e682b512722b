// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_type

import (
	"time"

	internal_audio "github.com/pathwiseai/api/interview-api/internal/audio"
)

// InputDevice is a microphone-equivalent capture source. Implementations
// should enable noise-suppression/echo-cancellation hints where the host
// audio API supports them.
type InputDevice interface {
	// Open acquires exclusive access to the device and begins delivering
	// fixed-size frames of normalized float32 samples to onFrame on a
	// periodic callback. Fails with a *DeviceError.
	Open(cfg *internal_audio.Config, frameSize int, onFrame func(samples []float32)) error

	// Close releases the device and cancels the frame callback. Idempotent;
	// no callback fires after Close returns.
	Close() error
}

// PlaybackHandle controls one scheduled audio segment.
type PlaybackHandle interface {
	// Stop silences the segment immediately, whether scheduled or playing.
	Stop()
}

// PlaybackSink is the output side: a speaker with a monotonic clock on
// which segments can be scheduled at absolute positions.
type PlaybackSink interface {
	// SampleRate returns the sink's native sample rate.
	SampleRate() int

	// Now returns the current position of the output clock. Monotonic,
	// starts at zero when the sink opens.
	Now() time.Duration

	// PlayAt schedules samples to start playing at the given clock
	// position. Positions in the past begin playing immediately.
	PlayAt(samples []float32, start time.Duration) (PlaybackHandle, error)

	// Close stops all playback and releases the device. Idempotent.
	Close() error
}
