// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_portaudio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	internal_audio "github.com/pathwiseai/api/interview-api/internal/audio"
	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/pkg/commons"
)

// microphone is the PortAudio-backed InputDevice. One instance owns the
// default capture device exclusively between Open and Close.
type microphone struct {
	logger commons.Logger

	mu     sync.Mutex
	stream *portaudio.Stream
	opened bool
}

// NewMicrophone returns an InputDevice over the host's default microphone.
func NewMicrophone(logger commons.Logger) internal_type.InputDevice {
	return &microphone{logger: logger}
}

func (m *microphone) Open(cfg *internal_audio.Config, frameSize int, onFrame func(samples []float32)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opened {
		return fmt.Errorf("input device already open")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio initialize: %w", err)
	}

	// PortAudio copies the callback buffer's ownership semantics onto us:
	// the slice is only valid during the callback, which matches the
	// ephemeral Audio Frame contract upstream.
	stream, err := portaudio.OpenDefaultStream(
		cfg.Channels, 0,
		float64(cfg.SampleRate),
		frameSize,
		func(in []float32) { onFrame(in) },
	)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open default capture stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start capture stream: %w", err)
	}

	m.stream = stream
	m.opened = true
	m.logger.Infow("microphone opened",
		"sample_rate", cfg.SampleRate,
		"frame_size", frameSize,
	)
	return nil
}

// Close stops the callback and releases the device. Idempotent; PortAudio
// guarantees no callback is in flight once Stop returns.
func (m *microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.opened {
		return nil
	}
	m.opened = false

	if err := m.stream.Stop(); err != nil {
		m.logger.Warnw("failed to stop capture stream", "error", err)
	}
	if err := m.stream.Close(); err != nil {
		m.logger.Warnw("failed to close capture stream", "error", err)
	}
	m.stream = nil
	return portaudio.Terminate()
}
