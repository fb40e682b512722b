// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_capture

import (
	"sync"

	internal_audio "github.com/pathwiseai/api/interview-api/internal/audio"
	internal_codec "github.com/pathwiseai/api/interview-api/internal/audio/codec"
	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/pkg/commons"
	"github.com/pathwiseai/pkg/utils"
)

// DefaultFrameSize is the per-callback frame length in samples.
const DefaultFrameSize = 4096

// meterGain maps per-frame RMS onto the 0–100 loudness scale. Conversational
// speech sits around 0.05–0.3 RMS; full scale is reached well before digital
// full scale so the UI meter is readable.
const meterGain = 300

// meterWindow is how many recent frame levels the loudness meter averages
// over. Keeps the meter stable at 4096-sample frames.
const meterWindow = 4

// Pipeline owns the microphone: it pulls fixed-size frames from the input
// device, meters loudness, encodes frames to the wire format and hands them
// to the transport. Frame sends are fire-and-forget; a dropped frame never
// aborts the session.
//
// While muted, frames are still metered but not transmitted.
type Pipeline struct {
	logger    commons.Logger
	device    internal_type.InputDevice
	transport internal_type.Transport

	captureCfg *internal_audio.Config
	wireCfg    *internal_audio.Config
	frameSize  int

	mu      sync.Mutex
	running bool
	muted   bool
	levels  []float32
}

// NewPipeline wires a capture pipeline over the given device and transport.
// Frames flow device → codec → transport once Start is called.
func NewPipeline(
	logger commons.Logger,
	device internal_type.InputDevice,
	transport internal_type.Transport,
	captureCfg *internal_audio.Config,
	wireCfg *internal_audio.Config,
	frameSize int,
) *Pipeline {
	if frameSize <= 0 {
		frameSize = DefaultFrameSize
	}
	return &Pipeline{
		logger:     logger,
		device:     device,
		transport:  transport,
		captureCfg: captureCfg,
		wireCfg:    wireCfg,
		frameSize:  frameSize,
	}
}

// Start acquires the input device and begins the frame callback. Fails with
// a *DeviceError when the device cannot be opened.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if err := p.device.Open(p.captureCfg, p.frameSize, p.onFrame); err != nil {
		return &internal_type.DeviceError{Op: "open input", Err: err}
	}

	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	p.logger.Infow("capture pipeline started",
		"sample_rate", p.captureCfg.SampleRate,
		"frame_size", p.frameSize,
	)
	return nil
}

// onFrame runs on the device's callback cadence. Metering always happens;
// transmission is skipped while muted.
func (p *Pipeline) onFrame(samples []float32) {
	instant := float32(utils.Clamp(internal_codec.RMS(samples)*meterGain, 0, 100))

	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.levels = append(p.levels, instant)
	if len(p.levels) > meterWindow {
		p.levels = p.levels[1:]
	}
	muted := p.muted
	p.mu.Unlock()

	if muted {
		return
	}

	frame, err := internal_codec.Encode(samples, p.captureCfg.SampleRate, p.wireCfg.SampleRate)
	if err != nil {
		p.logger.Debugw("failed to encode capture frame, dropping", "error", err)
		return
	}

	// A failed send drops the frame, nothing more.
	if err := p.transport.Send(frame); err != nil {
		p.logger.Debugw("failed to send capture frame, dropping", "error", err)
	}
}

// Level returns the current loudness estimate, the mean of the last few frame
// levels, clamped to [0, 100].
func (p *Pipeline) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(utils.AverageFloat32(p.levels))
}

// SetMuted toggles transmission. Metering continues while muted.
func (p *Pipeline) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}

// Muted reports the current mute flag.
func (p *Pipeline) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Stop releases the input device and cancels the frame callback. Idempotent;
// no audio is captured after Stop returns.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.levels = nil
	p.mu.Unlock()

	if err := p.device.Close(); err != nil {
		p.logger.Warnw("failed to close input device", "error", err)
	}
	p.logger.Infow("capture pipeline stopped")
}
