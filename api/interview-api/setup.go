// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package interview_api

import (
	internal_audio "github.com/pathwiseai/api/interview-api/internal/audio"
	channel_agentlink "github.com/pathwiseai/api/interview-api/internal/channel/agentlink"
	internal_portaudio "github.com/pathwiseai/api/interview-api/internal/device/portaudio"
	internal_session "github.com/pathwiseai/api/interview-api/internal/session"
	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
	"github.com/pathwiseai/config"
	"github.com/pathwiseai/pkg/commons"
)

// NewDefaultController wires a session controller against the real
// collaborators: the websocket agent link, the host microphone and the host
// speaker.
func NewDefaultController(cfg *config.AppConfig, logger commons.Logger) SessionController {
	captureCfg := &internal_audio.Config{SampleRate: cfg.CaptureSampleRate, Channels: 1}
	wireCfg := &internal_audio.Config{SampleRate: cfg.WireSampleRate, Channels: 1}

	return internal_session.NewController(logger, internal_session.Options{
		CaptureConfig: captureCfg,
		WireConfig:    wireCfg,
		FrameSize:     cfg.FrameSize,
		NewTransport: func(ictx internal_type.InterviewContext) internal_type.Transport {
			return channel_agentlink.NewTransport(logger, channel_agentlink.Config{
				URL:        cfg.AgentEndpoint,
				APIKey:     cfg.AgentApiKey,
				SampleRate: cfg.WireSampleRate,
			}, ictx)
		},
		NewDevice: func() internal_type.InputDevice {
			return internal_portaudio.NewMicrophone(logger)
		},
		NewSink: func() (internal_type.PlaybackSink, error) {
			return internal_portaudio.NewSpeakerSink(logger, cfg.WireSampleRate)
		},
	})
}
