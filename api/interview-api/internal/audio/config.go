// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_audio

// Config describes an audio stream format.
type Config struct {
	SampleRate int
	Channels   int
}

// NewLinear16khzMonoAudioConfig returns the internal wire format: 16kHz
// mono linear16 PCM, what the agent endpoint negotiates.
func NewLinear16khzMonoAudioConfig() *Config {
	return &Config{SampleRate: 16000, Channels: 1}
}

// NewLinear48khzMonoAudioConfig returns the typical native capture format
// of desktop microphones.
func NewLinear48khzMonoAudioConfig() *Config {
	return &Config{SampleRate: 48000, Channels: 1}
}

// PATHWISE_INTERNAL_AUDIO_CONFIG is the wire format all transports speak.
var PATHWISE_INTERNAL_AUDIO_CONFIG = NewLinear16khzMonoAudioConfig()

// CAPTURE_AUDIO_CONFIG is the default capture-device format.
var CAPTURE_AUDIO_CONFIG = NewLinear48khzMonoAudioConfig()
