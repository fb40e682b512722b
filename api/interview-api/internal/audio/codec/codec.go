// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_codec

import (
	"encoding/binary"
	"math"
	"time"

	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
)

// BytesPerSample is the wire sample width: linear16 → 2 bytes per sample.
const BytesPerSample = 2

// Encode converts normalized float32 samples at sourceRate into
// little-endian int16 PCM at wireRate, resampling by linear interpolation
// when the rates differ. Out-of-range samples are clamped, never wrapped.
// Pure and stateless.
func Encode(samples []float32, sourceRate, wireRate int) ([]byte, error) {
	if sourceRate <= 0 || wireRate <= 0 {
		return nil, &internal_type.FormatError{Reason: "sample rate must be positive"}
	}

	resampled := Resample(samples, sourceRate, wireRate)
	out := make([]byte, len(resampled)*BytesPerSample)
	for i, s := range resampled {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(int16(s*math.MaxInt16)))
	}
	return out, nil
}

// Decode converts little-endian int16 PCM back into normalized float32
// samples, downmixing interleaved channels to mono by averaging. Inverse of
// Encode at equal rates. Fails with a *FormatError on malformed input.
func Decode(data []byte, channels int) ([]float32, error) {
	if channels < 1 {
		return nil, &internal_type.FormatError{Reason: "channel count must be positive"}
	}
	if len(data)%(BytesPerSample*channels) != 0 {
		return nil, &internal_type.FormatError{Reason: "payload length is not frame-aligned"}
	}

	frames := len(data) / (BytesPerSample * channels)
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			raw := int16(binary.LittleEndian.Uint16(data[(i*channels+c)*BytesPerSample:]))
			sum += float32(raw) / math.MaxInt16
		}
		out[i] = sum / float32(channels)
	}
	return out, nil
}

// Resample converts samples from one rate to another by linear
// interpolation. Returns a copy even when the rates match so callers can
// mutate the result freely.
func Resample(samples []float32, from, to int) []float32 {
	if len(samples) == 0 {
		return nil
	}
	if from == to {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}

	outLen := int(math.Round(float64(len(samples)) * float64(to) / float64(from)))
	if outLen < 1 {
		outLen = 1
	}
	step := float64(from) / float64(to)
	out := make([]float32, outLen)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}

// Duration returns the playback duration of sampleCount mono samples.
func Duration(sampleCount, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(sampleCount) * time.Second / time.Duration(rate)
}

// RMS returns the root-mean-square amplitude of the samples in [0, 1].
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
