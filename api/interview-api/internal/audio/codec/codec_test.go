// Copyright (c) 2024-2026 PathwiseAI
// Author: Prashant Srivastav <prashant@pathwise.ai>
//
// Licensed under GPL-2.0 with Pathwise Additional Terms.
// See LICENSE.md or contact sales@pathwise.ai for commercial usage.

package internal_codec

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	internal_type "github.com/pathwiseai/api/interview-api/internal/type"
)

func TestEncodeDecodeRoundTripSameRate(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.99, -0.99}

	encoded, err := Encode(in, 16000, 16000)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded, 1)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(decoded))
	}
	for i := range in {
		if diff := math.Abs(float64(decoded[i] - in[i])); diff > 1.0/math.MaxInt16 {
			t.Errorf("sample %d: expected %f, got %f (diff %f)", i, in[i], decoded[i], diff)
		}
	}
}

func TestEncodeClampsOutOfRange(t *testing.T) {
	encoded, err := Encode([]float32{2.0, -2.0}, 16000, 16000)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	hi := int16(binary.LittleEndian.Uint16(encoded[0:2]))
	lo := int16(binary.LittleEndian.Uint16(encoded[2:4]))
	if hi != math.MaxInt16 {
		t.Errorf("expected +full-scale clamp, got %d", hi)
	}
	if lo != -math.MaxInt16 {
		t.Errorf("expected -full-scale clamp, got %d", lo)
	}
}

func TestEncodeDownsamplesToWireRate(t *testing.T) {
	in := make([]float32, 4096)
	encoded, err := Encode(in, 48000, 16000)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// 4096 samples at 48kHz → ~1365 samples at 16kHz → 2 bytes each.
	expected := int(math.Round(4096.0/3.0)) * BytesPerSample
	if len(encoded) != expected {
		t.Errorf("expected %d bytes, got %d", expected, len(encoded))
	}
}

func TestEncodeRejectsBadRates(t *testing.T) {
	var formatErr *internal_type.FormatError
	if _, err := Encode([]float32{0}, 0, 16000); !errors.As(err, &formatErr) {
		t.Errorf("expected FormatError for zero source rate, got %v", err)
	}
	if _, err := Encode([]float32{0}, 16000, -1); !errors.As(err, &formatErr) {
		t.Errorf("expected FormatError for negative wire rate, got %v", err)
	}
}

func TestDecodeMalformedLength(t *testing.T) {
	var formatErr *internal_type.FormatError
	if _, err := Decode([]byte{0x01}, 1); !errors.As(err, &formatErr) {
		t.Errorf("expected FormatError for odd byte count, got %v", err)
	}
	if _, err := Decode([]byte{0, 0}, 2); !errors.As(err, &formatErr) {
		t.Errorf("expected FormatError for non-frame-aligned stereo payload, got %v", err)
	}
	if _, err := Decode([]byte{0, 0}, 0); !errors.As(err, &formatErr) {
		t.Errorf("expected FormatError for zero channels, got %v", err)
	}
}

func TestDecodeStereoDownmix(t *testing.T) {
	// One stereo frame: left = +0.5 full-scale, right = -0.5 full-scale.
	frame := make([]byte, 4)
	left := int16(math.MaxInt16 / 2)
	right := int16(-math.MaxInt16 / 2)
	binary.LittleEndian.PutUint16(frame[0:], uint16(left))
	binary.LittleEndian.PutUint16(frame[2:], uint16(right))

	decoded, err := Decode(frame, 2)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 mono sample, got %d", len(decoded))
	}
	if math.Abs(float64(decoded[0])) > 1.0/math.MaxInt16 {
		t.Errorf("expected downmix to ~0, got %f", decoded[0])
	}
}

func TestResample(t *testing.T) {
	tests := []struct {
		name        string
		in          int
		from, to    int
		expectedLen int
	}{
		{"identity", 100, 16000, 16000, 100},
		{"downsample 3:1", 300, 48000, 16000, 100},
		{"upsample 1:3", 100, 16000, 48000, 300},
		{"empty", 0, 48000, 16000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]float32, tt.in)
			for i := range in {
				in[i] = float32(i) / float32(tt.in+1)
			}
			out := Resample(in, tt.from, tt.to)
			if len(out) != tt.expectedLen {
				t.Errorf("expected %d samples, got %d", tt.expectedLen, len(out))
			}
		})
	}
}

func TestResampleInterpolatesLinearly(t *testing.T) {
	// Upsampling a ramp 2x must keep it a ramp: midpoints sit halfway.
	in := []float32{0, 1}
	out := Resample(in, 8000, 16000)
	if len(out) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(out))
	}
	if out[0] != 0 || out[1] != 0.5 {
		t.Errorf("expected [0 0.5 ...], got %v", out)
	}
}

func TestResampleReturnsCopy(t *testing.T) {
	in := []float32{0.1, 0.2}
	out := Resample(in, 16000, 16000)
	out[0] = 9
	if in[0] != 0.1 {
		t.Error("Resample must not alias its input")
	}
}

func TestDuration(t *testing.T) {
	if d := Duration(16000, 16000); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
	if d := Duration(8000, 16000); d != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", d)
	}
	if d := Duration(100, 0); d != 0 {
		t.Errorf("expected 0 for zero rate, got %v", d)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("expected 0 for empty input, got %f", got)
	}
	if got := RMS([]float32{0.5, 0.5, 0.5, 0.5}); math.Abs(got-0.5) > 1e-6 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := RMS([]float32{-0.5, 0.5}); math.Abs(got-0.5) > 1e-6 {
		t.Errorf("sign must not matter, got %f", got)
	}
}
