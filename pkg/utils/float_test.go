package utils

import "testing"

func TestAverageFloat32(t *testing.T) {
	tests := []struct {
		name     string
		levels   []float32
		expected float32
	}{
		{"steady meter", []float32{40, 40, 40, 40}, 40},
		{"rising meter", []float32{10, 20, 30, 40}, 25},
		{"single frame", []float32{87.5}, 87.5},
		{"no frames", nil, 0},
		{"cancelling offsets", []float32{-0.25, 0.25}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AverageFloat32(tt.levels)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}
