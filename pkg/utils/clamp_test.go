package utils

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		v, lo, hi float64
		expected  float64
	}{
		{"inside range", 5.0, 0.0, 10.0, 5.0},
		{"below range", -1.0, 0.0, 10.0, 0.0},
		{"above range", 11.0, 0.0, 10.0, 10.0},
		{"at lower bound", 0.0, 0.0, 10.0, 0.0},
		{"at upper bound", 10.0, 0.0, 10.0, 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clamp(tt.v, tt.lo, tt.hi)
			if result != tt.expected {
				t.Errorf("expected %f, got %f", tt.expected, result)
			}
		})
	}
}
