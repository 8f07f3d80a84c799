package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		u, v     []float32
		expected float64
	}{
		{name: "self", u: []float32{0.3, 0.4, 0.5}, v: []float32{0.3, 0.4, 0.5}, expected: 1},
		{name: "scaled", u: []float32{1, 2, 3}, v: []float32{2, 4, 6}, expected: 1},
		{name: "orthogonal", u: []float32{1, 0}, v: []float32{0, 1}, expected: 0},
		{name: "opposite", u: []float32{1, 0}, v: []float32{-1, 0}, expected: -1},
		{name: "zero left", u: []float32{0, 0, 0}, v: []float32{1, 2, 3}, expected: 0},
		{name: "zero both", u: []float32{0, 0}, v: []float32{0, 0}, expected: 0},
		{name: "dimension mismatch", u: []float32{1, 2}, v: []float32{1, 2, 3}, expected: 0},
		{name: "empty", u: nil, v: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.u, tt.v)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.expected, got, 1e-6)
		})
	}
}
