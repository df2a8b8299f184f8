package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommission(t *testing.T) {
	tests := []struct {
		name     string
		shares   float64
		expected float64
	}{
		{name: "below minimum hits floor", shares: 100, expected: 1.0},
		{name: "exactly at minimum", shares: 200, expected: 1.0},
		{name: "per-share rate above minimum", shares: 1000, expected: 5.0},
		{name: "fractional shares", shares: 450, expected: 2.25},
		{name: "zero shares returns minimum", shares: 0, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Commission(tt.shares), 1e-9)
		})
	}
}
