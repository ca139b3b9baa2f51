package loudness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenewav/mastering/internal/testutil"
)

// TestPeak tests peak measurement across channels.
func TestPeak(t *testing.T) {
	tests := []struct {
		name     string
		channels [][]float64
		expected float64
	}{
		{"Single channel", [][]float64{{0.1, -0.5, 0.3}}, 0.5},
		{"Peak in second channel", [][]float64{{0.1, 0.2}, {-0.9, 0.0}}, 0.9},
		{"All zeros", [][]float64{{0, 0, 0}}, 0.0},
		{"Empty channel ignored", [][]float64{{}, {0.4}}, 0.4},
		{"No channels", nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Peak(tt.channels), 1e-15)
		})
	}
}

// TestGain tests the decibel target to linear gain conversion.
func TestGain(t *testing.T) {
	t.Run("Unity at full scale target", func(t *testing.T) {
		assert.InDelta(t, 1.0, Gain(1.0, 0.0), 1e-15)
	})

	t.Run("Headroom target", func(t *testing.T) {
		// -0.1 dBFS is a linear peak of 10^(-0.005).
		want := math.Pow(10, -0.1/20)
		assert.InDelta(t, want, Gain(1.0, -0.1), 1e-12)
	})

	t.Run("Quiet signal gets boosted", func(t *testing.T) {
		assert.Greater(t, Gain(0.1, -0.1), 1.0)
	})
}

// TestApplyGain tests in-place scaling across channels.
func TestApplyGain(t *testing.T) {
	channels := [][]float64{{0.5, -0.25}, {0.1, 0.0}}
	ApplyGain(channels, 2.0)

	assert.Equal(t, [][]float64{{1.0, -0.5}, {0.2, 0.0}}, channels)
}

// TestNormalize_Idempotent tests that normalizing an already-normalized
// signal changes nothing beyond floating tolerance.
func TestNormalize_Idempotent(t *testing.T) {
	ch := testutil.Sine(440, 48000, 0.3, 4800)
	channels := [][]float64{ch}

	ApplyGain(channels, Gain(Peak(channels), -0.1))
	once := make([]float64, len(ch))
	copy(once, ch)

	ApplyGain(channels, Gain(Peak(channels), -0.1))

	for i := range once {
		require.InDelta(t, once[i], ch[i], 1e-12, "drift at sample %d", i)
	}
}

// TestNormalize_HitsTarget tests that the peak lands on the target level.
func TestNormalize_HitsTarget(t *testing.T) {
	channels := [][]float64{
		testutil.Sine(440, 48000, 0.7, 4800),
		testutil.Sine(440, 48000, 0.2, 4800),
	}

	ApplyGain(channels, Gain(Peak(channels), -0.1))

	want := math.Pow(10, -0.1/20)
	assert.InDelta(t, want, Peak(channels), 1e-9)

	// The quieter channel scales by the same gain, keeping the balance.
	assert.InDelta(t, want*0.2/0.7, testutil.Peak(channels[1]), 1e-6)
}

// TestSilenceFloor tests the silence classification boundary.
func TestSilenceFloor(t *testing.T) {
	assert.Less(t, Peak([][]float64{{1e-12, -1e-13}}), SilenceFloor)
	assert.GreaterOrEqual(t, Peak([][]float64{{1e-6}}), SilenceFloor)
}
