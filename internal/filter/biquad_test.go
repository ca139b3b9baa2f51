package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenewav/mastering/internal/testutil"
)

const testRate = 48000

// rms computes the root mean square of the middle half of a signal,
// skipping the filter settling regions at both ends.
func rms(s []float64) float64 {
	start := len(s) / 4
	end := 3 * len(s) / 4
	var sum float64
	for _, v := range s[start:end] {
		sum += v * v
	}
	return math.Sqrt(sum / float64(end-start))
}

// TestLowPass_PassesDC tests that a low-pass section settles to unity gain
// on a constant signal.
func TestLowPass_PassesDC(t *testing.T) {
	lp := NewLowPass(testRate, 1000)
	in := testutil.Constant(1.0, 4800)
	out := make([]float64, len(in))
	lp.Apply(out, in)

	assert.InDelta(t, 1.0, out[len(out)-1], 1e-6, "low-pass DC gain should be unity")
}

// TestHighPass_BlocksDC tests that a high-pass section settles to zero on a
// constant signal.
func TestHighPass_BlocksDC(t *testing.T) {
	hp := NewHighPass(testRate, 1000)
	in := testutil.Constant(1.0, 4800)
	out := make([]float64, len(in))
	hp.Apply(out, in)

	assert.InDelta(t, 0.0, out[len(out)-1], 1e-6, "high-pass DC gain should be zero")
}

// TestLowPass_AttenuatesHighFrequencies tests stopband rejection well above
// the corner.
func TestLowPass_AttenuatesHighFrequencies(t *testing.T) {
	lp := NewLowPass(testRate, 1000)
	in := testutil.Sine(16000, testRate, 1.0, 9600)
	out := make([]float64, len(in))
	lp.Apply(out, in)

	inRMS := rms(in)
	outRMS := rms(out)
	assert.Less(t, outRMS, inRMS*0.01,
		"16 kHz through a 1 kHz low-pass should drop by more than 40 dB")
}

// TestBiquad_ApplyInPlace tests that dst may alias src.
func TestBiquad_ApplyInPlace(t *testing.T) {
	lp := NewLowPass(testRate, 2000)
	in := testutil.Sine(440, testRate, 0.5, 4800)

	separate := make([]float64, len(in))
	lp.Apply(separate, in)

	inPlace := make([]float64, len(in))
	copy(inPlace, in)
	lp.Apply(inPlace, inPlace)

	for i := range separate {
		require.InDelta(t, separate[i], inPlace[i], 1e-12)
	}
}

// TestBandIsolate_InBandSurvives tests that a tone inside the band keeps
// most of its energy.
func TestBandIsolate_InBandSurvives(t *testing.T) {
	in := testutil.Sine(6000, testRate, 1.0, 48000)
	out := BandIsolate(in, testRate, 4000, 8000)

	require.Len(t, out, len(in))
	assert.Greater(t, rms(out), rms(in)*0.5,
		"6 kHz tone should pass the 4-8 kHz band mostly intact")
}

// TestBandIsolate_OutOfBandRejected tests rejection outside the band on
// both sides.
func TestBandIsolate_OutOfBandRejected(t *testing.T) {
	tests := []struct {
		name   string
		freqHz float64
	}{
		{"Low voice fundamental", 200},
		{"Upper midrange", 1000},
		{"Above the band", 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := testutil.Sine(tt.freqHz, testRate, 1.0, 48000)
			out := BandIsolate(in, testRate, 4000, 8000)
			assert.Less(t, rms(out), rms(in)*0.05,
				"%v Hz should be rejected by the 4-8 kHz band", tt.freqHz)
		})
	}
}

// TestBandIsolate_ZeroPhase tests time alignment: the isolated band of an
// in-band tone must not be shifted relative to the input. A forward-only
// filter would shift it by several samples and break the de-esser's
// subtraction.
func TestBandIsolate_ZeroPhase(t *testing.T) {
	in := testutil.Sine(6000, testRate, 1.0, 48000)
	out := BandIsolate(in, testRate, 4000, 8000)

	// With zero phase the output is the input scaled by the band's gain at
	// 6 kHz. Estimate the gain from RMS, then check sample-level alignment
	// in the middle of the signal.
	gain := rms(out) / rms(in)
	start := len(in) / 4
	end := 3 * len(in) / 4
	for i := start; i < end; i++ {
		require.InDelta(t, in[i]*gain, out[i], 0.02,
			"misalignment at sample %d", i)
	}
}

// TestBandIsolate_Empty tests the empty-input edge case.
func TestBandIsolate_Empty(t *testing.T) {
	out := BandIsolate(nil, testRate, 4000, 8000)
	assert.Empty(t, out)
}
