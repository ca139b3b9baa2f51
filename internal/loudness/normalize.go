// Package loudness measures and scales program level.
//
// The chain uses peak normalization with a small decibel headroom rather
// than an integrated loudness measure: for a program that is one voice over
// silence, the peak is the only level that risks clipping on downstream
// lossy re-encode, and peak scaling is exactly idempotent.
package loudness

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
)

// SilenceFloor is the absolute peak below which a buffer is considered
// silent. A silent buffer has no meaningful scale factor; callers must treat
// it as an error rather than amplify noise toward the target.
const SilenceFloor = 1e-9

const dbPerDecade = 20.0

// Peak returns the largest absolute sample value across all channels.
func Peak(channels [][]float64) float64 {
	peak := 0.0

	for _, ch := range channels {
		if len(ch) == 0 {
			continue
		}
		// Inf-norm is the absolute peak.
		if p := floats.Norm(ch, math.Inf(1)); p > peak {
			peak = p
		}
	}

	return peak
}

// Gain returns the linear gain that moves peak to targetDB (dBFS, usually
// slightly negative to leave encoder headroom).
func Gain(peak, targetDB float64) float64 {
	return math.Pow(10, targetDB/dbPerDecade) / peak
}

// ApplyGain scales every channel in place by gain. One gain for all
// channels preserves the stereo image.
func ApplyGain(channels [][]float64, gain float64) {
	for _, ch := range channels {
		if len(ch) == 0 {
			continue
		}
		f64.Scale(ch, ch, gain)
	}
}
