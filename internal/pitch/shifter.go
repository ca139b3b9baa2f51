// Package pitch implements resampling-based pitch shifting.
//
// Shifting works by band-limited resampling to a new sample count and
// re-labeling the result at the original rate, so perceived pitch and
// duration change together. For a reference-tuning shift such as 432/440
// the duration drift is under two percent, which is the accepted trade-off
// for long-form ambient material; exact duration preservation would need a
// separate time-stretch stage and is deliberately not provided.
package pitch

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/serenewav/mastering/internal/filter"
)

const (
	// Kernel design defaults. 64 taps with ~96 dB stopband keeps aliasing
	// below the 16-bit noise floor; 512 phases position the interpolation
	// point to better than 0.2% of a sample period.
	defaultTaps        = 64
	defaultPhases      = 512
	defaultAttenuation = 96.0

	// MinRatio and MaxRatio bound the supported shift. Reference-tuning
	// shifts sit within a few percent of unity; anything outside an octave
	// either way is a caller bug.
	MinRatio = 0.5
	MaxRatio = 2.0
)

// Shifter resamples mono audio by a fixed ratio using a precomputed Kaiser
// windowed-sinc interpolation bank. A Shifter is immutable after creation
// and safe for concurrent use across clips.
type Shifter struct {
	ratio  float64
	bank   [][]float64
	taps   int
	phases int
	half   int
}

// NewShifter creates a shifter for the given ratio. The output holds
// floor(n * ratio) samples re-labeled at the original rate, so duration
// scales by the ratio and perceived pitch by its inverse. The kernel cutoff
// tracks min(1, ratio) so sample-count reductions stay free of aliasing
// beyond the new Nyquist.
func NewShifter(ratio float64) (*Shifter, error) {
	if ratio < MinRatio || ratio > MaxRatio {
		return nil, fmt.Errorf("pitch ratio %f out of range [%f, %f]", ratio, MinRatio, MaxRatio)
	}

	cutoff := 1.0
	if ratio < 1 {
		cutoff = ratio
	}

	bank, err := filter.InterpolationBank(filter.BankParams{
		Taps:        defaultTaps,
		Phases:      defaultPhases,
		Cutoff:      cutoff,
		Attenuation: defaultAttenuation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to design interpolation bank: %w", err)
	}

	return &Shifter{
		ratio:  ratio,
		bank:   bank,
		taps:   defaultTaps,
		phases: defaultPhases,
		half:   defaultTaps / 2,
	}, nil
}

// Ratio returns the configured pitch ratio.
func (s *Shifter) Ratio() float64 {
	return s.ratio
}

// OutputLen returns the exact output sample count for an input of length n:
// floor(n * ratio).
func (s *Shifter) OutputLen(n int) int {
	return int(math.Floor(float64(n) * s.ratio))
}

// Shift resamples input to floor(len(input) * ratio) samples. An empty
// input yields an empty output. Samples beyond the input edges are treated
// as silence, which for voice clips that start and end near zero introduces
// no audible edge artifacts.
func (s *Shifter) Shift(input []float64) []float64 {
	outLen := s.OutputLen(len(input))
	output := make([]float64, outLen)
	if outLen == 0 {
		return output
	}

	// The kernel spans source indices n0-half+1 .. n0+half around each
	// interpolation point. Keep a zero-padded copy so edge windows read
	// silence instead of branching per tap.
	padded := make([]float64, len(input)+s.taps)
	copy(padded[s.half:], input)

	invRatio := 1.0 / s.ratio

	for i := range outLen {
		t := float64(i) * invRatio
		n0 := int(t)
		frac := t - float64(n0)

		phase := int(frac * float64(s.phases))
		if phase >= s.phases {
			phase = s.phases - 1
		}

		// Window start in padded coordinates: (n0 - half + 1) + half.
		start := n0 + 1
		output[i] = f64.DotProductUnsafe(padded[start:start+s.taps], s.bank[phase])
	}

	return output
}
