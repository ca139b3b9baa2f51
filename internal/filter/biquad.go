package filter

import (
	"math"
)

// butterworthQ is the quality factor of a 2nd-order Butterworth section
// (1/√2), giving a maximally flat passband.
const butterworthQ = 0.7071067811865476

// Biquad is a single 2nd-order IIR section in direct form II transposed.
// Coefficients are normalized so a0 = 1.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// NewHighPass designs a 2nd-order Butterworth high-pass section.
// freq must be in (0, sampleRate/2); callers validate the band before
// designing sections.
//
// Coefficients follow the Audio EQ Cookbook (R. Bristow-Johnson).
func NewHighPass(sampleRate, freq float64) Biquad {
	w0 := 2 * math.Pi * freq / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * butterworthQ)

	a0 := 1 + alpha

	return Biquad{
		b0: (1 + cosW0) / 2 / a0,
		b1: -(1 + cosW0) / a0,
		b2: (1 + cosW0) / 2 / a0,
		a1: -2 * cosW0 / a0,
		a2: (1 - alpha) / a0,
	}
}

// NewLowPass designs a 2nd-order Butterworth low-pass section.
// freq must be in (0, sampleRate/2).
func NewLowPass(sampleRate, freq float64) Biquad {
	w0 := 2 * math.Pi * freq / sampleRate
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * butterworthQ)

	a0 := 1 + alpha

	return Biquad{
		b0: (1 - cosW0) / 2 / a0,
		b1: (1 - cosW0) / a0,
		b2: (1 - cosW0) / 2 / a0,
		a1: -2 * cosW0 / a0,
		a2: (1 - alpha) / a0,
	}
}

// Apply runs the section over src into dst (which may alias src), starting
// from zero state. Direct form II transposed keeps one delay line and good
// numerical behavior at audio word lengths.
func (bq Biquad) Apply(dst, src []float64) {
	var z1, z2 float64

	for i, x := range src {
		y := bq.b0*x + z1
		z1 = bq.b1*x - bq.a1*y + z2
		z2 = bq.b2*x - bq.a2*y
		dst[i] = y
	}
}

// BandIsolate extracts the lowHz..highHz band from samples with zero phase
// distortion: a 4th-order band filter (cascaded Butterworth high-pass and
// low-pass sections) run forward, then backward over the reversed signal.
// The forward-backward pass squares the magnitude response and cancels the
// phase response, so the isolated band stays time-aligned with the original
// signal. That alignment is what lets a de-esser subtract the band cleanly.
//
// Preconditions (validated by callers): 0 < lowHz < highHz < sampleRate/2.
func BandIsolate(samples []float64, sampleRate, lowHz, highHz float64) []float64 {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out
	}

	hp := NewHighPass(sampleRate, lowHz)
	lp := NewLowPass(sampleRate, highHz)

	// Forward pass.
	hp.Apply(out, samples)
	lp.Apply(out, out)

	// Backward pass over the reversed signal.
	reverse(out)
	hp.Apply(out, out)
	lp.Apply(out, out)
	reverse(out)

	return out
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
