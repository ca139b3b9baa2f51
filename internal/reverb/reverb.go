// Package reverb synthesizes impulse responses and convolves them with dry
// voice clips to add spatial depth.
//
// The impulse response is exponential-decay-enveloped Gaussian noise: a
// dense, cathedral-like synthetic decay rather than a measured room. Noise
// comes from an explicit source supplied by the caller, so the same seed
// reproduces the same response bit for bit.
package reverb

import (
	"math"
	"math/rand/v2"
)

// noiseSigma is the standard deviation of the Gaussian noise driving the
// synthetic impulse response. The normalization pass in the chain makes the
// absolute level irrelevant; the value just keeps intermediate samples well
// inside float range.
const noiseSigma = 0.1

// ImpulseResponse generates a mono synthetic impulse response:
// exp(-decay·t) enveloped Gaussian noise, durationSeconds long at
// sampleRate. rng must not be nil; seed it for reproducible output.
func ImpulseResponse(sampleRate int, durationSeconds, decay float64, rng *rand.Rand) []float64 {
	n := int(durationSeconds * float64(sampleRate))
	ir := make([]float64, n)

	for i := range ir {
		t := float64(i) / float64(sampleRate)
		ir[i] = math.Exp(-decay*t) * rng.NormFloat64() * noiseSigma
	}

	return ir
}

// Processor applies a fixed impulse response to a clip at a configured
// wet/dry mix. The convolver carries scratch buffers, so a Processor must
// not be shared between goroutines; build one per clip.
type Processor struct {
	conv   *Convolver
	wetMix float64
}

// NewProcessor creates a reverb processor. Preconditions (validated by
// callers): wetMix in [0, 1] and a non-empty impulse response.
func NewProcessor(ir []float64, wetMix float64) *Processor {
	return &Processor{
		conv:   NewConvolver(ir),
		wetMix: wetMix,
	}
}

// Apply returns (1-wetMix)·dry + wetMix·(dry ∗ ir), truncated to the dry
// length. wetMix of zero short-circuits to a copy of the dry signal: the
// identity law holds exactly, not merely within convolution round-off.
func (p *Processor) Apply(dry []float64) []float64 {
	if p.wetMix == 0 {
		out := make([]float64, len(dry))
		copy(out, dry)
		return out
	}

	wet := p.conv.ConvolveTruncated(dry)

	dryGain := 1.0 - p.wetMix
	for i := range wet {
		wet[i] = dryGain*dry[i] + p.wetMix*wet[i]
	}

	return wet
}
