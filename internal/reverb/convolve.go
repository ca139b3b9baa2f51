package reverb

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// Convolution constants.
const (
	// Minimum FFT size; smaller kernels still round up to this so block
	// bookkeeping stays trivial.
	minFFTSize = 512

	// fftHermitianDivisor is used to calculate unique frequency bins in a
	// real FFT. Due to Hermitian symmetry, a real FFT of size N has
	// N/2 + 1 unique complex coefficients.
	fftHermitianDivisor = 2
)

// Convolver performs overlap-add FFT convolution of a signal with a fixed
// kernel. This is O(N log N) vs O(N×M) for direct convolution, which matters
// here: a five-second impulse response at 44.1 kHz is over 200k taps, far
// beyond where direct convolution is viable for multi-minute clips.
//
// Overlap-add method:
//  1. Split the input into blocks of blockSize samples.
//  2. Each zero-padded block is convolved with the kernel in the frequency
//     domain, producing blockSize + kernelLen - 1 samples.
//  3. Block results are summed into the output at their block offsets; the
//     overlapping tails add up to the exact linear convolution.
type Convolver struct {
	fft       *fourier.FFT
	fftSize   int
	blockSize int
	kernelLen int

	// Precomputed kernel in frequency domain.
	kernelFFT []complex128
	fftLen    int     // Length of FFT output = fftSize/2 + 1
	scale     float64 // 1/fftSize; gonum's inverse transform is unnormalized

	// Working buffers, reused across blocks.
	signalBlock []float64
	signalFFT   []complex128
	productFFT  []complex128
	ifftResult  []float64
}

// NewConvolver creates a convolver for the given kernel. The kernel is
// transformed once and reused for every clip convolved through it.
// Returns nil for an empty kernel.
func NewConvolver(kernel []float64) *Convolver {
	kernelLen := len(kernel)
	if kernelLen == 0 {
		return nil
	}

	// FFT size: next power of 2 >= 2*kernelLen so each block carries at
	// least as many fresh samples as kernel taps.
	fftSize := minFFTSize
	for fftSize < 2*kernelLen {
		fftSize *= 2
	}

	blockSize := fftSize - kernelLen + 1

	fft := fourier.NewFFT(fftSize)

	kernelPadded := make([]float64, fftSize)
	copy(kernelPadded, kernel)
	kernelFFT := fft.Coefficients(nil, kernelPadded)

	fftLen := fftSize/fftHermitianDivisor + 1

	return &Convolver{
		fft:         fft,
		fftSize:     fftSize,
		blockSize:   blockSize,
		kernelLen:   kernelLen,
		kernelFFT:   kernelFFT,
		fftLen:      fftLen,
		scale:       1.0 / float64(fftSize),
		signalBlock: make([]float64, fftSize),
		signalFFT:   make([]complex128, fftLen),
		productFFT:  make([]complex128, fftLen),
		ifftResult:  make([]float64, fftSize),
	}
}

// ConvolveTruncated computes the full linear convolution of signal with the
// kernel, truncated to len(signal) samples. The discarded tail is the reverb
// decay that would extend past the clip's end; clip boundaries land on
// silence gaps in the assembled program, so the truncation is inaudible.
func (c *Convolver) ConvolveTruncated(signal []float64) []float64 {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out
	}

	for offset := 0; offset < len(signal); offset += c.blockSize {
		end := offset + c.blockSize
		if end > len(signal) {
			end = len(signal)
		}

		// Zero-pad the block to fftSize.
		n := copy(c.signalBlock, signal[offset:end])
		for i := n; i < c.fftSize; i++ {
			c.signalBlock[i] = 0
		}

		c.signalFFT = c.fft.Coefficients(c.signalFFT, c.signalBlock)

		for i := range c.signalFFT {
			c.productFFT[i] = c.signalFFT[i] * c.kernelFFT[i]
		}

		c.ifftResult = c.fft.Sequence(c.ifftResult, c.productFFT)

		// Accumulate this block's contribution, dropping everything past
		// the truncation point.
		limit := len(signal) - offset
		if limit > c.fftSize {
			limit = c.fftSize
		}
		for i := 0; i < limit; i++ {
			out[offset+i] += c.ifftResult[i] * c.scale
		}
	}

	return out
}
