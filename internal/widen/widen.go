// Package widen derives a stereo image from a mono signal using the Haas
// effect: the right channel repeats the left a few milliseconds late, which
// the ear reads as width rather than as an echo.
package widen

// Haas returns left and right channels for a mono input. Left is the input
// unchanged; right is delaySamples of leading silence followed by the input,
// truncated so both channels keep the input's sample count.
//
// Preconditions (validated by callers): 0 <= delaySamples < len(input).
func Haas(input []float64, delaySamples int) (left, right []float64) {
	n := len(input)

	left = make([]float64, n)
	copy(left, input)

	right = make([]float64, n)
	copy(right[delaySamples:], input[:n-delaySamples])

	return left, right
}
