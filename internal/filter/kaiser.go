// Package filter provides filter design for the mastering chain: Kaiser
// windowed-sinc interpolation banks for pitch resampling and Butterworth
// biquad sections for the de-esser's band isolation.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"

	"github.com/serenewav/mastering/internal/mathutil"
)

const (
	// Interpolation bank bounds
	minBankTaps   = 4
	maxBankTaps   = 512
	minBankPhases = 2
	maxBankPhases = 8192

	// Window normalization
	windowNormalizationFactor = 2.0

	// Sinc function constants
	sincCenterTap     = 1.0
	sincZeroThreshold = 1e-10
)

// KaiserWindow generates a Kaiser window of the specified length and β
// parameter. The window is symmetric: w[i] = w[length-1-i].
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}

	window := make([]float64, length)

	if length == 1 {
		window[0] = sincCenterTap
		return window
	}

	// w[n] = I₀(β * sqrt(1 - ((n - α)/α)²)) / I₀(β)
	// where α = (N-1)/2 and N is the window length
	alpha := float64(length-1) / windowNormalizationFactor
	i0Beta := mathutil.BesselI0(beta)

	for n := range length {
		x := (float64(n) - alpha) / alpha

		arg := beta * math.Sqrt(1.0-x*x)
		window[n] = mathutil.BesselI0(arg) / i0Beta
	}

	return window
}

// BankParams holds parameters for interpolation bank design.
type BankParams struct {
	// Taps is the number of coefficients per phase. Must be even so the
	// kernel straddles the interpolation point symmetrically.
	Taps int

	// Phases is the number of fractional-delay phases in the bank.
	// More phases means finer positioning of the interpolation point.
	Phases int

	// Cutoff is the normalized cutoff relative to Nyquist (0, 1].
	// Downsampling designs set this below 1 to suppress aliasing.
	Cutoff float64

	// Attenuation is the desired stopband attenuation in dB.
	Attenuation float64
}

// Validate checks bank parameters.
func (bp *BankParams) Validate() error {
	if bp.Taps < minBankTaps || bp.Taps > maxBankTaps {
		return fmt.Errorf("invalid tap count %d (must be %d-%d)", bp.Taps, minBankTaps, maxBankTaps)
	}

	if bp.Taps%2 != 0 {
		return fmt.Errorf("invalid tap count %d (must be even)", bp.Taps)
	}

	if bp.Phases < minBankPhases || bp.Phases > maxBankPhases {
		return fmt.Errorf("invalid phase count %d (must be %d-%d)", bp.Phases, minBankPhases, maxBankPhases)
	}

	if bp.Cutoff <= 0 || bp.Cutoff > 1 {
		return fmt.Errorf("invalid cutoff %f (must be in (0, 1])", bp.Cutoff)
	}

	if bp.Attenuation < 0 {
		return fmt.Errorf("invalid attenuation %f dB (must be positive)", bp.Attenuation)
	}

	return nil
}

// InterpolationBank designs a bank of Kaiser windowed-sinc fractional-delay
// kernels for band-limited interpolation.
//
// Bank row p holds the kernel for fractional position p/Phases between
// samples. Evaluating output at source position n+frac reduces to a dot
// product of Taps input samples around n with the row nearest frac, which
// keeps per-sample cost at one SIMD dot product.
//
// Each row is normalized to unit DC gain so interpolation never shifts the
// signal's mean level.
func InterpolationBank(params BankParams) ([][]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	beta := mathutil.KaiserBeta(params.Attenuation)
	half := params.Taps / 2

	bank := make([][]float64, params.Phases)

	for p := range params.Phases {
		frac := float64(p) / float64(params.Phases)
		row := make([]float64, params.Taps)

		for k := range params.Taps {
			// Tap offsets relative to the interpolation point: the kernel
			// covers source indices n-half+1 .. n+half.
			x := float64(k-half+1) - frac

			// Band-limited sinc scaled by cutoff: c·sinc(c·x).
			var sincValue float64
			if math.Abs(x) < sincZeroThreshold {
				sincValue = params.Cutoff
			} else {
				arg := math.Pi * params.Cutoff * x
				sincValue = params.Cutoff * math.Sin(arg) / arg
			}

			// Kaiser window evaluated at the tap's distance from center,
			// normalized to [-1, 1] across the kernel span.
			u := x / float64(half)
			if u < -1 || u > 1 {
				row[k] = 0
				continue
			}
			row[k] = sincValue * mathutil.BesselI0(beta*math.Sqrt(1.0-u*u)) / mathutil.BesselI0(beta)
		}

		// Normalize row to unit DC gain.
		sum := f64.Sum(row)
		if math.Abs(sum) > sincZeroThreshold {
			f64.Scale(row, row, 1.0/sum)
		}

		bank[p] = row
	}

	return bank, nil
}
