package mastering

import (
	"fmt"

	"github.com/serenewav/mastering/internal/pitch"
)

// Production defaults for the processing chain.
const (
	// DefaultSampleRate is the rate clips arrive at from synthesis.
	DefaultSampleRate = 48000

	// DefaultPitchRatio applies the 432/440 reference-tuning shift.
	DefaultPitchRatio = 432.0 / 440.0

	// DefaultDeessLowHz and DefaultDeessHighHz bound the sibilance band.
	// Voiced sibilants concentrate energy between 4 and 8 kHz.
	DefaultDeessLowHz  = 4000.0
	DefaultDeessHighHz = 8000.0

	// DefaultDeessThreshold is the absolute sibilant-band amplitude above
	// which compression engages, at full scale ±1.0.
	DefaultDeessThreshold = 0.1

	// DefaultDeessRatio is the compression ratio applied to sibilant
	// energy above the threshold.
	DefaultDeessRatio = 6.0

	// DefaultReverbWetMix blends the convolved signal into the dry one.
	DefaultReverbWetMix = 0.4

	// DefaultReverbDecay is the exponential decay rate of the synthetic
	// impulse response, in inverse seconds.
	DefaultReverbDecay = 2.0

	// DefaultReverbSeconds is the impulse response length. Five seconds
	// gives a long cathedral-like tail.
	DefaultReverbSeconds = 5.0

	// DefaultWidenDelayMs is the Haas interchannel delay. Delays under
	// about 30 ms fuse into a single widened image instead of an echo.
	DefaultWidenDelayMs = 15.0

	// DefaultTargetPeakDB is the program peak after normalization, in
	// dBFS. A small headroom below full scale avoids clipping in lossy
	// downstream encoders.
	DefaultTargetPeakDB = -0.1

	// DefaultGapSeconds is the silence inserted between consecutive clips.
	DefaultGapSeconds = 2.0
)

// ChainParams configures every stage of the processing chain plus the
// program assembly settings. The zero value is not usable; start from
// DefaultParams.
type ChainParams struct {
	// SampleRate is the required sample rate of every input clip, in Hz.
	SampleRate int

	// PitchRatio scales the pitch of every clip. Values below one lower
	// the pitch. Must lie within [pitch.MinRatio, pitch.MaxRatio].
	PitchRatio float64

	// DeessLowHz and DeessHighHz bound the sibilance band. The band must
	// be non-empty, positive and below the Nyquist frequency.
	DeessLowHz  float64
	DeessHighHz float64

	// DeessThreshold is the absolute sibilant amplitude above which
	// compression engages. Must be positive.
	DeessThreshold float64

	// DeessRatio is the compression ratio above the threshold. Must be
	// greater than one; a ratio at or below one would amplify sibilance
	// instead of attenuating it.
	DeessRatio float64

	// ReverbWetMix blends the convolved signal into the dry one.
	// Must lie in [0, 1]; zero bypasses the reverb entirely.
	ReverbWetMix float64

	// ReverbDecay is the exponential decay rate of the impulse response,
	// in inverse seconds. Must be positive.
	ReverbDecay float64

	// ReverbSeconds is the impulse response length. Must be positive.
	ReverbSeconds float64

	// ReverbSeed seeds impulse response generation. The same seed yields
	// the same response on every run; zero draws a fresh random response.
	ReverbSeed uint64

	// WidenDelayMs is the Haas interchannel delay in milliseconds.
	// Must not be negative and must be shorter than every clip.
	WidenDelayMs float64

	// TargetPeakDB is the program peak after normalization, in dBFS.
	// Must not be positive.
	TargetPeakDB float64

	// GapSeconds is the silence inserted between consecutive clips.
	// Must not be negative.
	GapSeconds float64
}

// DefaultParams returns the production chain configuration.
func DefaultParams() ChainParams {
	return ChainParams{
		SampleRate:     DefaultSampleRate,
		PitchRatio:     DefaultPitchRatio,
		DeessLowHz:     DefaultDeessLowHz,
		DeessHighHz:    DefaultDeessHighHz,
		DeessThreshold: DefaultDeessThreshold,
		DeessRatio:     DefaultDeessRatio,
		ReverbWetMix:   DefaultReverbWetMix,
		ReverbDecay:    DefaultReverbDecay,
		ReverbSeconds:  DefaultReverbSeconds,
		WidenDelayMs:   DefaultWidenDelayMs,
		TargetPeakDB:   DefaultTargetPeakDB,
		GapSeconds:     DefaultGapSeconds,
	}
}

// Validate checks every parameter against its documented range. Errors wrap
// ErrInvalidParameter or ErrInvalidBand.
func (p ChainParams) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidParameter, p.SampleRate)
	}
	if p.PitchRatio < pitch.MinRatio || p.PitchRatio > pitch.MaxRatio {
		return fmt.Errorf("%w: pitch ratio %f out of range [%f, %f]",
			ErrInvalidParameter, p.PitchRatio, pitch.MinRatio, pitch.MaxRatio)
	}

	nyquist := float64(p.SampleRate) / 2
	if p.DeessLowHz <= 0 {
		return fmt.Errorf("%w: de-esser low edge must be positive, got %f Hz", ErrInvalidBand, p.DeessLowHz)
	}
	if p.DeessHighHz <= p.DeessLowHz {
		return fmt.Errorf("%w: de-esser band [%f, %f] Hz is empty", ErrInvalidBand, p.DeessLowHz, p.DeessHighHz)
	}
	if p.DeessHighHz >= nyquist {
		return fmt.Errorf("%w: de-esser high edge %f Hz is at or above Nyquist %f Hz",
			ErrInvalidBand, p.DeessHighHz, nyquist)
	}
	if p.DeessThreshold <= 0 {
		return fmt.Errorf("%w: de-esser threshold must be positive, got %f", ErrInvalidParameter, p.DeessThreshold)
	}
	if p.DeessRatio <= 1 {
		return fmt.Errorf("%w: de-esser ratio must be greater than 1, got %f", ErrInvalidParameter, p.DeessRatio)
	}

	if p.ReverbWetMix < 0 || p.ReverbWetMix > 1 {
		return fmt.Errorf("%w: reverb wet mix %f out of range [0, 1]", ErrInvalidParameter, p.ReverbWetMix)
	}
	if p.ReverbDecay <= 0 {
		return fmt.Errorf("%w: reverb decay must be positive, got %f", ErrInvalidParameter, p.ReverbDecay)
	}
	if p.ReverbSeconds <= 0 {
		return fmt.Errorf("%w: reverb length must be positive, got %f s", ErrInvalidParameter, p.ReverbSeconds)
	}

	if p.WidenDelayMs < 0 {
		return fmt.Errorf("%w: widen delay must not be negative, got %f ms", ErrInvalidParameter, p.WidenDelayMs)
	}
	if p.TargetPeakDB > 0 {
		return fmt.Errorf("%w: target peak must not be above full scale, got %f dBFS", ErrInvalidParameter, p.TargetPeakDB)
	}
	if p.GapSeconds < 0 {
		return fmt.Errorf("%w: gap must not be negative, got %f s", ErrInvalidParameter, p.GapSeconds)
	}

	return nil
}

// widenDelaySamples converts the configured Haas delay to whole samples.
func (p ChainParams) widenDelaySamples() int {
	return int(p.WidenDelayMs / 1000.0 * float64(p.SampleRate))
}

// gapFrames converts the configured gap to whole frames.
func (p ChainParams) gapFrames() int {
	return int(p.GapSeconds * float64(p.SampleRate))
}
