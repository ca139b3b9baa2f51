package mastering

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/serenewav/mastering/internal/filter"
	"github.com/serenewav/mastering/internal/pitch"
	"github.com/serenewav/mastering/internal/reverb"
	"github.com/serenewav/mastering/internal/widen"
)

// Stage names, reported in ClipError and in logs.
const (
	StagePitch  = "pitch"
	StageDeess  = "deess"
	StageReverb = "reverb"
	StageWiden  = "widen"
)

// Stage is one step of the per-clip processing chain. Process returns a new
// buffer and never mutates its input. Implementations must be safe for
// concurrent use across clips.
type Stage interface {
	// Name identifies the stage in errors and logs.
	Name() string

	// Process transforms a buffer.
	Process(buf *Buffer) (*Buffer, error)
}

// buildStages constructs the ordered per-clip chain for the given
// parameters. The order is fixed: pitch, de-ess, reverb, widen. The stereo
// widener runs last because every earlier stage expects mono input.
func buildStages(p ChainParams) ([]Stage, error) {
	shifter, err := pitch.NewShifter(p.PitchRatio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	ir := reverbImpulse(p)

	return []Stage{
		&pitchStage{shifter: shifter},
		&deessStage{
			lowHz:     p.DeessLowHz,
			highHz:    p.DeessHighHz,
			threshold: p.DeessThreshold,
			ratio:     p.DeessRatio,
		},
		&reverbStage{ir: ir, wetMix: p.ReverbWetMix},
		&widenStage{delaySamples: p.widenDelaySamples()},
	}, nil
}

// reverbImpulse generates the run's shared impulse response. A non-zero
// seed pins the noise source, so the same configuration reproduces the same
// room on every run.
func reverbImpulse(p ChainParams) []float64 {
	var rng *rand.Rand
	if p.ReverbSeed != 0 {
		rng = rand.New(rand.NewPCG(p.ReverbSeed, p.ReverbSeed))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return reverb.ImpulseResponse(p.SampleRate, p.ReverbSeconds, p.ReverbDecay, rng)
}

// pitchStage retunes each channel through a shared immutable resampler.
type pitchStage struct {
	shifter *pitch.Shifter
}

func (s *pitchStage) Name() string { return StagePitch }

func (s *pitchStage) Process(buf *Buffer) (*Buffer, error) {
	out := make([][]float64, buf.NumChannels())
	for ch, samples := range buf.Channels {
		out[ch] = s.shifter.Shift(samples)
	}
	return &Buffer{Channels: out, Rate: buf.Rate}, nil
}

// deessStage compresses sibilant energy. It isolates the configured band
// with a zero-phase Butterworth bandpass, compresses samples above the
// threshold and subtracts the removed portion from the full signal, leaving
// everything outside the band untouched.
type deessStage struct {
	lowHz     float64
	highHz    float64
	threshold float64
	ratio     float64
}

func (s *deessStage) Name() string { return StageDeess }

func (s *deessStage) Process(buf *Buffer) (*Buffer, error) {
	nyquist := float64(buf.Rate) / 2
	if s.highHz >= nyquist {
		return nil, fmt.Errorf("%w: band [%f, %f] Hz exceeds Nyquist %f Hz at rate %d",
			ErrInvalidBand, s.lowHz, s.highHz, nyquist, buf.Rate)
	}

	out := make([][]float64, buf.NumChannels())
	for ch, samples := range buf.Channels {
		out[ch] = s.deessChannel(samples, buf.Rate)
	}
	return &Buffer{Channels: out, Rate: buf.Rate}, nil
}

func (s *deessStage) deessChannel(samples []float64, rate int) []float64 {
	sibilants := filter.BandIsolate(samples, float64(rate), s.lowHz, s.highHz)

	out := make([]float64, len(samples))
	for i, v := range samples {
		sib := sibilants[i]
		compressed := sib
		if math.Abs(sib) > s.threshold {
			compressed = sib / s.ratio
		}
		out[i] = v - (sib - compressed)
	}
	return out
}

// reverbStage convolves each channel with a shared synthetic impulse
// response. The convolver carries scratch buffers, so each Process call
// builds its own from the shared read-only response.
type reverbStage struct {
	ir     []float64
	wetMix float64
}

func (s *reverbStage) Name() string { return StageReverb }

func (s *reverbStage) Process(buf *Buffer) (*Buffer, error) {
	proc := reverb.NewProcessor(s.ir, s.wetMix)

	out := make([][]float64, buf.NumChannels())
	for ch, samples := range buf.Channels {
		out[ch] = proc.Apply(samples)
	}
	return &Buffer{Channels: out, Rate: buf.Rate}, nil
}

// widenStage turns a mono buffer into a Haas-delayed stereo pair.
type widenStage struct {
	delaySamples int
}

func (s *widenStage) Name() string { return StageWiden }

func (s *widenStage) Process(buf *Buffer) (*Buffer, error) {
	if buf.NumChannels() != monoChannels {
		return nil, fmt.Errorf("%w: widener needs mono input, got %d channels",
			ErrUnsupportedChannelLayout, buf.NumChannels())
	}
	if s.delaySamples >= buf.Len() {
		return nil, fmt.Errorf("%w: widen delay of %d samples is not shorter than the %d-sample clip",
			ErrInvalidParameter, s.delaySamples, buf.Len())
	}

	left, right := widen.Haas(buf.Channels[0], s.delaySamples)
	return NewStereo(left, right, buf.Rate), nil
}
