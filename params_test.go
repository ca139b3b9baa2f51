package mastering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultParams tests that the production defaults validate.
func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())

	assert.InDelta(t, 432.0/440.0, p.PitchRatio, 1e-15)
	assert.Equal(t, 48000, p.SampleRate)
	assert.InDelta(t, 0.4, p.ReverbWetMix, 1e-15)
}

// TestChainParams_Validate tests the parameter taxonomy: each bad value
// fails with its specific sentinel.
func TestChainParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ChainParams)
		wantErr error
	}{
		{"Zero sample rate", func(p *ChainParams) { p.SampleRate = 0 }, ErrInvalidParameter},
		{"Pitch ratio too low", func(p *ChainParams) { p.PitchRatio = 0.1 }, ErrInvalidParameter},
		{"Pitch ratio too high", func(p *ChainParams) { p.PitchRatio = 3.0 }, ErrInvalidParameter},
		{"Zero band low edge", func(p *ChainParams) { p.DeessLowHz = 0 }, ErrInvalidBand},
		{"Inverted band", func(p *ChainParams) { p.DeessLowHz = 9000 }, ErrInvalidBand},
		{"Band above Nyquist", func(p *ChainParams) { p.DeessHighHz = 25000 }, ErrInvalidBand},
		{"Band at Nyquist", func(p *ChainParams) { p.DeessHighHz = 24000 }, ErrInvalidBand},
		{"Zero threshold", func(p *ChainParams) { p.DeessThreshold = 0 }, ErrInvalidParameter},
		{"Unity compression ratio", func(p *ChainParams) { p.DeessRatio = 1.0 }, ErrInvalidParameter},
		{"Compression ratio below one", func(p *ChainParams) { p.DeessRatio = 0.5 }, ErrInvalidParameter},
		{"Negative wet mix", func(p *ChainParams) { p.ReverbWetMix = -0.1 }, ErrInvalidParameter},
		{"Wet mix above one", func(p *ChainParams) { p.ReverbWetMix = 1.1 }, ErrInvalidParameter},
		{"Zero reverb decay", func(p *ChainParams) { p.ReverbDecay = 0 }, ErrInvalidParameter},
		{"Zero reverb length", func(p *ChainParams) { p.ReverbSeconds = 0 }, ErrInvalidParameter},
		{"Negative widen delay", func(p *ChainParams) { p.WidenDelayMs = -1 }, ErrInvalidParameter},
		{"Positive target peak", func(p *ChainParams) { p.TargetPeakDB = 0.5 }, ErrInvalidParameter},
		{"Negative gap", func(p *ChainParams) { p.GapSeconds = -1 }, ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestChainParams_ValidBoundaries tests accepted edge values.
func TestChainParams_ValidBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ChainParams)
	}{
		{"Zero wet mix bypasses reverb", func(p *ChainParams) { p.ReverbWetMix = 0 }},
		{"Full wet mix", func(p *ChainParams) { p.ReverbWetMix = 1 }},
		{"Zero widen delay", func(p *ChainParams) { p.WidenDelayMs = 0 }},
		{"Zero gap", func(p *ChainParams) { p.GapSeconds = 0 }},
		{"Full scale target", func(p *ChainParams) { p.TargetPeakDB = 0 }},
		{"Unity pitch", func(p *ChainParams) { p.PitchRatio = 1.0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			assert.NoError(t, p.Validate())
		})
	}
}

// TestChainParams_Conversions tests the sample domain conversions.
func TestChainParams_Conversions(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 720, p.widenDelaySamples(), "15 ms at 48 kHz")
	assert.Equal(t, 96000, p.gapFrames(), "2 s at 48 kHz")
}

// TestBuffer tests the buffer accessors.
func TestBuffer(t *testing.T) {
	mono := NewMono(make([]float64, 48000), 48000)
	assert.Equal(t, 1, mono.NumChannels())
	assert.Equal(t, 48000, mono.Len())
	assert.Equal(t, "1s", mono.Duration().String())

	stereo := NewStereo(make([]float64, 100), make([]float64, 100), 48000)
	assert.Equal(t, 2, stereo.NumChannels())
	assert.Equal(t, 100, stereo.Len())

	empty := &Buffer{}
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 0, empty.NumChannels())
}
