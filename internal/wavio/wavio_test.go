package wavio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenewav/mastering/internal/testutil"
)

const testRate = 48000

// TestRoundTrip tests that decode(encode(x)) reproduces x within the
// quantization error of the bit depth.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		channels int
	}{
		{"16-bit mono", 16, 1},
		{"16-bit stereo", 16, 2},
		{"24-bit mono", 24, 1},
		{"24-bit stereo", 24, 2},
		{"32-bit mono", 32, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channels := make([][]float64, tt.channels)
			for ch := range channels {
				channels[ch] = testutil.Sine(440*float64(ch+1), testRate, 0.8, 4800)
			}

			path := filepath.Join(t.TempDir(), "roundtrip.wav")
			require.NoError(t, EncodeFile(path, channels, testRate, tt.bitDepth))

			decoded, info, err := DecodeFile(path)
			require.NoError(t, err)

			assert.Equal(t, testRate, info.SampleRate)
			assert.Equal(t, tt.bitDepth, info.BitDepth)
			assert.Equal(t, tt.channels, info.NumChannels)

			maxVal, err := maxValue(tt.bitDepth)
			require.NoError(t, err)
			quantStep := 1.0 / maxVal

			require.Len(t, decoded, tt.channels)
			for ch := range channels {
				require.Len(t, decoded[ch], len(channels[ch]))
				for i := range channels[ch] {
					require.InDelta(t, channels[ch][i], decoded[ch][i], quantStep*1.01,
						"channel %d sample %d outside quantization error", ch, i)
				}
			}
		})
	}
}

// TestEncode_ClampsOverRange tests that samples beyond full scale clamp
// instead of wrapping.
func TestEncode_ClampsOverRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clamp.wav")
	in := [][]float64{{1.5, -1.5, 0.0}}
	require.NoError(t, EncodeFile(path, in, testRate, 16))

	decoded, _, err := DecodeFile(path)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, decoded[0][0], 1e-4)
	assert.InDelta(t, -1.0, decoded[0][1], 1e-4)
	assert.InDelta(t, 0.0, decoded[0][2], 1e-9)
}

// TestEncode_LargeBuffer tests the chunked streaming path across multiple
// write chunks.
func TestEncode_LargeBuffer(t *testing.T) {
	frames := encodeChunkFrames*2 + 1234
	left := testutil.Sine(440, testRate, 0.5, frames)
	right := testutil.Sine(660, testRate, 0.5, frames)

	path := filepath.Join(t.TempDir(), "large.wav")
	require.NoError(t, EncodeFile(path, [][]float64{left, right}, testRate, 16))

	decoded, info, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, info.NumChannels)
	require.Len(t, decoded[0], frames)
	require.Len(t, decoded[1], frames)
}

// TestEncode_InvalidSettings tests rejection of unsupported formats.
func TestEncode_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	mono := [][]float64{{0.1, 0.2}}

	tests := []struct {
		name     string
		channels [][]float64
		rate     int
		bitDepth int
	}{
		{"Zero sample rate", mono, 0, 16},
		{"Bad bit depth", mono, testRate, 12},
		{"Too many channels", [][]float64{{0}, {0}, {0}}, testRate, 16},
		{"No channels", nil, testRate, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "invalid.wav")
			err := EncodeFile(path, tt.channels, tt.rate, tt.bitDepth)
			assert.ErrorIs(t, err, ErrEncode)
		})
	}
}

// TestEncode_MismatchedChannelLengths tests rejection of ragged input.
func TestEncode_MismatchedChannelLengths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.wav")
	err := EncodeFile(path, [][]float64{{0.1, 0.2}, {0.1}}, testRate, 16)
	assert.ErrorIs(t, err, ErrEncode)
}

// TestDecode_MissingFile tests the decode error on a nonexistent path.
func TestDecode_MissingFile(t *testing.T) {
	_, _, err := DecodeFile(filepath.Join(t.TempDir(), "nope.wav"))
	assert.ErrorIs(t, err, ErrDecode)
}

// TestDecode_NotWAV tests the decode error on a non-WAV file.
func TestDecode_NotWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "text.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not audio"), 0o644))

	_, _, err := DecodeFile(path)
	assert.ErrorIs(t, err, ErrDecode)
}

// TestMaxValue tests the bit depth to full-scale mapping.
func TestMaxValue(t *testing.T) {
	for depth, want := range map[int]float64{16: 32767, 24: 8388607, 32: 2147483647} {
		got, err := maxValue(depth)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := maxValue(8)
	assert.Error(t, err)
}
