package mastering

import "time"

// Channel counts of the layouts the chain understands.
const (
	monoChannels   = 1
	stereoChannels = 2
)

// Buffer holds audio in planar float64 form: one slice per channel, full
// scale at ±1.0. Mono buffers have one channel, stereo buffers two of
// equal length.
type Buffer struct {
	// Channels holds the per-channel sample data.
	Channels [][]float64

	// Rate is the sample rate in Hz.
	Rate int
}

// NewMono wraps a single channel of samples. The slice is not copied.
func NewMono(samples []float64, rate int) *Buffer {
	return &Buffer{Channels: [][]float64{samples}, Rate: rate}
}

// NewStereo wraps a left/right channel pair. The slices are not copied.
func NewStereo(left, right []float64, rate int) *Buffer {
	return &Buffer{Channels: [][]float64{left, right}, Rate: rate}
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// Len returns the number of frames per channel.
func (b *Buffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playing time of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Len()) / float64(b.Rate) * float64(time.Second))
}
