// Package wavio converts between PCM WAV files and the chain's planar
// float64 representation. Decode streams the file in chunks; Encode writes
// the header once and streams sample blocks, so a multi-hour program never
// needs a second in-memory copy on its way to disk.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Sentinel errors for the adapter boundary.
var (
	// ErrDecode indicates a malformed or unsupported audio container.
	ErrDecode = errors.New("failed to decode audio")

	// ErrEncode indicates an unsupported rate/depth/channel combination
	// or an I/O failure while writing.
	ErrEncode = errors.New("failed to encode audio")
)

// PCM sample format constants.
const (
	BitDepth16 = 16
	BitDepth24 = 24
	BitDepth32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// decodeChunkFrames is the per-read frame count while streaming a file.
	decodeChunkFrames = 65536
)

// PCMInfo describes the sample format of a decoded file.
type PCMInfo struct {
	SampleRate  int
	BitDepth    int
	NumChannels int
}

// maxValue returns the full-scale integer value for a bit depth, used to
// map integer PCM to [-1, 1] and back. Scaling always uses the source bit
// depth so a 16-bit file and a 24-bit file of the same material decode to
// the same float amplitudes.
func maxValue(bitDepth int) (float64, error) {
	switch bitDepth {
	case BitDepth16:
		return maxInt16, nil
	case BitDepth24:
		return maxInt24, nil
	case BitDepth32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, bitDepth)
	}
}

// DecodeFile reads a PCM WAV file into planar float64 channels normalized
// to [-1, 1]. Channel order is preserved as stored.
func DecodeFile(path string) ([][]float64, PCMInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, PCMInfo{}, fmt.Errorf("%w: open %q: %v", ErrDecode, path, err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, PCMInfo{}, fmt.Errorf("%w: %q is not a valid WAV file", ErrDecode, path)
	}

	format := decoder.Format()
	info := PCMInfo{
		SampleRate:  format.SampleRate,
		BitDepth:    int(decoder.BitDepth),
		NumChannels: format.NumChannels,
	}

	if info.NumChannels < 1 {
		return nil, PCMInfo{}, fmt.Errorf("%w: %q reports %d channels", ErrDecode, path, info.NumChannels)
	}

	maxVal, err := maxValue(info.BitDepth)
	if err != nil {
		return nil, PCMInfo{}, err
	}
	invMaxVal := 1.0 / maxVal

	// Preallocate from the reported duration; append handles files whose
	// header undercounts.
	channels := make([][]float64, info.NumChannels)
	if duration, err := decoder.Duration(); err == nil {
		estFrames := int(duration.Seconds() * float64(info.SampleRate))
		for ch := range channels {
			channels[ch] = make([]float64, 0, estFrames)
		}
	}

	intBuf := &audio.IntBuffer{
		Data:   make([]int, decodeChunkFrames*info.NumChannels),
		Format: format,
	}

	for {
		frames, err := decoder.PCMBuffer(intBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, PCMInfo{}, fmt.Errorf("%w: read %q: %v", ErrDecode, path, err)
		}
		if frames == 0 {
			break
		}

		for ch := range channels {
			for i := range frames {
				channels[ch] = append(channels[ch], float64(intBuf.Data[i*info.NumChannels+ch])*invMaxVal)
			}
		}

		intBuf.Data = intBuf.Data[:cap(intBuf.Data)]
	}

	return channels, info, nil
}
