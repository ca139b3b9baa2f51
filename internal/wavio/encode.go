package wavio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/tphakala/simd/f64"
)

// WAV container constants.
const (
	wavHeaderSize      = 44 // Total WAV header size in bytes
	wavRiffHeaderSize  = 36 // RIFF header size (file size - 8 = riffHeaderSize + dataSize)
	wavPCMSubchunkSize = 16 // fmt subchunk size for PCM format
	wavFileSizeOffset  = 4  // Byte offset for file size field in header
	wavDataSizeOffset  = 40 // Byte offset for data size field in header

	bytesPerSample16 = 2
	bytesPerSample24 = 3
	bytesPerSample32 = 4
	bitsPerByte      = 8

	bitShift8  = 8
	bitShift16 = 16

	monoChannels   = 1
	stereoChannels = 2

	// encodeChunkFrames is the per-write frame count while streaming
	// planar audio out.
	encodeChunkFrames = 65536

	// writerBufferSize is the bufio buffer ahead of the file.
	writerBufferSize = 256 * 1024

	uint32Size = 4
)

// Encoder writes PCM WAV incrementally: header first with placeholder
// sizes, then sample blocks, with the sizes patched on Close. It writes PCM
// bytes directly instead of going through go-audio's per-sample encoder,
// which is far too slow for multi-hour programs.
type Encoder struct {
	w          *bufio.Writer
	f          *os.File
	sampleRate int
	bitDepth   int
	channels   int
	dataSize   uint32
	maxVal     float64
	interleave []float64
	byteBuf    []byte
}

// NewEncoder creates an encoder writing to f. Only mono and stereo at
// 16/24/32-bit are supported; anything else wraps ErrEncode.
func NewEncoder(f *os.File, sampleRate, bitDepth, channels int) (*Encoder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrEncode, sampleRate)
	}

	if channels != monoChannels && channels != stereoChannels {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrEncode, channels)
	}

	maxVal, err := maxValue(bitDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrEncode, bitDepth)
	}

	e := &Encoder{
		w:          bufio.NewWriterSize(f, writerBufferSize),
		f:          f,
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		channels:   channels,
		maxVal:     maxVal,
		interleave: make([]float64, encodeChunkFrames*channels),
		byteBuf:    make([]byte, encodeChunkFrames*channels*(bitDepth/bitsPerByte)),
	}

	if err := e.writeHeader(); err != nil {
		return nil, fmt.Errorf("%w: write header: %v", ErrEncode, err)
	}

	return e, nil
}

func (e *Encoder) writeHeader() error {
	byteRate := e.sampleRate * e.channels * (e.bitDepth / bitsPerByte)
	blockAlign := e.channels * (e.bitDepth / bitsPerByte)

	header := make([]byte, wavHeaderSize)

	// RIFF header
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0) // Placeholder for file size - 8
	copy(header[8:12], "WAVE")

	// fmt subchunk
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], 1) // AudioFormat (1 = PCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(e.channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(e.sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(e.bitDepth))

	// data subchunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0) // Placeholder for data size

	_, err := e.w.Write(header)
	return err
}

// WritePlanar streams planar channels to the file in chunks. All channels
// must have equal length and match the encoder's channel count.
func (e *Encoder) WritePlanar(channels [][]float64) error {
	if len(channels) != e.channels {
		return fmt.Errorf("%w: got %d channels, encoder configured for %d", ErrEncode, len(channels), e.channels)
	}

	frames := 0
	if len(channels) > 0 {
		frames = len(channels[0])
	}
	for ch, data := range channels {
		if len(data) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, expected %d", ErrEncode, ch, len(data), frames)
		}
	}

	for offset := 0; offset < frames; offset += encodeChunkFrames {
		end := offset + encodeChunkFrames
		if end > frames {
			end = frames
		}

		if err := e.writeChunk(channels, offset, end); err != nil {
			return err
		}
	}

	return nil
}

// writeChunk interleaves, quantizes, and writes frames [start, end).
func (e *Encoder) writeChunk(channels [][]float64, start, end int) error {
	n := end - start

	var interleaved []float64
	switch e.channels {
	case monoChannels:
		interleaved = channels[0][start:end]
	case stereoChannels:
		interleaved = e.interleave[:n*stereoChannels]
		f64.Interleave2(interleaved, channels[0][start:end], channels[1][start:end])
	}

	buf := e.byteBuf[:len(interleaved)*(e.bitDepth/bitsPerByte)]

	for i, sample := range interleaved {
		// Clamp to [-1, 1] before quantizing.
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}
		v := int(sample * e.maxVal)

		switch e.bitDepth {
		case BitDepth16:
			binary.LittleEndian.PutUint16(buf[i*bytesPerSample16:], uint16(int16(v)))
		case BitDepth24:
			buf[i*bytesPerSample24] = byte(v)
			buf[i*bytesPerSample24+1] = byte(v >> bitShift8)
			buf[i*bytesPerSample24+2] = byte(v >> bitShift16)
		case BitDepth32:
			binary.LittleEndian.PutUint32(buf[i*bytesPerSample32:], uint32(int32(v)))
		}
	}

	written, err := e.w.Write(buf)
	e.dataSize += uint32(written)
	if err != nil {
		return fmt.Errorf("%w: write samples: %v", ErrEncode, err)
	}

	return nil
}

// Close flushes buffered data and patches the RIFF and data sizes in the
// header. The file is only a valid WAV after a successful Close.
func (e *Encoder) Close() error {
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("%w: flush: %v", ErrEncode, err)
	}

	fileSize := wavRiffHeaderSize + e.dataSize

	if _, err := e.f.Seek(wavFileSizeOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek header: %v", ErrEncode, err)
	}
	sizeBytes := make([]byte, uint32Size)
	binary.LittleEndian.PutUint32(sizeBytes, fileSize)
	if _, err := e.f.Write(sizeBytes); err != nil {
		return fmt.Errorf("%w: patch file size: %v", ErrEncode, err)
	}

	if _, err := e.f.Seek(wavDataSizeOffset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek data size: %v", ErrEncode, err)
	}
	binary.LittleEndian.PutUint32(sizeBytes, e.dataSize)
	if _, err := e.f.Write(sizeBytes); err != nil {
		return fmt.Errorf("%w: patch data size: %v", ErrEncode, err)
	}

	return nil
}

// EncodeFile writes planar channels to path as PCM WAV in one call. Used
// for clip-sized buffers; the Program path streams through an Encoder
// directly with a temp-file-and-rename dance around it.
func EncodeFile(path string, channels [][]float64, sampleRate, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %q: %v", ErrEncode, path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("%w: close %q: %v", ErrEncode, path, closeErr)
		}
	}()

	enc, err := NewEncoder(f, sampleRate, bitDepth, len(channels))
	if err != nil {
		return err
	}

	if err := enc.WritePlanar(channels); err != nil {
		return err
	}

	return enc.Close()
}
