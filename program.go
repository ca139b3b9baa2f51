package mastering

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/serenewav/mastering/internal/loudness"
	"github.com/serenewav/mastering/internal/wavio"
)

// Program accumulates processed stereo clips into one continuous recording.
// Clips are appended in script order, each followed by a silent gap, and the
// whole program is peak-normalized exactly once at the end. Normalizing the
// concatenation rather than each clip preserves the relative loudness
// between verses.
//
// A Program is not safe for concurrent use; the chain appends from a single
// goroutine.
type Program struct {
	left      []float64
	right     []float64
	rate      int
	gapFrames int
	clips     int
	finalized bool
}

// NewProgram creates an empty stereo program at the given rate with
// gapFrames of silence after every appended clip.
func NewProgram(rate, gapFrames int) *Program {
	return &Program{rate: rate, gapFrames: gapFrames}
}

// Append adds a processed stereo clip followed by the configured gap.
func (p *Program) Append(clip *Buffer) error {
	if p.finalized {
		return ErrProgramFinalized
	}
	if clip.NumChannels() != stereoChannels {
		return fmt.Errorf("%w: program needs stereo clips, got %d channels",
			ErrUnsupportedChannelLayout, clip.NumChannels())
	}
	if clip.Rate != p.rate {
		return fmt.Errorf("%w: clip rate %d does not match program rate %d",
			ErrInvalidParameter, clip.Rate, p.rate)
	}

	p.left = append(p.left, clip.Channels[0]...)
	p.right = append(p.right, clip.Channels[1]...)
	p.left = append(p.left, make([]float64, p.gapFrames)...)
	p.right = append(p.right, make([]float64, p.gapFrames)...)
	p.clips++
	return nil
}

// NumClips returns how many clips have been appended.
func (p *Program) NumClips() int {
	return p.clips
}

// Len returns the current program length in frames.
func (p *Program) Len() int {
	return len(p.left)
}

// Duration returns the current playing time of the program.
func (p *Program) Duration() time.Duration {
	if p.rate <= 0 {
		return 0
	}
	return time.Duration(float64(p.Len()) / float64(p.rate) * float64(time.Second))
}

// Buffer exposes the program audio. The returned buffer shares storage with
// the program; treat it as read-only.
func (p *Program) Buffer() *Buffer {
	return NewStereo(p.left, p.right, p.rate)
}

// Finalize normalizes the whole program to the target peak. It may run only
// once; further appends are rejected afterwards. An all-silent program
// yields ErrSilentBuffer, surfacing upstream synthesis failures instead of
// shipping an empty recording.
func (p *Program) Finalize(targetPeakDB float64) error {
	if p.finalized {
		return ErrProgramFinalized
	}

	channels := [][]float64{p.left, p.right}
	peak := loudness.Peak(channels)
	if peak < loudness.SilenceFloor {
		return fmt.Errorf("%w: program peak %e below %e", ErrSilentBuffer, peak, loudness.SilenceFloor)
	}

	loudness.ApplyGain(channels, loudness.Gain(peak, targetPeakDB))
	p.finalized = true
	return nil
}

// WriteWAV exports the finalized program as PCM WAV at the given bit depth.
// The file is written to a uniquely named sibling and renamed into place on
// success, so a failed export never leaves a partial program at path.
func (p *Program) WriteWAV(path string, bitDepth int) (err error) {
	if !p.finalized {
		return ErrProgramNotFinalized
	}

	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))

	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = wavio.EncodeFile(tmp, [][]float64{p.left, p.right}, p.rate, bitDepth); err != nil {
		return err
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: rename %q: %v", wavio.ErrEncode, path, err)
	}
	return nil
}
