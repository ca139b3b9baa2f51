package mastering

import (
	"errors"
	"fmt"

	"github.com/serenewav/mastering/internal/wavio"
)

// Sentinel errors for the processing chain. Stage and chain errors wrap
// these, so callers can classify failures with errors.Is.
var (
	// ErrInvalidParameter indicates a stage parameter outside its valid
	// range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidBand indicates a de-esser band that is empty, negative or
	// beyond the Nyquist frequency.
	ErrInvalidBand = errors.New("invalid frequency band")

	// ErrUnsupportedChannelLayout indicates a buffer whose channel count a
	// stage cannot process.
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")

	// ErrSilentBuffer indicates an all-zero program that cannot be
	// normalized to a target peak.
	ErrSilentBuffer = errors.New("buffer is silent")

	// ErrProgramFinalized indicates an append or finalize on a program
	// that has already been finalized.
	ErrProgramFinalized = errors.New("program already finalized")

	// ErrProgramNotFinalized indicates an export attempted before the
	// normalization pass has run.
	ErrProgramNotFinalized = errors.New("program not finalized")

	// ErrDecode indicates a clip that could not be read as WAV audio.
	ErrDecode = wavio.ErrDecode

	// ErrEncode indicates a program that could not be written as WAV audio.
	ErrEncode = wavio.ErrEncode
)

// ClipError reports which clip failed and in which stage, so a bad verse
// out of hundreds can be found and re-synthesized. Clip numbering is
// 1-based, matching the script manifest.
type ClipError struct {
	// Clip is the 1-based position of the failed clip in the run.
	Clip int

	// Stage names the chain step that failed: "decode" or a stage name.
	Stage string

	// Err is the underlying failure.
	Err error
}

func (e *ClipError) Error() string {
	return fmt.Sprintf("clip %d: stage %s: %v", e.Clip, e.Stage, e.Err)
}

func (e *ClipError) Unwrap() error {
	return e.Err
}
