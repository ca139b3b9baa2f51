// Package script loads the production manifest that drives a mastering run.
//
// A manifest is the hand-off from the upstream synthesis pipeline: one entry
// per spoken verse, carrying the text and emotional intent that selected the
// voice upstream, and the location of the synthesized mono WAV. The
// mastering chain itself consumes only the ordered audio locations; the
// remaining fields ride along for the metadata collaborator.
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Validation errors.
var (
	// ErrEmptyManifest indicates a manifest with no entries.
	ErrEmptyManifest = errors.New("manifest has no entries")

	// ErrInvalidEntry indicates an entry missing required fields.
	ErrInvalidEntry = errors.New("invalid manifest entry")
)

// Entry is one verse of the program script.
type Entry struct {
	// Text is the spoken text, used upstream by synthesis and downstream
	// by metadata generation.
	Text string `json:"text"`

	// Reference is the source citation for the verse.
	Reference string `json:"reference"`

	// EmotionalIntent selected the synthesis voice upstream. The mastering
	// chain does not interpret it.
	EmotionalIntent string `json:"emotional_intent"`

	// FrequencyHz is the verse's reference tuning frequency.
	FrequencyHz int `json:"frequency_hz"`

	// Audio is the path of the synthesized mono WAV clip for this verse.
	Audio string `json:"audio"`
}

// Manifest is the ordered list of verses for one program.
type Manifest struct {
	Entries []Entry `json:"entries"`
}

// Load reads and validates the JSON manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("script: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	m, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("script: parse %q: %w", path, err)
	}
	return m, nil
}

// LoadFromReader decodes a manifest from r and validates the result.
// Useful in tests where manifests are built from string literals.
func LoadFromReader(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the manifest is usable by the chain: at least one
// entry, every entry with an audio location, and sane tuning frequencies.
func (m *Manifest) Validate() error {
	if len(m.Entries) == 0 {
		return ErrEmptyManifest
	}

	var errs []error
	for i, entry := range m.Entries {
		if entry.Audio == "" {
			errs = append(errs, fmt.Errorf("%w: entry %d has no audio location", ErrInvalidEntry, i+1))
		}
		if entry.FrequencyHz < 0 {
			errs = append(errs, fmt.Errorf("%w: entry %d has negative frequency %d", ErrInvalidEntry, i+1, entry.FrequencyHz))
		}
	}

	return errors.Join(errs...)
}

// ClipPaths returns the ordered audio locations, the only manifest data the
// chain consumes.
func (m *Manifest) ClipPaths() []string {
	paths := make([]string, len(m.Entries))
	for i, entry := range m.Entries {
		paths[i] = entry.Audio
	}
	return paths
}
