package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `{
  "entries": [
    {"text": "Be still.", "reference": "Psalm 46:10", "emotional_intent": "peaceful", "frequency_hz": 432, "audio": "clips/001.wav"},
    {"text": "Fear not.", "reference": "Isaiah 41:10", "emotional_intent": "reassuring", "frequency_hz": 432, "audio": "clips/002.wav"}
  ]
}`

// TestLoadFromReader tests parsing a well-formed manifest.
func TestLoadFromReader(t *testing.T) {
	m, err := LoadFromReader(strings.NewReader(validManifest))
	require.NoError(t, err)

	require.Len(t, m.Entries, 2)
	assert.Equal(t, "Be still.", m.Entries[0].Text)
	assert.Equal(t, "Psalm 46:10", m.Entries[0].Reference)
	assert.Equal(t, "peaceful", m.Entries[0].EmotionalIntent)
	assert.Equal(t, 432, m.Entries[0].FrequencyHz)
	assert.Equal(t, "clips/001.wav", m.Entries[0].Audio)
}

// TestLoadFromReader_Rejects tests validation and strict decoding.
func TestLoadFromReader_Rejects(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"Empty entries", `{"entries": []}`},
		{"No entries key", `{}`},
		{"Missing audio", `{"entries": [{"text": "x", "frequency_hz": 432}]}`},
		{"Negative frequency", `{"entries": [{"audio": "a.wav", "frequency_hz": -1}]}`},
		{"Unknown field", `{"entries": [], "extra": true}`},
		{"Malformed JSON", `{"entries": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(strings.NewReader(tt.json))
			assert.Error(t, err)
		})
	}
}

// TestLoadFromReader_EmptyManifestError tests the specific sentinel.
func TestLoadFromReader_EmptyManifestError(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader(`{"entries": []}`))
	assert.ErrorIs(t, err, ErrEmptyManifest)
}

// TestValidate_ReportsEveryBadEntry tests that validation joins all entry
// errors instead of stopping at the first.
func TestValidate_ReportsEveryBadEntry(t *testing.T) {
	m := &Manifest{Entries: []Entry{
		{Audio: ""},
		{Audio: "ok.wav"},
		{Audio: "", FrequencyHz: -5},
	}}

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Contains(t, err.Error(), "entry 1")
	assert.Contains(t, err.Error(), "entry 3")
}

// TestClipPaths tests ordered path extraction.
func TestClipPaths(t *testing.T) {
	m, err := LoadFromReader(strings.NewReader(validManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"clips/001.wav", "clips/002.wav"}, m.ClipPaths())
}

// TestLoad_File tests the file loading path.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.json")
	require.NoError(t, os.WriteFile(path, []byte(validManifest), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Entries, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
