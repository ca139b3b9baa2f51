// Package config loads the YAML settings file that controls a mastering run.
//
// Every field has a production default, so a missing or partial file is
// never fatal. Unknown YAML keys are rejected to catch typos early.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for a production run.
const (
	// DefaultSampleRate is the processing rate clips arrive at from the
	// synthesis stage.
	DefaultSampleRate = 48000

	// DefaultBitDepth is the PCM bit depth of the exported program.
	DefaultBitDepth = 16

	// DefaultLogLevel is the slog level name used when none is configured.
	DefaultLogLevel = "info"
)

// ErrInvalidConfig indicates a configuration value outside its valid range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the run settings read from YAML.
type Config struct {
	// SampleRate is the required sample rate of every input clip and of
	// the exported program, in Hz.
	SampleRate int `yaml:"sample_rate"`

	// BitDepth is the PCM bit depth of the exported WAV (16, 24 or 32).
	BitDepth int `yaml:"bit_depth"`

	// Workers caps how many clips are transformed in parallel.
	// Zero means one worker per CPU.
	Workers int `yaml:"workers"`

	// LogLevel is the slog level name: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// Chain holds the per-stage processing settings.
	Chain Chain `yaml:"chain"`
}

// Chain holds the per-stage settings of the processing chain. Zero values
// mean "use the stage default".
type Chain struct {
	// PitchRatio retunes every clip; values below one lower the pitch.
	PitchRatio float64 `yaml:"pitch_ratio"`

	// DeessLowHz and DeessHighHz bound the sibilance band.
	DeessLowHz  float64 `yaml:"deess_low_hz"`
	DeessHighHz float64 `yaml:"deess_high_hz"`

	// DeessThreshold is the absolute sibilant amplitude above which
	// compression engages.
	DeessThreshold float64 `yaml:"deess_threshold"`

	// DeessRatio is the compression ratio applied above the threshold.
	DeessRatio float64 `yaml:"deess_ratio"`

	// ReverbWetMix blends the convolved signal into the dry one, in [0, 1].
	ReverbWetMix float64 `yaml:"reverb_wet_mix"`

	// ReverbDecay is the exponential decay rate of the impulse response.
	ReverbDecay float64 `yaml:"reverb_decay"`

	// ReverbSeconds is the impulse response length in seconds.
	ReverbSeconds float64 `yaml:"reverb_seconds"`

	// ReverbSeed seeds impulse response generation. Zero draws a fresh
	// random response per run.
	ReverbSeed uint64 `yaml:"reverb_seed"`

	// WidenDelayMs is the interchannel delay of the stereo widener.
	WidenDelayMs float64 `yaml:"widen_delay_ms"`

	// TargetPeakDB is the program peak after normalization, in dBFS.
	TargetPeakDB float64 `yaml:"target_peak_db"`

	// GapSeconds is the silence inserted between consecutive clips.
	GapSeconds float64 `yaml:"gap_seconds"`
}

// Default returns the production configuration.
func Default() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		BitDepth:   DefaultBitDepth,
		LogLevel:   DefaultLogLevel,
	}
}

// Load reads the YAML file at path, applies defaults for absent fields and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults and validates the
// result.
func LoadFromReader(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the run-level settings. Chain settings are validated by
// the chain itself once defaults have been filled in.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	switch c.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit_depth must be 16, 24 or 32, got %d", ErrInvalidConfig, c.BitDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}
