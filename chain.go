package mastering

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/serenewav/mastering/internal/wavio"
)

// clipState tracks a clip through its lifecycle for logging. Clips move
// strictly forward: pending, decoding, transforming, appended.
type clipState int

const (
	clipPending clipState = iota
	clipDecoding
	clipTransforming
	clipAppended
)

func (s clipState) String() string {
	switch s {
	case clipPending:
		return "pending"
	case clipDecoding:
		return "decoding"
	case clipTransforming:
		return "transforming"
	case clipAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// Chain runs the full mastering pipeline: decode every clip, transform it
// through the fixed stage list, join the results in script order and
// normalize once. Clips are transformed concurrently; appending and
// normalization stay sequential, so output order never depends on worker
// scheduling.
type Chain struct {
	params  ChainParams
	stages  []Stage
	log     *slog.Logger
	workers int
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the chain's logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(c *Chain) {
		if log != nil {
			c.log = log
		}
	}
}

// WithWorkers caps how many clips are transformed in parallel. Values below
// one keep the default of one worker per CPU.
func WithWorkers(n int) Option {
	return func(c *Chain) {
		if n > 0 {
			c.workers = n
		}
	}
}

// NewChain validates params, designs the interpolation bank and impulse
// response once, and returns a chain ready to run programs.
func NewChain(params ChainParams, opts ...Option) (*Chain, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	stages, err := buildStages(params)
	if err != nil {
		return nil, err
	}

	c := &Chain{
		params:  params,
		stages:  stages,
		log:     slog.New(slog.DiscardHandler),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run masters the clips at the given paths into one finalized program.
// Clip order in the program matches path order regardless of which clip
// finishes processing first. Any failure aborts the whole run; per-clip
// failures arrive as a *ClipError naming the clip and stage.
func (c *Chain) Run(ctx context.Context, clipPaths []string) (*Program, error) {
	if len(clipPaths) == 0 {
		return nil, fmt.Errorf("%w: no clips to process", ErrInvalidParameter)
	}

	c.log.Info("mastering run started",
		"clips", len(clipPaths),
		"sample_rate", c.params.SampleRate,
		"workers", c.workers)

	// Transform concurrently into an index-keyed slice; slot i belongs to
	// exactly one goroutine, so no further synchronization is needed.
	results := make([]*Buffer, len(clipPaths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, path := range clipPaths {
		g.Go(func() error {
			buf, err := c.processClip(gctx, i+1, path)
			if err != nil {
				return err
			}
			results[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Sequential join in script order.
	program := NewProgram(c.params.SampleRate, c.params.gapFrames())
	for i, buf := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := program.Append(buf); err != nil {
			return nil, &ClipError{Clip: i + 1, Stage: "append", Err: err}
		}
		c.log.Debug("clip state", "clip", i+1, "state", clipAppended, "program_frames", program.Len())
	}

	if err := program.Finalize(c.params.TargetPeakDB); err != nil {
		return nil, fmt.Errorf("finalize program: %w", err)
	}

	c.log.Info("program finalized",
		"clips", program.NumClips(),
		"duration", program.Duration())
	return program, nil
}

// processClip decodes and transforms one clip. clipNum is 1-based.
func (c *Chain) processClip(ctx context.Context, clipNum int, path string) (*Buffer, error) {
	log := c.log.With("clip", clipNum, "path", path)
	log.Debug("clip state", "state", clipDecoding)

	channels, info, err := wavio.DecodeFile(path)
	if err != nil {
		return nil, &ClipError{Clip: clipNum, Stage: "decode", Err: err}
	}
	if info.NumChannels != monoChannels {
		return nil, &ClipError{Clip: clipNum, Stage: "decode", Err: fmt.Errorf(
			"%w: synthesis delivers mono clips, got %d channels",
			ErrUnsupportedChannelLayout, info.NumChannels)}
	}
	if info.SampleRate != c.params.SampleRate {
		return nil, &ClipError{Clip: clipNum, Stage: "decode", Err: fmt.Errorf(
			"%w: clip rate %d does not match configured rate %d",
			ErrInvalidParameter, info.SampleRate, c.params.SampleRate)}
	}

	buf := NewMono(channels[0], info.SampleRate)
	log.Debug("clip state", "state", clipTransforming, "frames", buf.Len())

	for _, stage := range c.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf, err = stage.Process(buf)
		if err != nil {
			return nil, &ClipError{Clip: clipNum, Stage: stage.Name(), Err: err}
		}
		log.Debug("stage done", "stage", stage.Name(), "frames", buf.Len())
	}

	return buf, nil
}
