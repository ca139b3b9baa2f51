// Command master-program masters a set of synthesized voice clips into one
// continuous WAV program.
//
// It reads the script manifest produced by the synthesis stage, runs every
// clip through the processing chain (pitch retune, de-ess, reverb, stereo
// widen), joins the results with silent gaps, normalizes the whole program
// and exports it for the video assembly stage.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/serenewav/mastering"
	"github.com/serenewav/mastering/internal/config"
	"github.com/serenewav/mastering/internal/script"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Manifest string `arg:"" name:"manifest" help:"Script manifest JSON from the synthesis stage" type:"existingfile"`
	Output   string `short:"o" default:"program.wav" help:"Output WAV path" type:"path"`
	Config   string `short:"c" default:"mastering.yaml" help:"Path to YAML config file (optional)" type:"path"`
	Seed     uint64 `help:"Reverb impulse response seed (0 = fresh room per run)"`
	Workers  int    `short:"j" help:"Parallel clip transforms (0 = one per CPU)"`
	Verbose  bool   `short:"v" help:"Enable debug logging"`
	Version  bool   `help:"Show version information"`
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("master-program"),
		kong.Description("Ambient voice program mastering chain"),
		kong.UsageOnError(),
	)

	if cliArgs.Version {
		fmt.Printf("master-program %s\n", version)
		os.Exit(0)
	}

	kctx.FatalIfErrorf(run(cliArgs))
}

func run(cliArgs *CLI) error {
	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel, cliArgs.Verbose)

	manifest, err := script.Load(cliArgs.Manifest)
	if err != nil {
		return err
	}
	log.Info("manifest loaded", "path", cliArgs.Manifest, "entries", len(manifest.Entries))

	params := chainParams(cfg)
	if cliArgs.Seed != 0 {
		params.ReverbSeed = cliArgs.Seed
	}

	workers := cfg.Workers
	if cliArgs.Workers > 0 {
		workers = cliArgs.Workers
	}

	chain, err := mastering.NewChain(params,
		mastering.WithLogger(log),
		mastering.WithWorkers(workers))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	program, err := chain.Run(ctx, manifest.ClipPaths())
	if err != nil {
		return err
	}

	if err := program.WriteWAV(cliArgs.Output, cfg.BitDepth); err != nil {
		return err
	}

	// Hand-off summary for the video assembly stage.
	fmt.Printf("wrote %s: %d clips, %s, %d Hz, %d-bit stereo\n",
		cliArgs.Output, program.NumClips(), program.Duration().Round(0), cfg.SampleRate, cfg.BitDepth)
	return nil
}

// newLogger builds the run's logger. Debug from the command line wins over
// the configured level.
func newLogger(level string, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// chainParams merges configured chain settings over the defaults. Zero
// values in the file mean "keep the default".
func chainParams(cfg config.Config) mastering.ChainParams {
	params := mastering.DefaultParams()
	params.SampleRate = cfg.SampleRate
	params.ReverbSeed = cfg.Chain.ReverbSeed

	if cfg.Chain.PitchRatio != 0 {
		params.PitchRatio = cfg.Chain.PitchRatio
	}
	if cfg.Chain.DeessLowHz != 0 {
		params.DeessLowHz = cfg.Chain.DeessLowHz
	}
	if cfg.Chain.DeessHighHz != 0 {
		params.DeessHighHz = cfg.Chain.DeessHighHz
	}
	if cfg.Chain.DeessThreshold != 0 {
		params.DeessThreshold = cfg.Chain.DeessThreshold
	}
	if cfg.Chain.DeessRatio != 0 {
		params.DeessRatio = cfg.Chain.DeessRatio
	}
	if cfg.Chain.ReverbWetMix != 0 {
		params.ReverbWetMix = cfg.Chain.ReverbWetMix
	}
	if cfg.Chain.ReverbDecay != 0 {
		params.ReverbDecay = cfg.Chain.ReverbDecay
	}
	if cfg.Chain.ReverbSeconds != 0 {
		params.ReverbSeconds = cfg.Chain.ReverbSeconds
	}
	if cfg.Chain.WidenDelayMs != 0 {
		params.WidenDelayMs = cfg.Chain.WidenDelayMs
	}
	if cfg.Chain.TargetPeakDB != 0 {
		params.TargetPeakDB = cfg.Chain.TargetPeakDB
	}
	if cfg.Chain.GapSeconds != 0 {
		params.GapSeconds = cfg.Chain.GapSeconds
	}
	return params
}
