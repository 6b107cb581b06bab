// Command vidconv is the CLI entrypoint for the batch video converter.
//
// It parses flags, validates configuration, fails fast when ffmpeg/ffprobe
// are unavailable, and drives the conversion pipeline over the target
// directory. Individual file failures are summarized, not fatal: the process
// exits nonzero only when the run cannot start at all.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/backmassage/vidconv/internal/check"
	"github.com/backmassage/vidconv/internal/config"
	"github.com/backmassage/vidconv/internal/display"
	"github.com/backmassage/vidconv/internal/ffmpeg"
	"github.com/backmassage/vidconv/internal/hwaccel"
	"github.com/backmassage/vidconv/internal/logging"
	"github.com/backmassage/vidconv/internal/pipeline"
	"github.com/backmassage/vidconv/internal/progress"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap — the logger doesn't exist yet, so errors go
	// directly to stderr via fmt. Once NewLogger succeeds, all output goes
	// through the logger.
	opts := config.DefaultOptions()
	if err := config.ParseFlags(&opts, version); err != nil {
		fmt.Fprintf(os.Stderr, "vidconv: %v\n", err)
		return 1
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "vidconv: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vidconv: %v\n", err)
		return 1
	}
	defer log.Close()

	display.PrintBanner()

	runner := ffmpeg.ExecRunner{}

	if opts.CheckOnly {
		check.RunCheck(context.Background(), runner, log)
		return 0
	}

	// Phase 2: Validate the run environment; these failures abort before any
	// file is touched.
	dir, err := absPath(opts.Directory)
	if err != nil {
		log.Error("Directory not found: %s", opts.Directory)
		return 1
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Error("Not a directory: %s", opts.Directory)
		return 1
	}
	if err := check.CheckDeps(); err != nil {
		log.Error("%v", err)
		return 1
	}

	log.Info("=== vidconv v%s (%s) ===", version, commit)
	log.Info("Directory: %s", dir)

	// Phase 3: Cancel the run context on SIGINT/SIGTERM. The scheduler stops
	// dispatching new files; in-flight conversions are rolled back.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Phase 4: Detect the accelerator once; the profile is passed by value
	// from here on.
	profile := hwaccel.Detect(ctx, runner)
	log.Info("Using %s for processing (%s, preset %s)",
		strings.ToUpper(string(profile.Kind)), profile.Encoder, profile.Preset)

	files, err := pipeline.Discover(dir, opts.InputFormats, opts.OutputFormat)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return 1
	}
	if len(files) == 0 {
		log.Warn("No files to convert found.")
		return 0
	}
	log.Info("Found %d files", len(files))
	log.Info("")

	// Phase 5: Run the batch.
	bar := progress.NewBar(len(files))
	sched := &pipeline.Scheduler{
		Converter: &pipeline.Converter{
			Opts:      &opts,
			Profile:   profile,
			Runner:    runner,
			Preserver: pipeline.NewPreserver(dir),
			Log:       log,
		},
		MaxParallel: opts.MaxParallel,
		Log:         log,
		Progress:    bar,
	}
	results := sched.Run(ctx, files)
	bar.Finish()

	logSummary(log, results)

	// Degraded completion is not a process-level failure: per-file failures
	// were reported above, so the run itself exits zero.
	return 0
}

// logSummary reports batch counters and per-failure reasons.
func logSummary(log *logging.Logger, results []pipeline.JobResult) {
	stats := pipeline.Summarize(results)

	log.Info("==============================")
	log.Info("Done: %d converted, %d failed, %d restored", stats.Converted, stats.Failed, stats.Restored)

	for _, r := range results {
		if r.Outcome == pipeline.OutcomeSuccess {
			continue
		}
		log.Warn("  %s: %s (%s)", filepath.Base(r.Source), r.Outcome, r.Reason)
	}

	if stats.Converted == 0 {
		return
	}
	saved := stats.SpaceSaved()
	if saved >= 0 {
		log.Success("Total space saved: %s (input %s -> output %s)",
			display.FormatBytes(saved),
			display.FormatBytes(stats.TotalInputBytes),
			display.FormatBytes(stats.TotalOutputBytes))
	} else {
		log.Warn("Total space saved: -%s (overall output is larger)",
			display.FormatBytes(-saved))
	}
}

// absPath returns the absolute path with symlinks resolved.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
