package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/vidconv/internal/config"
	"github.com/backmassage/vidconv/internal/ffmpeg"
	"github.com/backmassage/vidconv/internal/hwaccel"
	"github.com/backmassage/vidconv/internal/logging"
	"github.com/backmassage/vidconv/internal/planner"
	"github.com/backmassage/vidconv/internal/probe"
)

// State is a per-file lifecycle stage, reported to the OnState hook as the
// conversion progresses.
type State int

const (
	StateDiscovered State = iota
	StatePreserved
	StateProbing
	StatePlanning
	StateConverting
	StateVerifying
	StateFinalized
	StateRolledBack
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StatePreserved:
		return "preserved"
	case StateProbing:
		return "probing"
	case StatePlanning:
		return "planning"
	case StateConverting:
		return "converting"
	case StateVerifying:
		return "verifying"
	case StateFinalized:
		return "finalized"
	case StateRolledBack:
		return "rolled back"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Converter runs the per-file conversion pipeline: preserve the original,
// probe it, plan the engine command, execute, verify, and either finalize or
// roll back. One Converter is shared by all workers; it holds no per-file
// state.
type Converter struct {
	Opts      *config.Options
	Profile   hwaccel.Profile
	Runner    ffmpeg.Runner
	Preserver *Preserver
	Log       *logging.Logger

	// OnState, when set, observes every state transition. The batch
	// scheduler and tests use it; nil is fine.
	OnState func(src SourceFile, st State)
}

func (c *Converter) state(src SourceFile, st State) {
	if c.OnState != nil {
		c.OnState(src, st)
	}
}

// Convert processes one file to a terminal state and returns its JobResult.
// Errors are captured in the result, never propagated; a failure here must
// not disturb the rest of the batch.
func (c *Converter) Convert(ctx context.Context, src SourceFile) JobResult {
	start := time.Now()
	c.state(src, StateDiscovered)
	c.Log.Info("Processing: %s", src.Rel)

	// Preserve. On failure the source file has not moved; nothing to undo.
	preserved, err := c.Preserver.Preserve(src)
	if err != nil {
		c.state(src, StateFailed)
		c.Log.Error("%v", err)
		return c.result(src, start, OutcomeFailed, err.Error())
	}
	c.state(src, StatePreserved)

	// Probe the preserved copy. Degradation is expected: an undeterminable
	// bitrate triggers the planner's fixed fallback, never an abort.
	c.state(src, StateProbing)
	pr, err := probe.Probe(ctx, c.Runner, preserved)
	if err != nil {
		c.Log.Debug("Probe degraded for %s: %v", src.Rel, err)
		pr = &probe.Result{}
	}

	// Plan. A configuration error is fatal to this file only; no subprocess
	// has run, so rolling the preserve move back fully restores it.
	c.state(src, StatePlanning)
	spec, err := planner.BuildCommand(preserved, src.OutputPath, pr, c.Opts, c.Profile)
	if err != nil {
		c.Log.Error("Plan %s: %v", src.Rel, err)
		return c.rollback(src, start, fmt.Sprintf("plan: %v", err))
	}

	if err := os.MkdirAll(filepath.Dir(src.OutputPath), 0o755); err != nil {
		c.Log.Error("Cannot create output directory for %s: %v", src.Rel, err)
		return c.rollback(src, start, fmt.Sprintf("output directory: %v", err))
	}

	// Convert.
	c.state(src, StateConverting)
	c.Log.Debug("Executing: %s", strings.Join(spec.Args, " "))
	res := ffmpeg.Execute(ctx, c.Runner, spec.Args, c.debugLogPath(src))

	// Verify: zero exit plus an output file that exists and is nonempty.
	c.state(src, StateVerifying)
	if reason := verifyOutput(res, src.OutputPath); reason != "" {
		if ctx.Err() != nil {
			c.Log.Warn("Interrupted: %s", src.Rel)
			return c.restore(src, start)
		}
		c.Log.Error("Convert %s: %s", src.Rel, reason)
		return c.rollback(src, start, reason)
	}

	// Finalize: retire the record. The preserved original stays under old/
	// as a safety copy; this pipeline never deletes it.
	c.Preserver.Finalize(src)
	c.state(src, StateFinalized)

	result := c.result(src, start, OutcomeSuccess, "")
	result.InputBytes = fileSize(c.Preserver.PreservedPath(src))
	result.OutputBytes = fileSize(src.OutputPath)
	c.Log.Success("Finished %s in %ds", src.Rel, int(result.Elapsed.Seconds()))
	return result
}

// rollback removes any partial output, restores the original to its source
// path, and reports the file as failed with the given reason.
func (c *Converter) rollback(src SourceFile, start time.Time, reason string) JobResult {
	c.removePartialOutput(src)

	if err := c.Preserver.Rollback(src); err != nil {
		// The original is still intact under old/; report where it is.
		c.state(src, StateFailed)
		c.Log.Error("Rollback %s: %v (original kept at %s)", src.Rel, err, c.Preserver.PreservedPath(src))
		return c.result(src, start, OutcomeFailed, fmt.Sprintf("%s; rollback: %v", reason, err))
	}

	c.state(src, StateRolledBack)
	return c.result(src, start, OutcomeFailed, reason)
}

// restore handles run interruption: same mechanics as rollback, but the file
// is reported as restored rather than failed.
func (c *Converter) restore(src SourceFile, start time.Time) JobResult {
	c.removePartialOutput(src)

	if err := c.Preserver.Rollback(src); err != nil {
		c.state(src, StateFailed)
		return c.result(src, start, OutcomeFailed, fmt.Sprintf("interrupted; rollback: %v", err))
	}
	c.state(src, StateRolledBack)
	return c.result(src, start, OutcomeRestored, "interrupted")
}

// removePartialOutput deletes the output file if the conversion left one
// behind, unless it is the very path the original came from (same-extension
// conversions write the output at the source path).
func (c *Converter) removePartialOutput(src SourceFile) {
	if src.OutputPath == src.Path {
		// Rollback's rename will overwrite the partial output.
		return
	}
	if _, err := os.Stat(src.OutputPath); err == nil {
		_ = os.Remove(src.OutputPath)
	}
}

func (c *Converter) result(src SourceFile, start time.Time, outcome Outcome, reason string) JobResult {
	return JobResult{
		Source:  src.Path,
		Outcome: outcome,
		Reason:  reason,
		Elapsed: time.Since(start),
	}
}

// debugLogPath returns the per-file engine log path, or "" when debug
// logging is off.
func (c *Converter) debugLogPath(src SourceFile) string {
	if !c.Opts.Debug {
		return ""
	}
	base := strings.TrimSuffix(src.OutputPath, filepath.Ext(src.OutputPath))
	return base + "_conversion.log"
}

// verifyOutput classifies the engine result. Returns "" on success, or a
// compact failure reason including the stderr tail and exit code.
func verifyOutput(res ffmpeg.Result, outputPath string) string {
	if res.Err != nil {
		reason := fmt.Sprintf("engine exit %d", res.ExitCode())
		if tail := ffmpeg.StderrTail(res.Stderr, 3); tail != "" {
			reason += ": " + tail
		}
		return reason
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return "engine exited 0 but produced no output file"
	}
	if info.Size() == 0 {
		return "engine exited 0 but output file is empty"
	}
	return ""
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
