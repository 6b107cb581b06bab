// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation for ffmpeg and ffprobe.
package check

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/backmassage/vidconv/internal/display"
	"github.com/backmassage/vidconv/internal/ffmpeg"
	"github.com/backmassage/vidconv/internal/hwaccel"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
// These abort the run before any file is touched.
var (
	ErrFfmpegNotFound  = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound = errors.New("ffprobe not found on PATH")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// CheckDeps verifies that ffmpeg and ffprobe are on PATH. Returns a sentinel
// error on failure; run-level errors are raised before any work begins.
func CheckDeps() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}
	return nil
}

// RunCheck runs the interactive --check flow: ffmpeg availability and
// version, HEVC encoder listing, host resources, and the accelerator the
// run would select. Informational only; it does not stop on failure.
func RunCheck(ctx context.Context, r ffmpeg.Runner, log Logger) {
	log.Info("=== System Check ===")

	checkFfmpeg(ctx, r, log)
	checkHEVCEncoders(ctx, r, log)
	checkHost(log)
	checkAccelerator(ctx, r, log)
}

// checkFfmpeg verifies ffmpeg is on PATH and logs its version string.
func checkFfmpeg(ctx context.Context, r ffmpeg.Runner, log Logger) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Error("ffmpeg not found")
		return
	}
	res := r.Run(ctx, "ffmpeg", "-version")
	if res.Err != nil {
		log.Warn("ffmpeg found but -version failed: %v", res.Err)
		return
	}
	firstLine := strings.TrimSpace(res.Stdout)
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("ffmpeg: %s", firstLine)
}

// checkHEVCEncoders lists all HEVC-related encoders reported by ffmpeg.
func checkHEVCEncoders(ctx context.Context, r ffmpeg.Runner, log Logger) {
	log.Info("HEVC encoders:")
	res := r.Run(ctx, "ffmpeg", "-hide_banner", "-encoders")
	if res.Err != nil {
		log.Warn("Could not list encoders: %v", res.Err)
		return
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "hevc") || strings.Contains(lower, "265") {
			log.Info("  %s", strings.TrimSpace(line))
		}
	}
}

// checkHost logs CPU and memory capacity, relevant for sizing --max-parallel
// and --threads on software-encode hosts.
func checkHost(log Logger) {
	if count, err := cpu.Counts(true); err == nil {
		label := ""
		if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
			label = " (" + infos[0].ModelName + ")"
		}
		log.Info("CPU: %d logical cores%s", count, label)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		log.Info("Memory: %s total, %s available",
			display.FormatBytes(int64(vm.Total)),
			display.FormatBytes(int64(vm.Available)))
	}
}

// checkAccelerator reports which encoder tier a run would pick.
func checkAccelerator(ctx context.Context, r ffmpeg.Runner, log Logger) {
	p := hwaccel.Detect(ctx, r)
	switch p.Kind {
	case hwaccel.KindCPU:
		log.Warn("No hardware accelerator found; software encoding via %s (preset %s)", p.Encoder, p.Preset)
	default:
		log.Success("Accelerator: %s (%s, preset %s)", strings.ToUpper(string(p.Kind)), p.Encoder, p.Preset)
	}
}
