// Package config holds runtime configuration: defaults, CLI flag parsing, and
// validation. An Options value is built once at startup and passed by pointer
// to the packages that need it; nothing mutates it after Validate.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Options holds all runtime settings for a conversion run. It is populated by
// [DefaultOptions] and then mutated by [ParseFlags] before being validated.
// Optional string fields are empty when the user did not supply them; the
// planner only emits the corresponding ffmpeg flags for supplied values.
type Options struct {
	// Target directory (required unless CheckOnly).
	Directory string

	// Input/output formats.
	InputFormats []string // Accepted input extensions; empty = all known video extensions.
	OutputFormat string   // Output extension, with leading dot. Default: ".mkv".
	Container    string   // Explicit container format (-f); empty = derive from OutputFormat.

	// Video encoding.
	Bitrate    string // Target video bitrate (e.g. "600k"); empty = probed bitrate or fallback.
	Resolution string // Upscale target "WIDTHxHEIGHT"; empty = no scaling.
	VideoCodec string // Explicit video codec; empty = accelerator default.
	Preset     string // Encoder preset; empty = accelerator default.
	Framerate  string // Output framerate; empty = engine default.
	CRF        string // Constant rate factor; empty = engine default.
	Threads    int    // Encoder thread count; 0 = engine default.

	// Audio encoding.
	AudioCodec   string // Default: "aac".
	AudioBitrate string // Default: "128k".
	AudioFilter  string // Audio filter expression; empty = none.

	// Behavior.
	RemoveMetadata bool
	MaxParallel    int // Simultaneous conversions. Default: 5.
	Debug          bool

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultOptions returns an Options with all defaults applied. Used as the
// base before [ParseFlags] applies CLI overrides.
func DefaultOptions() Options {
	return Options{
		OutputFormat: ".mkv",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
		MaxParallel:  5,
		ColorMode:    ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate normalizes and checks option values: extensions gain a leading
// dot, bitrates are canonicalized to "<n>k", and numeric fields must parse.
// Resolution is deliberately not validated here; an unparseable resolution is
// a per-file planning error so each file is rolled back individually.
func (o *Options) Validate() error {
	o.OutputFormat = normalizeExtension(o.OutputFormat)
	if o.OutputFormat == "." {
		return errors.New("output format must not be empty")
	}
	for i, ext := range o.InputFormats {
		o.InputFormats[i] = normalizeExtension(ext)
	}

	if o.Bitrate != "" {
		b, err := NormalizeBitrate(o.Bitrate)
		if err != nil {
			return fmt.Errorf("video bitrate: %w", err)
		}
		o.Bitrate = b
	}
	if o.AudioBitrate != "" {
		b, err := NormalizeBitrate(o.AudioBitrate)
		if err != nil {
			return fmt.Errorf("audio bitrate: %w", err)
		}
		o.AudioBitrate = b
	}

	if o.CRF != "" {
		n, err := strconv.Atoi(strings.TrimSpace(o.CRF))
		if err != nil || n < 0 {
			return fmt.Errorf("invalid CRF %q (use a non-negative whole number)", o.CRF)
		}
		o.CRF = strconv.Itoa(n)
	}
	if o.Framerate != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(o.Framerate), 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid framerate %q", o.Framerate)
		}
	}
	if o.Threads < 0 {
		return errors.New("threads must not be negative")
	}
	if o.MaxParallel < 1 {
		return errors.New("max parallel conversions must be at least 1")
	}

	switch o.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always', or 'never')")
	}

	if o.CheckOnly {
		return nil
	}
	if o.Directory == "" {
		return errors.New("target directory is required (use -d)")
	}
	return nil
}

// NormalizeBitrate validates and canonicalizes user bitrate input.
// Accepted forms: "600", "600k", "600K", "600kbps". Output is "<n>k".
func NormalizeBitrate(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", errors.New("bitrate must not be empty")
	}
	if strings.HasSuffix(s, "kbps") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "kbps"))
	} else if strings.HasSuffix(s, "k") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("invalid bitrate %q (use positive Kbps value, e.g. 600k)", raw)
	}
	return fmt.Sprintf("%dk", n), nil
}

// normalizeExtension lowercases an extension and ensures a leading dot,
// so ".MKV", "mkv", and ".mkv" all compare equal.
func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
