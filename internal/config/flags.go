package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into source selection, encoding, audio, behavior, and
// display. Boolean toggles are applied after Parse so Options defaults hold
// unless the user passes the flag.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into opts. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag).
func ParseFlags(opts *Options, version string) error {
	fs := flag.NewFlagSet("vidconv", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs, version) }

	var toggles toggleFlags

	defineSourceFlags(fs, opts)
	defineEncodingFlags(fs, opts)
	defineAudioFlags(fs, opts)
	defineBehaviorFlags(fs, opts, &toggles)
	defineDisplayFlags(fs, opts, &toggles)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyToggles(opts, &toggles)

	if toggles.showHelp {
		printUsage(fs, version)
		os.Exit(0)
	}
	if toggles.showVersion {
		fmt.Fprintln(os.Stdout, "vidconv v"+version)
		os.Exit(0)
	}

	opts.Directory = NormalizeDirArg(opts.Directory)
	return nil
}

// toggleFlags holds boolean flags that are applied after Parse.
// These either invert a default (noColor -> ColorMode=never) or trigger exit.
type toggleFlags struct {
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineSourceFlags registers -d/--directory, -i/--input-formats, -o/--output-format.
func defineSourceFlags(fs *flag.FlagSet, opts *Options) {
	fs.StringVar(&opts.Directory, "directory", "", "Directory containing the videos to convert")
	fs.StringVar(&opts.Directory, "d", "", "Same as --directory")
	fs.Var(&extListValue{&opts.InputFormats}, "input-formats", "Comma-separated input extensions (e.g. .mp4,.ts); empty = all video files")
	fs.Var(&extListValue{&opts.InputFormats}, "i", "Same as --input-formats")
	fs.StringVar(&opts.OutputFormat, "output-format", opts.OutputFormat, "Output extension (default: .mkv)")
	fs.StringVar(&opts.OutputFormat, "o", opts.OutputFormat, "Same as --output-format")
	fs.StringVar(&opts.Container, "container", "", "Explicit container format (default: derived from output extension)")
}

// defineEncodingFlags registers -b/--bitrate, -r/--resolution, codec, preset, CRF, fps, threads.
func defineEncodingFlags(fs *flag.FlagSet, opts *Options) {
	fs.StringVar(&opts.Bitrate, "bitrate", "", "Video bitrate (e.g. 600k); default: source bitrate")
	fs.StringVar(&opts.Bitrate, "b", "", "Same as --bitrate")
	fs.StringVar(&opts.Resolution, "resolution", "", "Upscale target WIDTHxHEIGHT (e.g. 1280x720)")
	fs.StringVar(&opts.Resolution, "r", "", "Same as --resolution")
	fs.StringVar(&opts.VideoCodec, "video-codec", "", "Video codec (default: auto-detected hardware encoder)")
	fs.StringVar(&opts.Preset, "preset", "", "Encoder preset (default: per detected accelerator)")
	fs.StringVar(&opts.Preset, "p", "", "Same as --preset")
	fs.StringVar(&opts.CRF, "crf", "", "Constant rate factor (software encoders)")
	fs.StringVar(&opts.Framerate, "framerate", "", "Output framerate (e.g. 30)")
	fs.IntVar(&opts.Threads, "threads", 0, "Encoder thread count (0 = engine default)")
}

// defineAudioFlags registers audio codec, bitrate, and filter.
func defineAudioFlags(fs *flag.FlagSet, opts *Options) {
	fs.StringVar(&opts.AudioCodec, "audio-codec", opts.AudioCodec, "Audio codec (default: aac)")
	fs.StringVar(&opts.AudioBitrate, "audio-bitrate", opts.AudioBitrate, "Audio bitrate (default: 128k)")
	fs.StringVar(&opts.AudioFilter, "audio-filter", "", "Audio filter expression (e.g. volume=1.5)")
}

// defineBehaviorFlags registers metadata removal, parallelism, and debug.
func defineBehaviorFlags(fs *flag.FlagSet, opts *Options, _ *toggleFlags) {
	fs.BoolVar(&opts.RemoveMetadata, "remove-metadata", false, "Strip all container/stream metadata")
	fs.IntVar(&opts.MaxParallel, "max-parallel", opts.MaxParallel, "Maximum simultaneous conversions (default: 5)")
	fs.IntVar(&opts.MaxParallel, "j", opts.MaxParallel, "Same as --max-parallel")
	fs.BoolVar(&opts.Debug, "debug", false, "Write a per-file log of every engine invocation")
}

// defineDisplayFlags registers color, verbose, log, check, version, help.
func defineDisplayFlags(fs *flag.FlagSet, opts *Options, t *toggleFlags) {
	fs.BoolVar(&t.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&t.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&opts.Verbose, "v", false, "Same as --verbose")
	fs.StringVar(&opts.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&opts.LogFile, "l", "", "Same as --log")
	fs.BoolVar(&opts.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&opts.CheckOnly, "c", false, "Same as --check")
	fs.BoolVar(&t.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&t.showVersion, "V", false, "Same as --version")
	fs.BoolVar(&t.showHelp, "help", false, "Show this help and exit")
	fs.BoolVar(&t.showHelp, "h", false, "Same as --help")
}

// applyToggles copies toggle flag values into opts.
func applyToggles(opts *Options, t *toggleFlags) {
	if t.noColor {
		opts.ColorMode = ColorNever
	} else if t.forceColor {
		opts.ColorMode = ColorAlways
	}
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(fs *flag.FlagSet, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "vidconv v" + version + " - batch video converter with hardware acceleration"},
		{"", ""},
		{"  vidconv -d <directory> [OPTIONS]", ""},
		{"", ""},
		{"Source", ""},
		{"  -d, --directory <path>", "Directory containing the videos (required)"},
		{"  -i, --input-formats <list>", "Input extensions, comma-separated (default: all video files)"},
		{"  -o, --output-format <ext>", "Output extension (default: .mkv)"},
		{"  --container <name>", "Explicit container format (default: from output extension)"},
		{"", ""},
		{"Video", ""},
		{"  -b, --bitrate <rate>", "Video bitrate, e.g. 600k (default: source bitrate)"},
		{"  -r, --resolution <WxH>", "Upscale target, e.g. 1280x720"},
		{"  --video-codec <name>", "Video codec (default: detected hardware encoder)"},
		{"  -p, --preset <name>", "Encoder preset (default: per accelerator)"},
		{"  --crf <value>", "Constant rate factor"},
		{"  --framerate <fps>", "Output framerate"},
		{"  --threads <n>", "Encoder thread count"},
		{"", ""},
		{"Audio", ""},
		{"  --audio-codec <name>", "Audio codec (default: aac)"},
		{"  --audio-bitrate <rate>", "Audio bitrate (default: 128k)"},
		{"  --audio-filter <expr>", "Audio filter, e.g. volume=1.5"},
		{"", ""},
		{"Behavior", ""},
		{"  --remove-metadata", "Strip all container/stream metadata"},
		{"  -j, --max-parallel <n>", "Simultaneous conversions (default: 5)"},
		{"  --debug", "Per-file engine logs next to each output"},
		{"", ""},
		{"Display", ""},
		{"  --color / --no-color", "Force or disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  -c, --check", "System diagnostics (ffmpeg, encoders, accelerator)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(os.Stderr)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(os.Stderr, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(os.Stderr, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(os.Stderr, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// extListValue adapts a comma-separated extension list to flag.Var.
type extListValue struct{ p *[]string }

func (e *extListValue) String() string {
	if e.p == nil {
		return ""
	}
	return strings.Join(*e.p, ",")
}

func (e *extListValue) Set(s string) error {
	var exts []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		exts = append(exts, part)
	}
	if len(exts) == 0 {
		return fmt.Errorf("empty extension list %q", s)
	}
	*e.p = exts
	return nil
}
