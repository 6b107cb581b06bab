// Package planner turns probed source metadata, user options, and the
// resolved accelerator profile into a complete engine command. It is pure:
// no I/O, deterministic for identical inputs.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/vidconv/internal/config"
	"github.com/backmassage/vidconv/internal/hwaccel"
	"github.com/backmassage/vidconv/internal/probe"
)

// FallbackBitrate is used when neither the user nor the probe supplied a
// video bitrate. Some containers and codecs expose no bitrate to ffprobe;
// the pipeline must never block on an undeterminable value.
const FallbackBitrate = "6000k"

// CommandSpec is the fully resolved engine invocation for one file.
// Args is the complete argument vector, binary name first.
type CommandSpec struct {
	Args       []string
	InputPath  string
	OutputPath string
}

// BuildCommand constructs the ffmpeg argument vector for converting input to
// output. Resolution rules, in order: user option wins, then probed source
// value, then a fixed default; optional parameters are emitted only when the
// user supplied them, so the engine's own defaults apply otherwise.
//
// A configuration error (e.g. an unparseable resolution) is returned before
// any subprocess is spawned.
func BuildCommand(input, output string, pr *probe.Result, opts *config.Options, profile hwaccel.Profile) (*CommandSpec, error) {
	var scale string
	if opts.Resolution != "" {
		w, h, err := ParseResolution(opts.Resolution)
		if err != nil {
			return nil, err
		}
		scale = fmt.Sprintf("scale=%d:%d", w, h)
	}

	args := make([]string, 0, 32)
	args = append(args, "ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	args = append(args, "-i", input)

	// Video: encoder, bitrate, preset. The explicit codec option overrides
	// the detected accelerator; user intent wins over auto-detection.
	encoder := profile.Encoder
	if opts.VideoCodec != "" {
		encoder = opts.VideoCodec
	}
	preset := profile.Preset
	if opts.Preset != "" {
		preset = opts.Preset
	}
	args = append(args,
		"-c:v", encoder,
		"-b:v", resolveBitrate(opts, pr),
		"-preset", preset,
	)

	if scale != "" {
		args = append(args, "-vf", scale)
	}
	if opts.Framerate != "" {
		args = append(args, "-r", opts.Framerate)
	}
	if opts.CRF != "" {
		args = append(args, "-crf", opts.CRF)
	}
	if opts.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(opts.Threads))
	}

	// Audio.
	if opts.AudioCodec != "" {
		args = append(args, "-c:a", opts.AudioCodec)
	}
	if opts.AudioBitrate != "" {
		args = append(args, "-b:a", opts.AudioBitrate)
	}
	if opts.AudioFilter != "" {
		args = append(args, "-af", opts.AudioFilter)
	}

	if opts.RemoveMetadata {
		args = append(args, "-map_metadata", "-1")
	}

	// Container: derived from the output extension unless forced.
	if opts.Container != "" {
		args = append(args, "-f", opts.Container)
	}

	args = append(args, output)

	return &CommandSpec{
		Args:       args,
		InputPath:  input,
		OutputPath: output,
	}, nil
}

// resolveBitrate picks the target video bitrate: user option, then probed
// source bitrate, then [FallbackBitrate].
func resolveBitrate(opts *config.Options, pr *probe.Result) string {
	if opts.Bitrate != "" {
		return opts.Bitrate
	}
	if pr != nil && pr.HasBitrate() {
		return fmt.Sprintf("%dk", pr.BitRate/1000)
	}
	return FallbackBitrate
}

// ParseResolution parses a "WIDTHxHEIGHT" string. Both dimensions must be
// present and positive; aspect ratio is not validated (the engine enforces
// or rejects that).
func ParseResolution(s string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid resolution %q (use WIDTHxHEIGHT, e.g. 1280x720)", s)
	}
	width, werr := strconv.Atoi(strings.TrimSpace(parts[0]))
	height, herr := strconv.Atoi(strings.TrimSpace(parts[1]))
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q (use WIDTHxHEIGHT, e.g. 1280x720)", s)
	}
	return width, height, nil
}
