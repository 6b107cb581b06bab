// Package hwaccel resolves the encoding backend for a run: NVIDIA or AMD
// hardware HEVC encoding when the host exposes it, software x265 otherwise.
package hwaccel

import (
	"context"
	"strings"

	"github.com/backmassage/vidconv/internal/ffmpeg"
)

// Kind identifies the accelerator class.
type Kind string

const (
	KindNvidia Kind = "nvidia"
	KindAMD    Kind = "amd"
	KindCPU    Kind = "cpu"
)

// Profile is the resolved encoding backend: accelerator class plus the
// default encoder and preset for that class. Resolved once at startup and
// passed by value; never read from global state.
type Profile struct {
	Kind    Kind
	Encoder string
	Preset  string
}

// Per-class defaults. Hardware encoders get fast presets (the offload makes
// them cheap); the software path uses a slow preset for better compression.
var profiles = map[Kind]Profile{
	KindNvidia: {Kind: KindNvidia, Encoder: "hevc_nvenc", Preset: "fast"},
	KindAMD:    {Kind: KindAMD, Encoder: "hevc_amf", Preset: "balanced"},
	KindCPU:    {Kind: KindCPU, Encoder: "libx265", Preset: "veryslow"},
}

// ProfileFor returns the default profile for a known accelerator class.
func ProfileFor(k Kind) Profile { return profiles[k] }

// Detect queries the host for accelerator presence and returns the matching
// profile. Precedence: NVIDIA, then AMD, then CPU. A failing or missing
// query tool is not an error; it falls through to the next tier, and the
// CPU tier always succeeds.
func Detect(ctx context.Context, r ffmpeg.Runner) Profile {
	if res := r.Run(ctx, "nvidia-smi", "-L"); res.Err == nil && strings.Contains(res.Stdout, "GPU") {
		return profiles[KindNvidia]
	}

	if res := r.Run(ctx, "lspci"); res.Err == nil {
		if strings.Contains(res.Stdout, "AMD") || strings.Contains(res.Stdout, "Radeon") {
			return profiles[KindAMD]
		}
	}

	return profiles[KindCPU]
}
