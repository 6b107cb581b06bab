// Package probe inspects source media with a single ffprobe JSON call.
// Probe failures are expected (some containers expose no bitrate) and
// degrade to a zero-value Result rather than aborting the file.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/backmassage/vidconv/internal/ffmpeg"
)

// Probe runs one ffprobe JSON call against path through r and returns the
// parsed result. Nonzero exit or unparseable output is an error; the caller
// treats it as "metadata undeterminable", not as fatal.
func Probe(ctx context.Context, r ffmpeg.Runner, path string) (*Result, error) {
	res := r.Run(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if res.Err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, res.Err)
	}

	return ParseJSON([]byte(res.Stdout))
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

type ffprobeStream struct {
	CodecName   string         `json:"codec_name"`
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	BitRate     string         `json:"bit_rate"`
	Disposition map[string]int `json:"disposition"`
}

// buildResult extracts the primary video stream (first non-attached-pic) and
// resolves the bitrate: stream value first, format-level value as fallback.
// Both may be absent ("N/A" or missing), leaving BitRate at zero.
func buildResult(raw *ffprobeOutput) *Result {
	r := &Result{
		Duration: parseFloat(raw.Format.Duration),
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		r.VideoCodec = s.CodecName
		r.Width = s.Width
		r.Height = s.Height
		r.BitRate = parseInt64(s.BitRate)
		break
	}

	if r.BitRate == 0 {
		r.BitRate = parseInt64(raw.Format.BitRate)
	}
	return r
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
