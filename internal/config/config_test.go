package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	o := DefaultOptions()
	o.Directory = "/videos"
	return o
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	assert.Equal(t, ".mkv", o.OutputFormat)
	assert.Equal(t, "aac", o.AudioCodec)
	assert.Equal(t, "128k", o.AudioBitrate)
	assert.Equal(t, 5, o.MaxParallel)
	assert.Equal(t, ColorAuto, o.ColorMode)
}

func TestValidate_RequiresDirectory(t *testing.T) {
	o := DefaultOptions()
	require.Error(t, o.Validate())

	o.CheckOnly = true
	require.NoError(t, o.Validate())
}

func TestValidate_NormalizesExtensions(t *testing.T) {
	o := validOptions()
	o.OutputFormat = "MP4"
	o.InputFormats = []string{".MKV", "ts"}
	require.NoError(t, o.Validate())

	assert.Equal(t, ".mp4", o.OutputFormat)
	assert.Equal(t, []string{".mkv", ".ts"}, o.InputFormats)
}

func TestValidate_NormalizesBitrates(t *testing.T) {
	o := validOptions()
	o.Bitrate = "600"
	o.AudioBitrate = "192Kbps"
	require.NoError(t, o.Validate())

	assert.Equal(t, "600k", o.Bitrate)
	assert.Equal(t, "192k", o.AudioBitrate)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"bad video bitrate", func(o *Options) { o.Bitrate = "fast" }},
		{"bad audio bitrate", func(o *Options) { o.AudioBitrate = "-1k" }},
		{"bad crf", func(o *Options) { o.CRF = "abc" }},
		{"negative crf", func(o *Options) { o.CRF = "-3" }},
		{"bad framerate", func(o *Options) { o.Framerate = "fast" }},
		{"zero framerate", func(o *Options) { o.Framerate = "0" }},
		{"negative threads", func(o *Options) { o.Threads = -1 }},
		{"zero parallel", func(o *Options) { o.MaxParallel = 0 }},
		{"empty output format", func(o *Options) { o.OutputFormat = "" }},
		{"bad color mode", func(o *Options) { o.ColorMode = ColorMode("rainbow") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := validOptions()
			tc.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}
}

func TestValidate_ResolutionNotCheckedHere(t *testing.T) {
	// An unparseable resolution is a per-file planning error, not a run-level
	// one; Validate must let it through.
	o := validOptions()
	o.Resolution = "not-a-resolution"
	assert.NoError(t, o.Validate())
}

func TestNormalizeBitrate(t *testing.T) {
	for raw, want := range map[string]string{
		"600":     "600k",
		"600k":    "600k",
		"600K":    "600k",
		"600kbps": "600k",
		" 128k ":  "128k",
	} {
		got, err := NormalizeBitrate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "k", "0k", "-5", "fastest"} {
		_, err := NormalizeBitrate(raw)
		assert.Error(t, err, raw)
	}
}

func TestNormalizeDirArg(t *testing.T) {
	assert.Equal(t, "/videos", NormalizeDirArg("/videos/"))
	assert.Equal(t, "/", NormalizeDirArg("/"))
}
