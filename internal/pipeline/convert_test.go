package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discoverOne(t *testing.T, dir string) SourceFile {
	t.Helper()
	files, err := Discover(dir, nil, ".mkv")
	require.NoError(t, err)
	require.Len(t, files, 1)
	return files[0]
}

func TestConvert_Success(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, filepath.Join("sub", "clip.mp4"))
	runner := &fakeRunner{}
	c := newConverter(t, dir, testOptions(dir), runner)
	src := discoverOne(t, dir)

	res := c.Convert(context.Background(), src)

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Empty(t, res.Reason)

	// Structure preservation: output mirrors the source tree, the original
	// sits under old/ at its mirrored path, nothing remains at the source.
	assert.FileExists(t, filepath.Join(dir, "sub", "clip.mkv"))
	assert.FileExists(t, filepath.Join(dir, "old", "sub", "clip.mp4"))
	assert.NoFileExists(t, filepath.Join(dir, "sub", "clip.mp4"))
	assert.Equal(t, 0, c.Preserver.ActiveCount())
	assert.Greater(t, res.OutputBytes, int64(0))
}

func TestConvert_EngineReadsPreservedCopy(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	runner := &fakeRunner{}
	c := newConverter(t, dir, testOptions(dir), runner)

	c.Convert(context.Background(), discoverOne(t, dir))

	calls := runner.calls()
	require.Len(t, calls, 1)
	joined := append([]string{"ffmpeg"}, calls[0]...)
	var input string
	for i, a := range joined {
		if a == "-i" {
			input = joined[i+1]
		}
	}
	assert.Equal(t, filepath.Join(dir, "old", "clip.mp4"), input)
}

func TestConvert_FailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	runner := &fakeRunner{
		convertErr:    errors.New("exit status 1"),
		convertStderr: "Error while opening encoder\n",
	}
	c := newConverter(t, dir, testOptions(dir), runner)
	src := discoverOne(t, dir)

	res := c.Convert(context.Background(), src)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Reason, "Error while opening encoder")

	// Original restored, no output, nothing left under old/.
	assert.FileExists(t, src.Path)
	assert.NoFileExists(t, src.OutputPath)
	assert.NoFileExists(t, filepath.Join(dir, "old", "clip.mp4"))
	assert.Equal(t, 0, c.Preserver.ActiveCount())
}

func TestConvert_PlanErrorRollsBackBeforeEngine(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	opts := testOptions(dir)
	opts.Resolution = "not-a-resolution"
	runner := &fakeRunner{}
	c := newConverter(t, dir, opts, runner)
	src := discoverOne(t, dir)

	res := c.Convert(context.Background(), src)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Contains(t, res.Reason, "plan")
	assert.Empty(t, runner.calls(), "no engine subprocess may run on a plan error")
	assert.FileExists(t, src.Path)
}

func TestConvert_ProbeDegradationUsesFallbackBitrate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	runner := &fakeRunner{probeErr: errors.New("exit status 1")}
	c := newConverter(t, dir, testOptions(dir), runner)

	res := c.Convert(context.Background(), discoverOne(t, dir))

	// Probe failure is a degradation, not an error.
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	calls := runner.calls()
	require.Len(t, calls, 1)
	var bitrate string
	for i, a := range calls[0] {
		if a == "-b:v" {
			bitrate = calls[0][i+1]
		}
	}
	assert.Equal(t, "6000k", bitrate)
}

func TestConvert_PreserveFailureTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	c := newConverter(t, dir, testOptions(dir), runner)

	// The file vanished between discovery and processing.
	src := SourceFile{
		Path:       filepath.Join(dir, "gone.mp4"),
		Rel:        "gone.mp4",
		OutputPath: filepath.Join(dir, "gone.mkv"),
	}
	res := c.Convert(context.Background(), src)

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Empty(t, runner.calls())
	assert.NoFileExists(t, src.OutputPath)
}

func TestConvert_DebugWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	opts := testOptions(dir)
	opts.Debug = true
	c := newConverter(t, dir, opts, &fakeRunner{})

	c.Convert(context.Background(), discoverOne(t, dir))

	data, err := os.ReadFile(filepath.Join(dir, "clip_conversion.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "command: ffmpeg")
}

func TestConvert_StateTransitions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	c := newConverter(t, dir, testOptions(dir), &fakeRunner{})

	var states []State
	c.OnState = func(_ SourceFile, st State) { states = append(states, st) }

	c.Convert(context.Background(), discoverOne(t, dir))

	assert.Equal(t, []State{
		StateDiscovered, StatePreserved, StateProbing,
		StatePlanning, StateConverting, StateVerifying, StateFinalized,
	}, states)
}

func TestConvert_InterruptedIsRestored(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	runner := &fakeRunner{convertErr: errors.New("signal: killed")}
	c := newConverter(t, dir, testOptions(dir), runner)
	src := discoverOne(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := c.Convert(ctx, src)

	assert.Equal(t, OutcomeRestored, res.Outcome)
	assert.FileExists(t, src.Path)
	assert.NoFileExists(t, src.OutputPath)
}
