package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/backmassage/vidconv/internal/config"
	"github.com/backmassage/vidconv/internal/ffmpeg"
	"github.com/backmassage/vidconv/internal/hwaccel"
	"github.com/backmassage/vidconv/internal/logging"
)

// touch creates a small nonempty file under dir, creating parent directories
// as needed, and returns its path.
func touch(t *testing.T, dir string, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("source-bytes"), 0o644))
	return path
}

func testOptions(dir string) *config.Options {
	o := config.DefaultOptions()
	o.Directory = dir
	o.ColorMode = config.ColorNever
	return &o
}

func newTestLogger(t *testing.T, opts *config.Options) *logging.Logger {
	t.Helper()
	log, err := logging.NewLogger(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = log.Close() })
	return log
}

const probeJSONWithBitrate = `{
	"streams": [{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "bit_rate": "3500000"}],
	"format": {"duration": "60", "bit_rate": "4000000"}
}`

// fakeRunner simulates ffprobe and ffmpeg. A successful "ffmpeg" run writes
// a nonempty file at the output path (the last argument), matching what the
// verification step expects from the real engine.
type fakeRunner struct {
	mu sync.Mutex

	probeErr      error
	convertErr    error
	convertStderr string
	convertDelay  time.Duration
	failRel       map[string]bool // fail conversions whose output basename matches

	convertCalls [][]string
	active       int
	maxActive    int
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ffmpeg.Result {
	switch name {
	case "ffprobe":
		if f.probeErr != nil {
			return ffmpeg.Result{Err: f.probeErr}
		}
		return ffmpeg.Result{Stdout: probeJSONWithBitrate}

	case "ffmpeg":
		return f.convert(args)

	default:
		return ffmpeg.Result{Err: errors.New("executable not found: " + name)}
	}
}

func (f *fakeRunner) convert(args []string) ffmpeg.Result {
	f.mu.Lock()
	f.convertCalls = append(f.convertCalls, args)
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	fail := f.convertErr
	outputPath := args[len(args)-1]
	if fail == nil && f.failRel[filepath.Base(outputPath)] {
		fail = errors.New("exit status 1")
	}
	f.mu.Unlock()

	if f.convertDelay > 0 {
		time.Sleep(f.convertDelay)
	}

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if fail != nil {
		return ffmpeg.Result{Stderr: f.convertStderr, Err: fail}
	}
	if err := os.WriteFile(outputPath, []byte("converted-bytes"), 0o644); err != nil {
		return ffmpeg.Result{Err: err}
	}
	return ffmpeg.Result{}
}

func (f *fakeRunner) maxConcurrent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

func (f *fakeRunner) calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.convertCalls...)
}

func newConverter(t *testing.T, dir string, opts *config.Options, runner ffmpeg.Runner) *Converter {
	t.Helper()
	return &Converter{
		Opts:      opts,
		Profile:   hwaccel.ProfileFor(hwaccel.KindCPU),
		Runner:    runner,
		Preserver: NewPreserver(dir),
		Log:       newTestLogger(t, opts),
	}
}
