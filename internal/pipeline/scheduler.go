package pipeline

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/vidconv/internal/logging"
)

// Reporter receives batch-level progress: one Step per completed file.
// Defined here (rather than importing the progress package) so the scheduler
// stays testable with a no-op.
type Reporter interface {
	Step()
}

// NopReporter discards progress events.
type NopReporter struct{}

func (NopReporter) Step() {}

// Scheduler drives the Converter over the discovered file set with a worker
// pool bounded by MaxParallel. Each worker runs one file to its terminal
// state before taking the next; no file is ever dispatched twice.
type Scheduler struct {
	Converter   *Converter
	MaxParallel int
	Log         *logging.Logger
	Progress    Reporter
}

// Run converts all files and returns their results, sorted by source path
// for stable reporting (workers complete in arbitrary order).
//
// Cancellation is honored at dispatch granularity: once ctx is done no new
// file is started, while in-flight files run to a safe terminal state
// (finalized or rolled back) before Run returns.
func (s *Scheduler) Run(ctx context.Context, files []SourceFile) []JobResult {
	reporter := s.Progress
	if reporter == nil {
		reporter = NopReporter{}
	}

	results := make([]JobResult, 0, len(files))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(s.MaxParallel)

	interrupted := false
	for _, src := range files {
		src := src
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		g.Go(func() error {
			// A slot may free up after cancellation; leave the file untouched
			// at its original location rather than starting it.
			if ctx.Err() != nil {
				return nil
			}
			res := s.Converter.Convert(ctx, src)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			reporter.Step()
			return nil
		})
	}

	_ = g.Wait()

	if interrupted {
		s.Log.Warn("Interrupted: %d of %d files processed", len(results), len(files))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	return results
}
