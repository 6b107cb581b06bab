package pipeline

import "time"

// Outcome is the terminal result of one file's conversion.
type Outcome int

const (
	// OutcomeSuccess: converted output in place, original preserved under old/.
	OutcomeSuccess Outcome = iota
	// OutcomeFailed: conversion or preservation failed; Reason explains why.
	// When preservation never happened the source was not touched; otherwise
	// the original was rolled back to its source path.
	OutcomeFailed
	// OutcomeRestored: the run was interrupted mid-conversion and the
	// original was restored to its source path.
	OutcomeRestored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	case OutcomeRestored:
		return "restored"
	}
	return "unknown"
}

// JobResult is one file's aggregate-reporting record. Never mutated after
// creation.
type JobResult struct {
	Source  string
	Outcome Outcome
	Reason  string // Empty on success.
	Elapsed time.Duration

	InputBytes  int64
	OutputBytes int64
}

// RunStats aggregates JobResults for the batch summary.
type RunStats struct {
	Total            int
	Converted        int
	Failed           int
	Restored         int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// Summarize folds per-file results into batch counters.
func Summarize(results []JobResult) RunStats {
	s := RunStats{Total: len(results)}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeSuccess:
			s.Converted++
			s.TotalInputBytes += r.InputBytes
			s.TotalOutputBytes += r.OutputBytes
		case OutcomeFailed:
			s.Failed++
		case OutcomeRestored:
			s.Restored++
		}
	}
	return s
}

// SpaceSaved returns the aggregate byte difference between inputs and
// outputs of successful conversions. Positive means outputs are smaller.
func (s *RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}
