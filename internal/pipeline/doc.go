// Package pipeline orchestrates the batch run: file discovery, per-file
// conversion with original-file preservation, and the bounded worker pool
// that drives the batch.
//
// Per-file lifecycle:
//
//	Discovered → Preserved → Probing → Planning → Converting → Verifying
//	           → Finalized | RolledBack | Failed
//
// The preservation ledger is the safety invariant: at every instant a file
// is either at its original location, at its output location, or tracked in
// exactly one active preservation record under old/. A failed conversion is
// rolled back (original restored, partial output removed); one file's
// failure never aborts the batch.
package pipeline
