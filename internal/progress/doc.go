// Package progress outputs human-readable progress for snapshot runs.
//
// The reporter is event-driven rather than sampled: the pipeline runs one
// blocking stage at a time, so each stage reports as it completes. All
// output goes to a single writer (stderr by default) with a "[jlcsnap]"
// prefix.
package progress
