// Package pipeline sequences a snapshot run.
//
// A run is strictly sequential:
//
//	cleanup(pre) -> assemble volumes -> extract database ->
//	convert to artifact -> cleanup(post)
//
// The pre-cleanup deletes any stale database left by a previous run so
// extraction always starts from a clean slate. The post-cleanup deletes
// the fetched volume files once the converter has run. Together they make
// re-runs idempotent: two consecutive runs against identical source data
// produce identical databases and leave no transient files behind.
//
// Any fatal error aborts the run immediately. There is no partial-success
// state and no retry at this level; transient HTTP failures are retried
// inside the fetcher's client.
package pipeline
