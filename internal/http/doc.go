// Package http provides a retrying HTTP client for fetching archive volumes.
//
// The client wraps net/http with:
//   - Exponential backoff with jitter for transient failures
//   - Automatic retry on 5xx server errors
//   - Sentinel errors for common status codes (ErrNotFound, ErrForbidden)
//
// A 404 response is never retried: the volume publisher serves static files,
// so "not found" is a definitive answer, not a transient condition. Callers
// use errors.Is(err, ErrNotFound) to distinguish a confirmed-absent volume
// from a transport failure.
package http
