// Package fetch retrieves the volumes of a published split archive.
//
// The source publishes a base volume (<base-url>.zip) and a variable number
// of continuation volumes (<base-url>.z01, .z02, ...). The count is not
// known in advance: it grows and shrinks with the size of the archived
// database, so discovery polls increasing indices until the source answers
// 404 for one.
//
// Every fetch produces an explicit Result with one of three outcomes:
// retrieved, confirmed-absent, or transport error. A confirmed-absent
// continuation is the normal end-of-set signal; everything else that fails
// is fatal to the run.
//
// Fetching is strictly sequential, one volume at a time, in increasing
// index order with the base volume first so a missing source fails fast.
package fetch
