// Package splitzip provides types for reassembling and extracting split zip
// archives.
//
// A split zip archive is published as a sequence of volumes: numbered
// continuation volumes (name.z01, name.z02, ...) followed by a base volume
// (name.zip). The base volume is the final segment of the archive and holds
// the central directory, so it is mandatory; the number of continuation
// volumes varies with the size of the archived data.
//
// # Volume naming
//
// [VolumeName] derives the conventional file name for a volume index:
//
//	VolumeName("cache", 0) == "cache.zip"   // base volume
//	VolumeName("cache", 1) == "cache.z01"   // first continuation
//	VolumeName("cache", 2) == "cache.z02"
//
// Index 0 always denotes the base volume.
//
// # Reassembly
//
// [Combine] concatenates a validated volume set into a single archive file:
// continuation volumes in increasing index order, base volume last. Use
// [Validate] first to confirm the set is contiguous and complete.
//
// # Extraction
//
// [Extract] opens a combined archive and writes one entry to a destination
// path. Extraction is all-or-nothing: the entry is written to a temporary
// file and renamed into place only on success, so a malformed archive never
// leaves a partial destination file behind.
package splitzip
