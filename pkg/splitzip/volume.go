package splitzip

import (
	"fmt"
	"sort"
)

// BaseIndex is the volume index of the mandatory base volume.
const BaseIndex = 0

// Volume is one locally stored segment of a split archive.
type Volume struct {
	// Index is the sequence index: 0 for the base volume, 1..N for
	// continuation volumes.
	Index int

	// Path is the local file holding the volume's bytes.
	Path string
}

// VolumeName returns the conventional file name for the volume with the
// given index: "<name>.zip" for the base volume, "<name>.zNN" for
// continuations.
func VolumeName(name string, index int) string {
	if index == BaseIndex {
		return name + ".zip"
	}
	return fmt.Sprintf("%s.z%02d", name, index)
}

// sortVolumes orders volumes by ascending index.
func sortVolumes(volumes []Volume) []Volume {
	sorted := make([]Volume, len(volumes))
	copy(sorted, volumes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}
