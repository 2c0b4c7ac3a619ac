package splitzip

import (
	"fmt"
	"os"
)

// ValidationResult contains the results of validating a volume set.
type ValidationResult struct {
	Valid        bool     // true if the set can be combined
	VolumeCount  int      // number of volumes in the set
	TotalSize    int64    // combined size of all volume files
	MissingBase  bool     // true if the base volume is absent from the set
	GapAtIndex   int      // first missing continuation index, 0 if none
	Errors       []string // detailed error messages
}

// Validate checks that a volume set is complete enough to combine: the base
// volume is present, continuation indices are contiguous starting at 1, and
// every volume file exists on disk and is non-empty.
//
// Note: an incomplete set is NOT returned as an error. It is reported in the
// ValidationResult with Valid=false; an error is only returned for problems
// inspecting the files themselves.
func Validate(volumes []Volume) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:       true,
		VolumeCount: len(volumes),
		Errors:      make([]string, 0),
	}

	sorted := sortVolumes(volumes)

	hasBase := false
	next := 1
	for _, v := range sorted {
		if v.Index == BaseIndex {
			hasBase = true
			continue
		}
		if v.Index != next {
			result.Valid = false
			result.GapAtIndex = next
			result.Errors = append(result.Errors,
				fmt.Sprintf("continuation volume %d missing before volume %d", next, v.Index))
		}
		next = v.Index + 1
	}

	if !hasBase {
		result.Valid = false
		result.MissingBase = true
		result.Errors = append(result.Errors, "base volume missing")
	}

	for _, v := range sorted {
		fi, err := os.Stat(v.Path)
		if err != nil {
			if os.IsNotExist(err) {
				result.Valid = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("volume %d file missing: %s", v.Index, v.Path))
				continue
			}
			return nil, fmt.Errorf("splitzip: stat volume %d: %w", v.Index, err)
		}
		if fi.Size() == 0 {
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("volume %d is empty: %s", v.Index, v.Path))
		}
		result.TotalSize += fi.Size()
	}

	return result, nil
}
