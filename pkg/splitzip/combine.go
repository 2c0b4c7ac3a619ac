package splitzip

import (
	"fmt"
	"io"
	"os"
)

// Combine concatenates a volume set into a single archive file at dst,
// replacing any existing file there.
//
// Segments are written in split-archive order: continuation volumes by
// ascending index, base volume last. The base volume carries the central
// directory of the archive, which is why it closes the stream; writing it
// anywhere else produces a corrupt archive.
func Combine(dst string, volumes []Volume) error {
	result, err := Validate(volumes)
	if err != nil {
		return err
	}
	if !result.Valid {
		return fmt.Errorf("splitzip: incomplete volume set: %v", result.Errors)
	}

	sorted := sortVolumes(volumes)

	// Move the base volume to the end, keeping continuations in index order.
	ordered := make([]Volume, 0, len(sorted))
	var base Volume
	for _, v := range sorted {
		if v.Index == BaseIndex {
			base = v
			continue
		}
		ordered = append(ordered, v)
	}
	ordered = append(ordered, base)

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("splitzip: create combined archive: %w", err)
	}
	defer out.Close()

	for _, v := range ordered {
		if err := appendVolume(out, v); err != nil {
			return err
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("splitzip: close combined archive: %w", err)
	}

	return nil
}

func appendVolume(out io.Writer, v Volume) error {
	in, err := os.Open(v.Path)
	if err != nil {
		return fmt.Errorf("splitzip: open volume %d: %w", v.Index, err)
	}
	defer in.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("splitzip: append volume %d: %w", v.Index, err)
	}

	return nil
}
