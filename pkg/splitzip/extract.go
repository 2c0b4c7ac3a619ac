package splitzip

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Extract writes one entry of a combined archive to destPath.
//
// entry selects the archive entry by exact name; if entry is empty the
// archive must contain exactly one file entry, which is used. The entry is
// decompressed to a temporary file next to destPath and renamed into place
// on success, so destPath either holds the complete entry or is untouched.
func Extract(archivePath, entry, destPath string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("splitzip: open archive: %w", err)
	}
	defer zr.Close()

	f, err := selectEntry(&zr.Reader, entry)
	if err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("splitzip: open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	tmp := destPath + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("splitzip: create destination: %w", err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("splitzip: extract entry %s: %w", f.Name, err)
	}

	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("splitzip: close destination: %w", err)
	}

	if err := os.Rename(tmp, destPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("splitzip: finalize destination: %w", err)
	}

	return nil
}

// selectEntry finds the requested entry, or the single file entry when no
// name is given.
func selectEntry(zr *zip.Reader, entry string) (*zip.File, error) {
	if entry != "" {
		for _, f := range zr.File {
			if f.Name == entry {
				return f, nil
			}
		}
		return nil, fmt.Errorf("splitzip: entry %s not found in archive", entry)
	}

	var only *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		if only != nil {
			return nil, fmt.Errorf("splitzip: archive has multiple entries, specify one")
		}
		only = f
	}
	if only == nil {
		return nil, fmt.Errorf("splitzip: archive has no file entries")
	}
	return only, nil
}
