package fetch

import (
	"context"
	"fmt"

	"github.com/DanielO/kicad-jlcpcb-tools/pkg/splitzip"
)

// Assemble retrieves the complete volume set of the split archive.
//
// The mandatory base volume is fetched first; its absence or any transport
// failure aborts immediately since extraction cannot succeed without it.
// Continuation volumes are then fetched in increasing index order until the
// first absent volume, which terminates discovery: split archives are
// contiguous, so the first gap marks the true end of the set. A transport
// error on a continuation volume is fatal rather than tolerated, because
// silently skipping it would truncate the archive.
//
// The returned volumes are ordered by index, base volume first.
func (f *Fetcher) Assemble(ctx context.Context) ([]splitzip.Volume, error) {
	base, err := f.FetchVolume(ctx, splitzip.BaseIndex)
	if err != nil {
		return nil, err
	}
	switch base.Status {
	case StatusRetrieved:
	case StatusAbsent:
		return nil, fmt.Errorf("%w: %s not published", ErrBaseVolume, base.Name)
	default:
		return nil, fmt.Errorf("%w: %v", ErrBaseVolume, base.Err)
	}

	volumes := []splitzip.Volume{{Index: base.Index, Path: base.Path}}
	if f.opts.Progress != nil {
		f.opts.Progress.VolumeRetrieved(base.Name, base.Size)
	}

	for i := 1; i <= f.opts.MaxVolumes; i++ {
		res, err := f.FetchVolume(ctx, i)
		if err != nil {
			return nil, err
		}

		switch res.Status {
		case StatusAbsent:
			if f.opts.Progress != nil {
				f.opts.Progress.VolumeAbsent(res.Name)
			}
			return volumes, nil
		case StatusTransportError:
			return nil, fmt.Errorf("fetch: continuation volume %s: %w", res.Name, res.Err)
		}

		volumes = append(volumes, splitzip.Volume{Index: res.Index, Path: res.Path})
		if f.opts.Progress != nil {
			f.opts.Progress.VolumeRetrieved(res.Name, res.Size)
		}
	}

	return volumes, nil
}
