package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"pinpoint/internal/diag"
	"pinpoint/internal/scancache"
)

// DirResult is the outcome of indexing one file of a directory walk.
type DirResult struct {
	Path  string
	Stats Stats
	Flags Flags
	Hash  scancache.Digest
	Bag   *diag.Bag
}

// listFiles returns the sorted paths of all regular files under dir
// whose base name matches pattern (empty pattern matches everything).
func listFiles(dir, pattern string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if pattern != "" {
			ok, err := filepath.Match(pattern, d.Name())
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic order regardless of walk internals.
	sort.Strings(files)
	return files, nil
}

// IndexDir indexes every matching file under dir in parallel. Results
// come back in sorted path order; a file that fails to load occupies its
// slot with the failure in its bag, exactly like a single Load. jobs <= 0
// means one worker per CPU.
func IndexDir(ctx context.Context, dir, pattern string, jobs int, opts Options) ([]DirResult, error) {
	files, err := listFiles(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Per-file timing would drown the output; the caller times the walk.
	workerOpts := opts
	workerOpts.EnableTimings = false

	// Slot per file, so no mutex is needed.
	results := make([]DirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		// Rebind for the closure; go.mod predates per-iteration loop vars.
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res := Load(path, workerOpts)
			res.Finish(workerOpts)

			stats, _ := res.Stats()
			results[i] = DirResult{
				Path:  path,
				Stats: stats,
				Flags: res.Flags,
				Hash:  res.Hash,
				Bag:   res.Bag,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
