package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Purge removes regular files in the download directory whose modification
// time is older than maxAge and returns how many were removed. A zero or
// negative maxAge removes nothing.
func (f *Fetcher) Purge(maxAge time.Duration) (int, error) {
	return purgeDir(f.dir, maxAge, time.Now())
}

func purgeDir(dir string, maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("media: reading %s: %w", dir, err)
	}

	cutoff := now.Add(-maxAge)
	var (
		removed int
		errs    []error
	)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("media: removing %s: %w", e.Name(), err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
