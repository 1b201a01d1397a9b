package artifact

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ArchiveEntry names one job artifact to include in a batch archive.
type ArchiveEntry struct {
	JobID uuid.UUID
	Name  string
}

// Archive bundles the named artifacts into one zip. Reads run concurrently;
// entries are written in ascending Name order so the archive bytes are
// deterministic for a given entry set. A single missing artifact fails the
// whole archive.
func (s *Store) Archive(ctx context.Context, entries []ArchiveEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("archive: no entries")
	}

	sorted := make([]ArchiveEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].JobID.String() < sorted[j].JobID.String()
	})

	contents := make([][]byte, len(sorted))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, e := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := s.Get(e.JobID, e.Name)
			if err != nil {
				return err
			}
			mu.Lock()
			contents[i] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range sorted {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("archive entry %s: %w", e.Name, err)
		}
		if _, err := w.Write(contents[i]); err != nil {
			return nil, fmt.Errorf("archive entry %s: %w", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	s.logger.Debug("artifact.archive", "entries", len(sorted), "bytes", buf.Len())
	return buf.Bytes(), nil
}
