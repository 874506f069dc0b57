package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// snapshot is the on-disk form of the full index. The entry set is rewritten
// wholesale on every persist; there is no incremental format.
type snapshot struct {
	Dimension int     `json:"dimension"`
	NextSeq   int64   `json:"nextSeq"`
	Entries   []Entry `json:"entries"`
}

// Persist writes the full entry set to path. The snapshot is written to a
// temporary file in the same directory and renamed over the target, so a
// crash mid-write never corrupts the previous snapshot.
func (x *Index) Persist(path string) error {
	x.mu.RLock()
	snap := snapshot{
		Dimension: x.dim,
		NextSeq:   x.nextSeq,
		Entries:   make([]Entry, 0, len(x.entries)),
	}
	for _, e := range x.entries {
		snap.Entries = append(snap.Entries, *e)
	}
	x.mu.RUnlock()

	sort.Slice(snap.Entries, func(i, j int) bool { return snap.Entries[i].Seq < snap.Entries[j].Seq })

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal vector snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vectors-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Restore loads the entry set from path, replacing the index contents.
// A missing snapshot file leaves the index empty and is not an error.
func (x *Index) Restore(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read vector snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse vector snapshot: %w", err)
	}

	entries := make(map[string]*Entry, len(snap.Entries))
	for i := range snap.Entries {
		e := snap.Entries[i]
		if snap.Dimension != 0 && len(e.Embedding) != snap.Dimension {
			return fmt.Errorf("%w: snapshot dimension %d, entry %q has %d",
				ErrDimensionMismatch, snap.Dimension, e.ID, len(e.Embedding))
		}
		entries[e.ID] = &e
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = entries
	x.dim = snap.Dimension
	x.nextSeq = snap.NextSeq
	return nil
}
