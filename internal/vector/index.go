/*
Package vector implements the in-memory vector similarity index.

The index holds one entry per note, keyed by the note's canonical file path,
and answers nearest-neighbor queries by brute-force cosine similarity. All
entries share a single fixed dimensionality; the full entry set is persisted
as one JSON snapshot (see snapshot.go).
*/
package vector

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrDimensionMismatch indicates a vector whose length does not match the
// index dimensionality. This is a configuration fault (wrong embedding
// model), so callers should treat it as fatal rather than per-note.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Metadata is the denormalized note information stored alongside each vector.
type Metadata struct {
	Path      string    `json:"path"`
	Folder    string    `json:"folder"`
	CreatedAt time.Time `json:"createdAt"`
}

// Entry is a single indexed note vector.
type Entry struct {
	// ID is the note's canonical file path.
	ID string `json:"id"`

	// Embedding is the fixed-dimension vector for the note content.
	Embedding []float32 `json:"embedding"`

	// Metadata carries the note's location info.
	Metadata Metadata `json:"metadata"`

	// Seq is the original insertion order, used as a stable tie-break
	// in query results. Replacing an entry keeps its original Seq.
	Seq int64 `json:"seq"`
}

// Match is a query result: an entry plus its similarity to the query vector.
type Match struct {
	ID         string
	Folder     string
	Path       string
	Similarity float64
}

// Index is an in-memory brute-force cosine similarity index.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	dim     int
	nextSeq int64
}

// New creates an empty index. The dimensionality is fixed by the first Add.
func New() *Index {
	return &Index{
		entries: make(map[string]*Entry),
	}
}

// Add inserts or replaces the entry for id. Adding the same id twice never
// duplicates; the later embedding wins and the entry keeps its original
// insertion order.
func (x *Index) Add(id string, embedding []float32, md Metadata) error {
	if len(embedding) == 0 {
		return fmt.Errorf("empty embedding for %q", id)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dim == 0 {
		x.dim = len(embedding)
	} else if len(embedding) != x.dim {
		return fmt.Errorf("%w: index has %d, got %d", ErrDimensionMismatch, x.dim, len(embedding))
	}

	if existing, ok := x.entries[id]; ok {
		existing.Embedding = embedding
		existing.Metadata = md
		return nil
	}

	x.entries[id] = &Entry{
		ID:        id,
		Embedding: embedding,
		Metadata:  md,
		Seq:       x.nextSeq,
	}
	x.nextSeq++
	return nil
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (x *Index) Remove(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.entries, id)
}

// Get returns the entry for id, or false if absent.
func (x *Index) Get(id string) (Entry, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	e, ok := x.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of indexed entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// IDs returns all indexed ids in insertion order.
func (x *Index) IDs() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	ordered := make([]*Entry, 0, len(x.entries))
	for _, e := range x.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	ids := make([]string, len(ordered))
	for i, e := range ordered {
		ids[i] = e.ID
	}
	return ids
}

// Query returns the k entries most similar to the query vector, descending
// by cosine similarity, ties broken by insertion order. An empty index
// returns an empty slice, never an error.
func (x *Index) Query(embedding []float32, k int) ([]Match, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.entries) == 0 {
		return []Match{}, nil
	}
	if len(embedding) != x.dim {
		return nil, fmt.Errorf("%w: index has %d, query has %d", ErrDimensionMismatch, x.dim, len(embedding))
	}
	if k <= 0 {
		return []Match{}, nil
	}

	type scored struct {
		entry *Entry
		sim   float64
	}

	candidates := make([]scored, 0, len(x.entries))
	for _, e := range x.entries {
		candidates = append(candidates, scored{entry: e, sim: CosineSimilarity(embedding, e.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].entry.Seq < candidates[j].entry.Seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	matches := make([]Match, 0, k)
	for _, c := range candidates[:k] {
		matches = append(matches, Match{
			ID:         c.entry.ID,
			Folder:     c.entry.Metadata.Folder,
			Path:       c.entry.Metadata.Path,
			Similarity: c.sim,
		})
	}
	return matches, nil
}
