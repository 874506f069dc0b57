package classify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"notesort/internal/store"
	"notesort/internal/vector"
	"notesort/internal/workspace"
)

// IndexWorkspace scans the workspace and (re)builds both stores from the
// notes themselves: every discovered note gets a metadata record and a
// vector entry, and the folder summary used as classification context is
// refreshed. This is also the rebuild procedure for recovering from store
// divergence.
func (e *Engine) IndexWorkspace(ctx context.Context) (*workspace.Analysis, error) {
	analysis, err := e.analyzer.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze workspace: %w", err)
	}
	e.summary = analysis.FolderSummary()

	now := time.Now()
	for _, note := range analysis.Notes {
		if ctx.Err() != nil {
			return analysis, ctx.Err()
		}

		embedding, err := e.embedder.Embed(ctx, note.Content)
		if err != nil {
			log.Printf("Warning: failed to embed %s: %v", note.RelPath, err)
			continue
		}
		if err := e.index.Add(note.Path, embedding, vector.Metadata{
			Path:      note.Path,
			Folder:    note.Folder,
			CreatedAt: now,
		}); err != nil {
			return analysis, fmt.Errorf("failed to index %s: %w", note.RelPath, err)
		}

		if err := e.meta.UpsertNote(store.NoteRecord{
			ID:             note.Path,
			FilePath:       note.Path,
			FolderPath:     note.Folder,
			ContentPreview: truncate(note.Content, previewLength),
			CreatedAt:      now,
			UpdatedAt:      now,
			FileSize:       note.Size,
			WordCount:      note.WordCount(),
		}); err != nil {
			return analysis, fmt.Errorf("failed to record %s: %w", note.RelPath, err)
		}
	}

	if e.snapshotPath != "" {
		if err := e.index.Persist(e.snapshotPath); err != nil {
			return analysis, fmt.Errorf("failed to persist vector snapshot: %w", err)
		}
	}
	return analysis, nil
}

// Divergence reports note ids present in one store but missing from the
// other, e.g. after a crash between the two bookkeeping writes.
type Divergence struct {
	// MissingInIndex are metadata note ids with no vector entry.
	MissingInIndex []string

	// MissingInStore are vector entry ids with no metadata record.
	MissingInStore []string
}

// Empty reports whether the two stores agree.
func (d Divergence) Empty() bool {
	return len(d.MissingInIndex) == 0 && len(d.MissingInStore) == 0
}

// String renders the divergence for reporting.
func (d Divergence) String() string {
	if d.Empty() {
		return "stores are consistent"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d note(s) missing from vector index, %d vector(s) missing from metadata",
		len(d.MissingInIndex), len(d.MissingInStore))
	return b.String()
}

// CheckConsistency compares the metadata store and the vector index. It
// detects divergence without repairing it; IndexWorkspace rebuilds both.
func (e *Engine) CheckConsistency() (Divergence, error) {
	noteIDs, err := e.meta.ListNoteIDs()
	if err != nil {
		return Divergence{}, fmt.Errorf("failed to list notes: %w", err)
	}

	var d Divergence
	for _, id := range noteIDs {
		if _, ok := e.index.Get(id); !ok {
			d.MissingInIndex = append(d.MissingInIndex, id)
		}
	}

	known := make(map[string]bool, len(noteIDs))
	for _, id := range noteIDs {
		known[id] = true
	}
	for _, id := range e.index.IDs() {
		if !known[id] {
			d.MissingInStore = append(d.MissingInStore, id)
		}
	}
	return d, nil
}
