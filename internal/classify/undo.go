package classify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"notesort/internal/store"
)

// ErrNothingToUndo is returned when no undoable sort exists.
var ErrNothingToUndo = errors.New("nothing to undo")

// UndoLastSort moves the most recently sorted note back to its recorded
// source path and marks the history entry as undone, so repeated undo pops
// successive sorts. The note record and vector entry keep pointing at the
// destination; the next classification of the restored file replaces both
// (each store keys on canonical path, so nothing duplicates).
//
// With no undoable history, or when the file is no longer at the recorded
// destination, UndoLastSort fails without mutating anything.
func (e *Engine) UndoLastSort() (store.SortHistoryEntry, error) {
	entry, err := e.meta.LastHistoryEntry()
	if errors.Is(err, store.ErrNoHistory) {
		return store.SortHistoryEntry{}, ErrNothingToUndo
	}
	if err != nil {
		return store.SortHistoryEntry{}, fmt.Errorf("failed to read sort history: %w", err)
	}

	if _, err := os.Stat(entry.ToPath); err != nil {
		return store.SortHistoryEntry{}, fmt.Errorf("sorted file no longer at %s: %w", entry.ToPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(entry.FromPath), 0755); err != nil {
		return store.SortHistoryEntry{}, fmt.Errorf("failed to recreate source folder: %w", err)
	}
	if err := os.Rename(entry.ToPath, entry.FromPath); err != nil {
		return store.SortHistoryEntry{}, fmt.Errorf("failed to move note back: %w", err)
	}

	if err := e.meta.MarkUndone(entry.Seq); err != nil {
		return store.SortHistoryEntry{}, fmt.Errorf("failed to mark sort undone: %w", err)
	}
	return entry, nil
}
