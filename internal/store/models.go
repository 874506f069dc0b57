/*
Package store provides data models for the note metadata layer.

These models represent filed notes, the append-only sort history used for
statistics and undo, and derived per-folder counts.
*/
package store

import "time"

// NoteRecord represents a filed note. Identity is the note's canonical
// file path.
type NoteRecord struct {
	// ID is the canonical file path of the note.
	ID string `json:"id"`

	// FilePath duplicates ID for schema clarity.
	FilePath string `json:"file_path"`

	// FolderPath is the folder relative to the workspace root.
	FolderPath string `json:"folder_path"`

	// ContentPreview is a bounded prefix of the note content.
	ContentPreview string `json:"content_preview"`

	// CreatedAt is when the record was first written.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `json:"updated_at"`

	// FileSize is the note size in bytes.
	FileSize int64 `json:"file_size"`

	// WordCount is the whitespace-delimited word count of the content.
	WordCount int `json:"word_count"`
}

// SortHistoryEntry is one append-only record of an executed sort.
type SortHistoryEntry struct {
	// Seq is the monotonically increasing sequence id.
	Seq int64 `json:"seq"`

	// NoteID is the canonical path of the note after the move.
	NoteID string `json:"note_id"`

	// FromPath is where the note was before the move.
	FromPath string `json:"from_path"`

	// ToPath is where the note was moved to.
	ToPath string `json:"to_path"`

	// Confidence is the suggestion confidence in [0,1] that drove the move.
	Confidence float64 `json:"confidence"`

	// Timestamp is when the sort was executed.
	Timestamp time.Time `json:"timestamp"`

	// UndoneAt is set once the sort has been reversed by undo.
	UndoneAt *time.Time `json:"undone_at,omitempty"`
}

// FolderStats is the derived note count for one folder. It is always
// recomputable from the note records and never independently authoritative.
type FolderStats struct {
	FolderPath  string    `json:"folder_path"`
	NoteCount   int       `json:"note_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// SearchRecord logs a note search query for analytics.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// Query is the search query text.
	Query string `json:"query"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`
}

// Stats is the windowed aggregate returned by AggregateStats.
type Stats struct {
	// Notes is the total number of note records.
	Notes int `json:"notes"`

	// Folders is the number of distinct folders holding notes.
	Folders int `json:"folders"`

	// Sorts is the number of non-undone history entries inside the window.
	Sorts int `json:"sorts"`

	// MeanConfidence is the mean confidence of those entries, 0 when the
	// window is empty (never NaN).
	MeanConfidence float64 `json:"mean_confidence"`
}
