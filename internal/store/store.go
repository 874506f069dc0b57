/*
Package store implements the durable metadata layer for notesort.

It records filed notes, per-folder population counts, and the append-only
sort history used for statistics and undo. The backing database is SQLite
via modernc.org/sqlite (pure Go, CGo-free).
*/
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// ErrNoHistory is returned by LastHistoryEntry when no undoable sort exists.
var ErrNoHistory = errors.New("no sort history")

// ErrNotFound is returned by GetNote for an unknown note id.
var ErrNotFound = errors.New("note not found")

// Store defines the interface for metadata persistence.
type Store interface {
	// Init opens the database and runs migrations.
	Init() error

	// UpsertNote writes a note record, replacing any existing record with
	// the same id, and recomputes folder stats for the affected folders.
	UpsertNote(note NoteRecord) error

	// GetNote retrieves a note record by id.
	GetNote(id string) (NoteRecord, error)

	// DeleteNote removes a note record and recomputes its folder stats.
	DeleteNote(id string) error

	// ListNoteIDs returns all note ids.
	ListNoteIDs() ([]string, error)

	// AppendHistory appends a sort history entry and returns its sequence id.
	AppendHistory(entry SortHistoryEntry) (int64, error)

	// LastHistoryEntry returns the highest-sequence entry that has not been
	// undone, or ErrNoHistory.
	LastHistoryEntry() (SortHistoryEntry, error)

	// MarkUndone records that the history entry with the given sequence id
	// has been reversed.
	MarkUndone(seq int64) error

	// AggregateStats computes counts and mean confidence over the trailing
	// window of windowDays days.
	AggregateStats(windowDays int) (Stats, error)

	// FolderCounts returns per-folder note counts, highest first.
	FolderCounts() ([]FolderStats, error)

	// RecordSearch logs a search query for analytics.
	RecordSearch(rec SearchRecord) error

	// Clear removes all notes, history, and folder stats. Irreversible.
	Clear() error

	// Close closes the database connection.
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// New creates a store backed by the database file at dbPath. The parent
// directory is created on Init if needed.
func New(dbPath string) *SQLiteStore {
	return &SQLiteStore{dbPath: dbPath}
}

// Init opens the database and runs migrations. Calling it again on an open
// store is a no-op; after a failure the store stays closed and Init can be
// retried.
func (s *SQLiteStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.db = nil
	return nil
}

// Clear removes all notes, history, folder stats, and search records.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"notes", "sort_history", "folder_stats", "search_history"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
