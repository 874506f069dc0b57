package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AppendHistory appends a sort history entry and returns its sequence id.
// The sequence is monotonically increasing across the life of the database.
func (s *SQLiteStore) AppendHistory(entry SortHistoryEntry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO sort_history (note_id, from_path, to_path, confidence, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := s.db.Exec(query,
		entry.NoteID,
		entry.FromPath,
		entry.ToPath,
		entry.Confidence,
		entry.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append history: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read history sequence: %w", err)
	}
	return seq, nil
}

// LastHistoryEntry returns the highest-sequence entry that has not been
// undone, or ErrNoHistory. Undone entries are skipped so repeated undo
// pops successive sorts.
func (s *SQLiteStore) LastHistoryEntry() (SortHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, note_id, from_path, to_path, confidence, timestamp
		FROM sort_history
		WHERE undone_at IS NULL
		ORDER BY id DESC
		LIMIT 1
	`
	row := s.db.QueryRow(query)

	var entry SortHistoryEntry
	var timestampStr string
	err := row.Scan(
		&entry.Seq,
		&entry.NoteID,
		&entry.FromPath,
		&entry.ToPath,
		&entry.Confidence,
		&timestampStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SortHistoryEntry{}, ErrNoHistory
	}
	if err != nil {
		return SortHistoryEntry{}, fmt.Errorf("failed to scan history entry: %w", err)
	}

	if entry.Timestamp, err = time.Parse(time.RFC3339, timestampStr); err != nil {
		return SortHistoryEntry{}, fmt.Errorf("failed to parse history timestamp: %w", err)
	}
	return entry, nil
}

// MarkUndone records that the history entry with the given sequence id has
// been reversed.
func (s *SQLiteStore) MarkUndone(seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE sort_history SET undone_at = ? WHERE id = ?",
		time.Now().Format(time.RFC3339), seq)
	if err != nil {
		return fmt.Errorf("failed to mark history entry undone: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check undo update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("history entry %d not found", seq)
	}
	return nil
}

// RecordSearch logs a search query for analytics.
func (s *SQLiteStore) RecordSearch(rec SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO search_history (search_id, query, timestamp, results_count)
		VALUES (?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, rec.SearchID, rec.Query, rec.Timestamp.Format(time.RFC3339), rec.ResultsCount); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}
