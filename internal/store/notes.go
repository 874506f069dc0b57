package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertNote writes a note record, replacing any existing record with the
// same id, then recomputes folder stats for the note's folder and, on a
// folder change, the vacated folder.
func (s *SQLiteStore) UpsertNote(note NoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Folder the note previously lived in, if any.
	var previousFolder string
	row := s.db.QueryRow("SELECT folder_path FROM notes WHERE id = ?", note.ID)
	switch err := row.Scan(&previousFolder); {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		previousFolder = ""
	default:
		return fmt.Errorf("failed to look up existing note: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO notes
			(id, file_path, folder_path, content_preview, created_at, updated_at, file_size, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		note.ID,
		note.FilePath,
		note.FolderPath,
		note.ContentPreview,
		note.CreatedAt.Format(time.RFC3339),
		note.UpdatedAt.Format(time.RFC3339),
		note.FileSize,
		note.WordCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}

	if err := s.recomputeFolderStats(note.FolderPath); err != nil {
		return err
	}
	if previousFolder != "" && previousFolder != note.FolderPath {
		if err := s.recomputeFolderStats(previousFolder); err != nil {
			return err
		}
	}
	return nil
}

// GetNote retrieves a note record by id.
func (s *SQLiteStore) GetNote(id string) (NoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, file_path, folder_path, content_preview, created_at, updated_at, file_size, word_count
		FROM notes
		WHERE id = ?
	`
	row := s.db.QueryRow(query, id)

	var note NoteRecord
	var createdStr, updatedStr string
	err := row.Scan(
		&note.ID,
		&note.FilePath,
		&note.FolderPath,
		&note.ContentPreview,
		&createdStr,
		&updatedStr,
		&note.FileSize,
		&note.WordCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return NoteRecord{}, ErrNotFound
	}
	if err != nil {
		return NoteRecord{}, fmt.Errorf("failed to scan note: %w", err)
	}

	if note.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return NoteRecord{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if note.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
		return NoteRecord{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return note, nil
}

// DeleteNote removes a note record and recomputes its folder stats.
func (s *SQLiteStore) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var folder string
	row := s.db.QueryRow("SELECT folder_path FROM notes WHERE id = ?", id)
	switch err := row.Scan(&folder); {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to look up note: %w", err)
	}

	if _, err := s.db.Exec("DELETE FROM notes WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return s.recomputeFolderStats(folder)
}

// ListNoteIDs returns all note ids.
func (s *SQLiteStore) ListNoteIDs() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT id FROM notes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan note id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// recomputeFolderStats rewrites the derived count for one folder from the
// notes table. Caller must hold s.mu.
func (s *SQLiteStore) recomputeFolderStats(folder string) error {
	row := s.db.QueryRow("SELECT COUNT(*) FROM notes WHERE folder_path = ?", folder)

	var count int
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("failed to count notes in %q: %w", folder, err)
	}

	if count == 0 {
		if _, err := s.db.Exec("DELETE FROM folder_stats WHERE folder_path = ?", folder); err != nil {
			return fmt.Errorf("failed to remove empty folder stats: %w", err)
		}
		return nil
	}

	query := `
		INSERT OR REPLACE INTO folder_stats (folder_path, note_count, last_updated)
		VALUES (?, ?, ?)
	`
	if _, err := s.db.Exec(query, folder, count, time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to update folder stats: %w", err)
	}
	return nil
}
