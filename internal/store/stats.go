package store

import (
	"fmt"
	"time"
)

// AggregateStats computes note/folder/sort counts and the mean confidence
// of history entries within the trailing window of windowDays days.
// Mean confidence is 0 when no entries fall in the window, never NaN.
func (s *SQLiteStore) AggregateStats(windowDays int) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats

	if err := s.db.QueryRow("SELECT COUNT(*) FROM notes").Scan(&stats.Notes); err != nil {
		return Stats{}, fmt.Errorf("failed to count notes: %w", err)
	}

	if err := s.db.QueryRow("SELECT COUNT(DISTINCT folder_path) FROM notes").Scan(&stats.Folders); err != nil {
		return Stats{}, fmt.Errorf("failed to count folders: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -windowDays).Format(time.RFC3339)
	query := `
		SELECT COUNT(*), COALESCE(AVG(confidence), 0)
		FROM sort_history
		WHERE timestamp >= ? AND undone_at IS NULL
	`
	if err := s.db.QueryRow(query, cutoff).Scan(&stats.Sorts, &stats.MeanConfidence); err != nil {
		return Stats{}, fmt.Errorf("failed to aggregate sort history: %w", err)
	}

	return stats, nil
}

// FolderCounts returns per-folder note counts, highest count first.
func (s *SQLiteStore) FolderCounts() ([]FolderStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT folder_path, note_count, last_updated
		FROM folder_stats
		ORDER BY note_count DESC, folder_path ASC
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query folder stats: %w", err)
	}
	defer rows.Close()

	var out []FolderStats
	for rows.Next() {
		var fs FolderStats
		var updatedStr string
		if err := rows.Scan(&fs.FolderPath, &fs.NoteCount, &updatedStr); err != nil {
			return nil, fmt.Errorf("failed to scan folder stats: %w", err)
		}
		if fs.LastUpdated, err = time.Parse(time.RFC3339, updatedStr); err != nil {
			return nil, fmt.Errorf("failed to parse folder stats timestamp: %w", err)
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}
