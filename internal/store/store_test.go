/*
Package store tests for the metadata layer.
*/
package store

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s := New(filepath.Join(t.TempDir(), "test.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testNote(id, folder string) NoteRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return NoteRecord{
		ID:             id,
		FilePath:       id,
		FolderPath:     folder,
		ContentPreview: "preview text",
		CreatedAt:      now,
		UpdatedAt:      now,
		FileSize:       128,
		WordCount:      20,
	}
}

func TestInit_Idempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}
	if err := s.UpsertNote(testNote("a.md", "inbox")); err != nil {
		t.Errorf("UpsertNote after repeated Init failed: %v", err)
	}
}

func TestInit_RetryAfterFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	// A directory at the database path makes the open fail.
	if err := os.Mkdir(dbPath, 0755); err != nil {
		t.Fatal(err)
	}

	s := New(dbPath)
	if err := s.Init(); err == nil {
		t.Fatal("expected Init to fail with a directory at the db path")
	}

	if err := os.Remove(dbPath); err != nil {
		t.Fatal(err)
	}
	if err := s.Init(); err != nil {
		t.Fatalf("retried Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.UpsertNote(testNote("a.md", "inbox")); err != nil {
		t.Errorf("UpsertNote after retried Init failed: %v", err)
	}
}

func TestUpsertNote_InsertAndGet(t *testing.T) {
	s := newTestStore(t)

	note := testNote("work/meetings/standup.md", "work/meetings")
	if err := s.UpsertNote(note); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	got, err := s.GetNote(note.ID)
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.FolderPath != "work/meetings" {
		t.Errorf("expected folder work/meetings, got %q", got.FolderPath)
	}
	if got.WordCount != 20 {
		t.Errorf("expected word count 20, got %d", got.WordCount)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetNote("missing.md")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertNote_ReplaceById(t *testing.T) {
	s := newTestStore(t)

	note := testNote("a.md", "work")
	if err := s.UpsertNote(note); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	note.FolderPath = "personal"
	note.WordCount = 99
	if err := s.UpsertNote(note); err != nil {
		t.Fatalf("second UpsertNote failed: %v", err)
	}

	got, err := s.GetNote("a.md")
	if err != nil {
		t.Fatalf("GetNote failed: %v", err)
	}
	if got.FolderPath != "personal" || got.WordCount != 99 {
		t.Errorf("expected replaced record, got %+v", got)
	}

	ids, err := s.ListNoteIDs()
	if err != nil {
		t.Fatalf("ListNoteIDs failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected exactly 1 note after replace, got %d", len(ids))
	}
}

func TestUpsertNote_RecomputesVacatedFolder(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertNote(testNote("a.md", "work")); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := s.UpsertNote(testNote("b.md", "work")); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	// Move a.md to another folder; "work" must drop to 1.
	moved := testNote("a.md", "ideas")
	if err := s.UpsertNote(moved); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	counts, err := s.FolderCounts()
	if err != nil {
		t.Fatalf("FolderCounts failed: %v", err)
	}

	byFolder := make(map[string]int)
	for _, fs := range counts {
		byFolder[fs.FolderPath] = fs.NoteCount
	}
	if byFolder["work"] != 1 {
		t.Errorf("expected work count 1, got %d", byFolder["work"])
	}
	if byFolder["ideas"] != 1 {
		t.Errorf("expected ideas count 1, got %d", byFolder["ideas"])
	}
}

func TestFolderCounts_SortedDescending(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"w1.md", "w2.md", "w3.md"} {
		if err := s.UpsertNote(testNote(id, "work")); err != nil {
			t.Fatalf("UpsertNote failed: %v", err)
		}
	}
	if err := s.UpsertNote(testNote("p1.md", "personal")); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	counts, err := s.FolderCounts()
	if err != nil {
		t.Fatalf("FolderCounts failed: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 folders, got %d", len(counts))
	}
	if counts[0].FolderPath != "work" || counts[0].NoteCount != 3 {
		t.Errorf("expected work(3) first, got %s(%d)", counts[0].FolderPath, counts[0].NoteCount)
	}
}

func TestAppendHistory_MonotonicSequence(t *testing.T) {
	s := newTestStore(t)

	entry := SortHistoryEntry{
		NoteID:     "work/a.md",
		FromPath:   "inbox/a.md",
		ToPath:     "work/a.md",
		Confidence: 0.9,
		Timestamp:  time.Now(),
	}

	first, err := s.AppendHistory(entry)
	if err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	second, err := s.AppendHistory(entry)
	if err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	if second <= first {
		t.Errorf("expected increasing sequence, got %d then %d", first, second)
	}
}

func TestLastHistoryEntry_Empty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LastHistoryEntry()
	if !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}

func TestLastHistoryEntry_SkipsUndone(t *testing.T) {
	s := newTestStore(t)

	older := SortHistoryEntry{NoteID: "a.md", FromPath: "inbox/a.md", ToPath: "work/a.md", Confidence: 0.8, Timestamp: time.Now()}
	newer := SortHistoryEntry{NoteID: "b.md", FromPath: "inbox/b.md", ToPath: "ideas/b.md", Confidence: 0.9, Timestamp: time.Now()}

	if _, err := s.AppendHistory(older); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}
	newerSeq, err := s.AppendHistory(newer)
	if err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	got, err := s.LastHistoryEntry()
	if err != nil {
		t.Fatalf("LastHistoryEntry failed: %v", err)
	}
	if got.NoteID != "b.md" {
		t.Errorf("expected newest entry b.md, got %s", got.NoteID)
	}

	if err := s.MarkUndone(newerSeq); err != nil {
		t.Fatalf("MarkUndone failed: %v", err)
	}

	got, err = s.LastHistoryEntry()
	if err != nil {
		t.Fatalf("LastHistoryEntry after undo failed: %v", err)
	}
	if got.NoteID != "a.md" {
		t.Errorf("expected undo to pop to a.md, got %s", got.NoteID)
	}
}

func TestAggregateStats(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertNote(testNote("w.md", "work")); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := s.UpsertNote(testNote("p.md", "personal")); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}

	for _, conf := range []float64{0.6, 0.8} {
		entry := SortHistoryEntry{NoteID: "w.md", FromPath: "inbox/w.md", ToPath: "work/w.md", Confidence: conf, Timestamp: time.Now()}
		if _, err := s.AppendHistory(entry); err != nil {
			t.Fatalf("AppendHistory failed: %v", err)
		}
	}

	stats, err := s.AggregateStats(7)
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if stats.Notes != 2 || stats.Folders != 2 || stats.Sorts != 2 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if math.Abs(stats.MeanConfidence-0.7) > 1e-9 {
		t.Errorf("expected mean confidence 0.7, got %f", stats.MeanConfidence)
	}
}

func TestAggregateStats_EmptyWindowMeanIsZero(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.AggregateStats(7)
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if stats.MeanConfidence != 0 {
		t.Errorf("expected mean confidence 0 for empty window, got %f", stats.MeanConfidence)
	}
}

func TestRecordSearch(t *testing.T) {
	s := newTestStore(t)

	rec := SearchRecord{
		SearchID:     uuid.NewString(),
		Query:        "standup notes",
		Timestamp:    time.Now(),
		ResultsCount: 3,
	}
	if err := s.RecordSearch(rec); err != nil {
		t.Fatalf("RecordSearch failed: %v", err)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertNote(testNote("a.md", "work")); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	entry := SortHistoryEntry{NoteID: "a.md", FromPath: "inbox/a.md", ToPath: "work/a.md", Confidence: 1, Timestamp: time.Now()}
	if _, err := s.AppendHistory(entry); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	ids, err := s.ListNoteIDs()
	if err != nil {
		t.Fatalf("ListNoteIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no notes after Clear, got %d", len(ids))
	}
	if _, err := s.LastHistoryEntry(); !errors.Is(err, ErrNoHistory) {
		t.Errorf("expected empty history after Clear, got %v", err)
	}
}

func TestDeleteNote(t *testing.T) {
	s := newTestStore(t)

	if err := s.UpsertNote(testNote("a.md", "work")); err != nil {
		t.Fatalf("UpsertNote failed: %v", err)
	}
	if err := s.DeleteNote("a.md"); err != nil {
		t.Fatalf("DeleteNote failed: %v", err)
	}
	if _, err := s.GetNote("a.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	counts, err := s.FolderCounts()
	if err != nil {
		t.Fatalf("FolderCounts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected empty folder stats, got %v", counts)
	}

	// Deleting an absent note is a no-op.
	if err := s.DeleteNote("missing.md"); err != nil {
		t.Errorf("DeleteNote of missing note should be a no-op, got %v", err)
	}
}
