package classify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"notesort/internal/store"
	"notesort/internal/vector"
	"notesort/internal/workspace"
)

// fakeEmbedder maps content keywords to fixed unit vectors so similarity is
// predictable without a real model.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	switch {
	case strings.Contains(text, "meeting"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "health"):
		return []float32{0, 1, 0}, nil
	case strings.Contains(text, "idea"):
		return []float32{0, 0, 1}, nil
	}
	return []float32{0.5, 0.5, 0.5}, nil
}

func (fakeEmbedder) Dimension() int { return 3 }

// scriptedSuggester returns a fixed reply or a fixed request error.
type scriptedSuggester struct {
	reply string
	err   error
}

func (s scriptedSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type testEnv struct {
	engine *Engine
	root   string
	inbox  string
	meta   *store.SQLiteStore
	index  *vector.Index
}

func newTestEnv(t *testing.T, suggester scriptedSuggester, threshold float64, confirm Confirmer) *testEnv {
	t.Helper()

	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	if err := os.MkdirAll(inbox, 0755); err != nil {
		t.Fatalf("mkdir inbox failed: %v", err)
	}

	meta := store.New(filepath.Join(t.TempDir(), "meta.db"))
	if err := meta.Init(); err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	t.Cleanup(func() { meta.Close() })

	analyzer := &workspace.Analyzer{
		Root:             root,
		Inbox:            inbox,
		ExcludedFolders:  []string{".git"},
		Extensions:       []string{".md", ".txt"},
		MinContentLength: 10,
	}

	index := vector.New()
	engine := NewEngine(EngineConfig{
		Index:    index,
		Store:    meta,
		Embedder: fakeEmbedder{},
		Strategies: []Strategy{
			&ProviderStrategy{Provider: suggester},
			&PluralityStrategy{},
		},
		Analyzer:     analyzer,
		Confirm:      confirm,
		Threshold:    threshold,
		TopK:         5,
		SnapshotPath: filepath.Join(t.TempDir(), "vectors.json"),
	})

	return &testEnv{engine: engine, root: root, inbox: inbox, meta: meta, index: index}
}

// seedWorkspace writes filed notes and indexes the workspace.
func (env *testEnv) seedWorkspace(t *testing.T, notes map[string]string) {
	t.Helper()
	for rel, content := range notes {
		path := filepath.Join(env.root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	if _, err := env.engine.IndexWorkspace(context.Background()); err != nil {
		t.Fatalf("IndexWorkspace failed: %v", err)
	}
}

func (env *testEnv) addInboxNote(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(env.inbox, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write inbox note failed: %v", err)
	}
	return path
}

func TestClassifyFile_TooShort(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{}, 0.7, nil)
	path := env.addInboxNote(t, "stub.md", "  short  ")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusTooShort {
		t.Errorf("expected too-short, got %s", out.Status)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("too-short note must stay in the inbox")
	}
}

func TestClassifyFile_TooShortCountsRunes(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{}, 0.7, nil)
	// Five runes, ten bytes: still short by character count.
	path := env.addInboxNote(t, "accents.md", "ééééé")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusTooShort {
		t.Errorf("expected too-short, got %s", out.Status)
	}
}

func TestClassifyFile_ReadError(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{}, 0.7, nil)

	out := env.engine.ClassifyFile(context.Background(), filepath.Join(env.inbox, "missing.md"), Options{})
	if out.Status != StatusReadError {
		t.Errorf("expected read-error, got %s", out.Status)
	}
}

func TestClassifyFile_EndToEndAutoMove(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 85\nRationale: Very similar to filed meeting notes.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md":  "weekly meeting notes about standup",
		"personal/health/doctor.md": "health appointment summary notes",
	})

	path := env.addInboxNote(t, "retro.md", "another meeting retro discussion today")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusSorted {
		t.Fatalf("expected sorted, got %s (err: %v)", out.Status, out.Err)
	}
	if out.Strategy != "provider" {
		t.Errorf("expected provider strategy, got %q", out.Strategy)
	}

	dest := filepath.Join(env.root, "work", "meetings", "retro.md")
	if out.Destination != dest {
		t.Errorf("expected destination %s, got %s", dest, out.Destination)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("note not at destination: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("note still in inbox after move")
	}

	entry, err := env.meta.LastHistoryEntry()
	if err != nil {
		t.Fatalf("expected a history entry: %v", err)
	}
	if math.Abs(entry.Confidence-0.85) > 1e-9 {
		t.Errorf("expected history confidence 0.85, got %f", entry.Confidence)
	}
	if entry.ToPath != dest {
		t.Errorf("expected history to-path %s, got %s", dest, entry.ToPath)
	}

	// The moved note is re-indexed under its new path.
	if _, ok := env.index.Get(dest); !ok {
		t.Error("moved note missing from vector index under new path")
	}
	if _, err := env.meta.GetNote(dest); err != nil {
		t.Errorf("moved note missing from metadata store: %v", err)
	}
}

func TestClassifyFile_BelowThresholdAutomatic(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 65\nRationale: weak match.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})
	path := env.addInboxNote(t, "vague.md", "some meeting adjacent content here")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusBelowThreshold {
		t.Errorf("expected below-threshold, got %s", out.Status)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("below-threshold note must stay in the inbox")
	}
}

func TestClassifyFile_BelowThresholdForced(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 65\nRationale: weak match.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})
	path := env.addInboxNote(t, "vague.md", "some meeting adjacent content here")

	out := env.engine.ClassifyFile(context.Background(), path, Options{Force: true})
	if out.Status != StatusSorted {
		t.Errorf("expected forced move, got %s (err: %v)", out.Status, out.Err)
	}
}

func TestClassifyFile_InteractiveRequiresConfirmation(t *testing.T) {
	asked := false
	decline := func(path string, s SortSuggestion) (bool, error) {
		asked = true
		return false, nil
	}

	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 65\nRationale: weak match.",
	}, 0.7, decline)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})
	path := env.addInboxNote(t, "vague.md", "some meeting adjacent content here")

	out := env.engine.ClassifyFile(context.Background(), path, Options{Interactive: true})
	if !asked {
		t.Error("expected explicit confirmation to be requested")
	}
	if out.Status != StatusCancelled {
		t.Errorf("expected cancelled on decline, got %s", out.Status)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("declined note must stay in the inbox")
	}
}

func TestClassifyFile_ProviderFailureFallsBackToPlurality(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{err: errors.New("connection refused")}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/a.md": "meeting notes one, long enough",
		"work/meetings/b.md": "meeting notes two, long enough",
		"ideas/c.md":         "an idea about something, long enough",
	})
	path := env.addInboxNote(t, "new.md", "fresh meeting notes awaiting a folder")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Strategy != "neighbor-plurality" {
		t.Errorf("expected fallback strategy, got %q", out.Strategy)
	}
	if out.Suggestion.Folder != "work/meetings" {
		t.Errorf("expected plurality folder work/meetings, got %q", out.Suggestion.Folder)
	}
	if out.Suggestion.Confidence != 0.5 {
		t.Errorf("expected fallback confidence exactly 0.5, got %f", out.Suggestion.Confidence)
	}

	// 0.5 is below the 0.7 threshold: the note stays put unless forced.
	if out.Status != StatusBelowThreshold {
		t.Errorf("expected below-threshold, got %s", out.Status)
	}
}

func TestClassifyFile_ProviderFailureNoNeighbors(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{err: errors.New("connection refused")}, 0.7, nil)
	path := env.addInboxNote(t, "lonely.md", "an orphan note with nothing indexed")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusNoSuggestion {
		t.Errorf("expected no-suggestion, got %s", out.Status)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("note must stay in the inbox")
	}
}

func TestClassifyFile_MalformedReplyIsNoSuggestion(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{reply: "I cannot classify this."}, 0.7, nil)
	path := env.addInboxNote(t, "odd.md", "content the provider refuses to place")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusNoSuggestion {
		t.Errorf("expected no-suggestion for malformed reply, got %s", out.Status)
	}
}

func TestClassifyFile_DryRun(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 90\nRationale: clear match.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})
	path := env.addInboxNote(t, "retro.md", "meeting retro notes for dry run")

	before, _ := env.meta.AggregateStats(7)

	out := env.engine.ClassifyFile(context.Background(), path, Options{DryRun: true})
	if out.Status != StatusDryRun {
		t.Fatalf("expected dry-run, got %s", out.Status)
	}
	if out.Destination == "" {
		t.Error("dry run must report the would-be destination")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("dry run must not move the note")
	}

	after, _ := env.meta.AggregateStats(7)
	if after.Sorts != before.Sorts {
		t.Error("dry run must not write history")
	}
}

func TestClassifyFile_CollisionSuffix(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 90\nRationale: match.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})

	first := env.addInboxNote(t, "note.md", "first meeting note, long enough text")
	out := env.engine.ClassifyFile(context.Background(), first, Options{})
	if out.Status != StatusSorted {
		t.Fatalf("first move failed: %s (err: %v)", out.Status, out.Err)
	}

	second := env.addInboxNote(t, "note.md", "second meeting note, long enough text")
	out = env.engine.ClassifyFile(context.Background(), second, Options{})
	if out.Status != StatusSorted {
		t.Fatalf("second move failed: %s (err: %v)", out.Status, out.Err)
	}

	destDir := filepath.Join(env.root, "work", "meetings")
	if _, err := os.Stat(filepath.Join(destDir, "note.md")); err != nil {
		t.Error("expected note.md at destination")
	}
	if _, err := os.Stat(filepath.Join(destDir, "note_1.md")); err != nil {
		t.Error("expected note_1.md at destination")
	}
}

func TestUndoLastSort_EmptyHistory(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{}, 0.7, nil)

	_, err := env.engine.UndoLastSort()
	if !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestUndoLastSort_RestoresFile(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 90\nRationale: match.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})
	path := env.addInboxNote(t, "retro.md", "meeting retro notes to undo later")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusSorted {
		t.Fatalf("move failed: %s", out.Status)
	}

	entry, err := env.engine.UndoLastSort()
	if err != nil {
		t.Fatalf("UndoLastSort failed: %v", err)
	}
	if entry.FromPath != path {
		t.Errorf("expected undo back to %s, got %s", path, entry.FromPath)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("note not restored to inbox")
	}
	if _, err := os.Stat(out.Destination); !os.IsNotExist(err) {
		t.Error("note still at destination after undo")
	}

	// The popped entry must not be undoable twice.
	if _, err := env.engine.UndoLastSort(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo after popping the only entry, got %v", err)
	}
}

func TestUndoLastSort_MissingDestinationFile(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 90\nRationale: match.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})
	path := env.addInboxNote(t, "retro.md", "meeting retro notes that will vanish")

	out := env.engine.ClassifyFile(context.Background(), path, Options{})
	if out.Status != StatusSorted {
		t.Fatalf("move failed: %s", out.Status)
	}
	if err := os.Remove(out.Destination); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if _, err := env.engine.UndoLastSort(); err == nil {
		t.Error("expected failure when sorted file is gone")
	}

	// The entry stays undoable; no state was mutated.
	if _, err := env.meta.LastHistoryEntry(); err != nil {
		t.Errorf("history entry should remain, got %v", err)
	}
}

func TestSortInbox_Tally(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{
		reply: "Folder: work/meetings\nConfidence: 90\nRationale: match.",
	}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/standup.md": "weekly meeting notes about standup",
	})

	env.addInboxNote(t, "good.md", "solid meeting notes ready for filing")
	env.addInboxNote(t, "short.md", "tiny")
	env.addInboxNote(t, "skip.png", "not an eligible note file at all")

	// Subdirectories of the inbox are not batch candidates.
	if err := os.MkdirAll(filepath.Join(env.inbox, "nested"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	outcomes, tally, err := env.engine.SortInbox(context.Background(), Options{})
	if err != nil {
		t.Fatalf("SortInbox failed: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if tally.Sorted != 1 || tally.Skipped != 1 || tally.Failed != 0 {
		t.Errorf("unexpected tally: %+v", tally)
	}
}

func TestCheckConsistency(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/a.md": "meeting notes long enough to index",
	})

	d, err := env.engine.CheckConsistency()
	if err != nil {
		t.Fatalf("CheckConsistency failed: %v", err)
	}
	if !d.Empty() {
		t.Errorf("expected consistent stores after indexing, got %s", d)
	}

	// Simulate a crash between the two bookkeeping writes.
	env.index.Remove(filepath.Join(env.root, "work", "a.md"))

	d, err = env.engine.CheckConsistency()
	if err != nil {
		t.Fatalf("CheckConsistency failed: %v", err)
	}
	if len(d.MissingInIndex) != 1 {
		t.Errorf("expected 1 note missing from index, got %+v", d)
	}
}

func TestIndexWorkspace_BuildsSummary(t *testing.T) {
	env := newTestEnv(t, scriptedSuggester{}, 0.7, nil)

	env.seedWorkspace(t, map[string]string{
		"work/meetings/a.md": "meeting notes number one long enough",
		"work/meetings/b.md": "meeting notes number two long enough",
		"ideas/c.md":         "an idea note that is long enough",
	})

	if !strings.Contains(env.engine.summary, "work/meetings: 2") {
		t.Errorf("summary missing folder counts: %q", env.engine.summary)
	}

	stats, err := env.meta.AggregateStats(7)
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if stats.Notes != 3 {
		t.Errorf("expected 3 indexed notes, got %d", stats.Notes)
	}
	if env.index.Len() != 3 {
		t.Errorf("expected 3 vector entries, got %d", env.index.Len())
	}
}

func TestResolveCollision_ScansSequentially(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"note.md", "note_1.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	got, err := resolveCollision(dir, "note.md")
	if err != nil {
		t.Fatalf("resolveCollision failed: %v", err)
	}
	if filepath.Base(got) != "note_2.md" {
		t.Errorf("expected note_2.md, got %s", filepath.Base(got))
	}
}

func ExampleTally() {
	var tally Tally
	tally.record(Outcome{Status: StatusSorted})
	tally.record(Outcome{Status: StatusTooShort})
	tally.record(Outcome{Status: StatusMoveFailed})
	fmt.Printf("sorted=%d skipped=%d failed=%d", tally.Sorted, tally.Skipped, tally.Failed)
	// Output: sorted=1 skipped=1 failed=1
}
