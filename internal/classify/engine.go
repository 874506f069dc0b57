package classify

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"notesort/internal/provider"
	"notesort/internal/store"
	"notesort/internal/vector"
	"notesort/internal/workspace"
)

const (
	// defaultTopK is the neighbor count when none is configured.
	defaultTopK = 5

	// previewLength bounds the content preview stored per note.
	previewLength = 200

	// excerptLength bounds the content excerpt sent to the provider.
	excerptLength = 1500
)

// Engine orchestrates note classification: read, validate, neighbor search,
// suggestion, confidence policy, move, and bookkeeping.
type Engine struct {
	index      *vector.Index
	meta       store.Store
	embedder   provider.Embedder
	strategies []Strategy
	analyzer   *workspace.Analyzer
	confirm    Confirmer

	threshold    float64
	topK         int
	snapshotPath string
	root         string

	// summary is the folder-structure digest supplied to strategies. Set
	// by RefreshSummary / IndexWorkspace before classification starts;
	// classification itself is single-worker (see internal/watch).
	summary string
}

// EngineConfig collects the engine's collaborators and policy knobs.
type EngineConfig struct {
	Index        *vector.Index
	Store        store.Store
	Embedder     provider.Embedder
	Strategies   []Strategy
	Analyzer     *workspace.Analyzer
	Confirm      Confirmer
	Threshold    float64
	TopK         int
	SnapshotPath string
}

// NewEngine creates a classification engine.
func NewEngine(cfg EngineConfig) *Engine {
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Engine{
		index:        cfg.Index,
		meta:         cfg.Store,
		embedder:     cfg.Embedder,
		strategies:   cfg.Strategies,
		analyzer:     cfg.Analyzer,
		confirm:      cfg.Confirm,
		threshold:    cfg.Threshold,
		topK:         topK,
		snapshotPath: cfg.SnapshotPath,
		root:         cfg.Analyzer.Root,
	}
}

// RefreshSummary rescans the workspace folder structure used as
// classification context.
func (e *Engine) RefreshSummary(ctx context.Context) error {
	analysis, err := e.analyzer.Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to analyze workspace: %w", err)
	}
	e.summary = analysis.FolderSummary()
	return nil
}

// ClassifyFile runs the full classification state machine for one note.
func (e *Engine) ClassifyFile(ctx context.Context, path string, opts Options) Outcome {
	out := Outcome{Path: path}

	content, err := workspace.ReadText(path)
	if err != nil {
		out.Status = StatusReadError
		out.Err = err
		return out
	}

	if workspace.ContentLength(content) < e.analyzer.MinContentLength {
		out.Status = StatusTooShort
		return out
	}

	embedding, err := e.embedder.Embed(ctx, content)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("failed to embed note: %w", err)
		return out
	}

	matches, err := e.index.Query(embedding, e.topK)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Errorf("neighbor search failed: %w", err)
		return out
	}

	neighbors := make([]NeighborMatch, 0, len(matches))
	for _, m := range matches {
		neighbors = append(neighbors, NeighborMatch{
			Path:       m.Path,
			Folder:     m.Folder,
			Similarity: m.Similarity,
		})
	}

	req := &Request{
		Filename:      filepath.Base(path),
		Excerpt:       truncate(content, excerptLength),
		FolderSummary: e.summary,
		Neighbors:     neighbors,
	}

	suggestion, strategy := e.runStrategies(ctx, req)
	out.Suggestion = suggestion
	out.Strategy = strategy

	if suggestion.Folder == "" {
		out.Status = StatusNoSuggestion
		return out
	}

	if opts.Interactive && !opts.DryRun && e.confirm != nil {
		ok, err := e.confirm(path, suggestion)
		if err != nil {
			out.Status = StatusFailed
			out.Err = fmt.Errorf("confirmation failed: %w", err)
			return out
		}
		if !ok {
			out.Status = StatusCancelled
			return out
		}
	} else if suggestion.Confidence < e.threshold && !opts.Force {
		out.Status = StatusBelowThreshold
		return out
	}

	destDir := filepath.Join(e.root, filepath.FromSlash(suggestion.Folder))
	destPath, err := resolveCollision(destDir, filepath.Base(path))
	if err != nil {
		out.Status = StatusMoveFailed
		out.Err = err
		return out
	}
	out.Destination = destPath

	if opts.DryRun {
		out.Status = StatusDryRun
		return out
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		out.Status = StatusMoveFailed
		out.Err = fmt.Errorf("failed to create destination folder: %w", err)
		return out
	}
	if err := os.Rename(path, destPath); err != nil {
		out.Status = StatusMoveFailed
		out.Err = fmt.Errorf("failed to move note: %w", err)
		return out
	}

	e.recordMove(ctx, path, destPath, suggestion, content)

	out.Status = StatusSorted
	return out
}

// runStrategies tries each suggestion strategy in priority order. A strategy
// error falls through to the next strategy; a returned suggestion is final.
func (e *Engine) runStrategies(ctx context.Context, req *Request) (SortSuggestion, string) {
	for _, s := range e.strategies {
		suggestion, err := s.Suggest(ctx, req)
		if err != nil {
			log.Printf("Warning: %s strategy failed: %v", s.Name(), err)
			continue
		}
		return suggestion, s.Name()
	}
	return SortSuggestion{}, ""
}

// recordMove performs post-move bookkeeping: history entry, note record,
// and a fresh vector entry keyed by the note's new path. Bookkeeping
// failures after a successful move are logged, not fatal; the stores
// tolerate divergence and can be rebuilt from the workspace.
func (e *Engine) recordMove(ctx context.Context, fromPath, destPath string, suggestion SortSuggestion, content string) {
	now := time.Now()

	if _, err := e.meta.AppendHistory(store.SortHistoryEntry{
		NoteID:     destPath,
		FromPath:   fromPath,
		ToPath:     destPath,
		Confidence: suggestion.Confidence,
		Timestamp:  now,
	}); err != nil {
		log.Printf("Warning: failed to record sort history: %v", err)
	}

	if err := e.meta.UpsertNote(store.NoteRecord{
		ID:             destPath,
		FilePath:       destPath,
		FolderPath:     suggestion.Folder,
		ContentPreview: truncate(content, previewLength),
		CreatedAt:      now,
		UpdatedAt:      now,
		FileSize:       int64(len(content)),
		WordCount:      len(strings.Fields(content)),
	}); err != nil {
		log.Printf("Warning: failed to upsert note record: %v", err)
	}

	// Re-embed at the new path so neighbor queries reflect the note's new
	// location instead of a stale pre-move id. The content is unchanged,
	// so the embedding cache makes this a lookup, not a second API call.
	embedding, err := e.embedder.Embed(ctx, content)
	if err != nil {
		log.Printf("Warning: failed to re-embed moved note: %v", err)
		return
	}
	if err := e.index.Add(destPath, embedding, vector.Metadata{
		Path:      destPath,
		Folder:    suggestion.Folder,
		CreatedAt: now,
	}); err != nil {
		log.Printf("Warning: failed to index moved note: %v", err)
		return
	}

	if e.snapshotPath != "" {
		if err := e.index.Persist(e.snapshotPath); err != nil {
			log.Printf("Warning: failed to persist vector snapshot: %v", err)
		}
	}
}

// resolveCollision returns a destination path in dir for base that does not
// collide with an existing file, appending _1, _2, ... to the stem until an
// unused name is found.
func resolveCollision(dir, base string) (string, error) {
	candidate := filepath.Join(dir, base)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	} else if err != nil {
		return "", fmt.Errorf("failed to check destination: %w", err)
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("failed to check destination: %w", err)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
