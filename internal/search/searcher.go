/*
Package search provides hybrid lookup over the filed note corpus.

It keeps an in-memory Bleve index of note text for keyword (BM25) search
and fuses those scores with cosine-similarity scores from the vector index.
Search is read-only: it never participates in classification decisions.
*/
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"notesort/internal/provider"
	"notesort/internal/vector"
)

// Result is one note search hit.
type Result struct {
	// Path is the note's canonical file path.
	Path string

	// Folder is the note's folder relative to the workspace root.
	Folder string

	// Score is the (possibly fused) relevance score.
	Score float64
}

// Searcher indexes filed notes for keyword search and fuses keyword and
// semantic scores.
type Searcher struct {
	lexical  bleve.Index
	vectors  *vector.Index
	embedder provider.Embedder
	mu       sync.RWMutex
}

// NewSearcher creates a searcher with an in-memory Bleve index over the
// note corpus, backed by the given vector index for semantic scores.
func NewSearcher(vectors *vector.Index, embedder provider.Embedder) (*Searcher, error) {
	lexical, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Searcher{
		lexical:  lexical,
		vectors:  vectors,
		embedder: embedder,
	}, nil
}

// buildIndexMapping creates the Bleve index mapping for note documents.
func buildIndexMapping() mapping.IndexMapping {
	noteMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	noteMapping.AddFieldMappingsAt("content", contentFieldMapping)

	pathFieldMapping := bleve.NewTextFieldMapping()
	noteMapping.AddFieldMappingsAt("path", pathFieldMapping)

	// Folder: stored for retrieval, searchable for scoping.
	folderFieldMapping := bleve.NewTextFieldMapping()
	noteMapping.AddFieldMappingsAt("folder", folderFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", noteMapping)
	return indexMapping
}

// IndexNote adds or replaces a note in the lexical index, keyed by path.
func (s *Searcher) IndexNote(path, folder, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := map[string]interface{}{
		"path":    path,
		"folder":  folder,
		"content": content,
	}
	if err := s.lexical.Index(path, doc); err != nil {
		return fmt.Errorf("failed to index note %s: %w", path, err)
	}
	return nil
}

// RemoveNote deletes a note from the lexical index.
func (s *Searcher) RemoveNote(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lexical.Delete(path); err != nil {
		return fmt.Errorf("failed to remove note %s: %w", path, err)
	}
	return nil
}

// Count returns the number of indexed notes.
func (s *Searcher) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, err := s.lexical.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return count, nil
}

// Close closes the lexical index and releases resources.
func (s *Searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lexical != nil {
		return s.lexical.Close()
	}
	return nil
}

// SearchLexical performs BM25 keyword search over the note corpus.
func (s *Searcher) SearchLexical(query string, limit int) ([]Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	searchRequest := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)
	searchRequest.Fields = []string{"path", "folder"}

	results, err := s.lexical.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	out := make([]Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		folder, _ := hit.Fields["folder"].(string)
		out = append(out, Result{
			Path:   hit.ID,
			Folder: folder,
			Score:  hit.Score,
		})
	}
	return out, nil
}

// SearchSemantic performs similarity search via the vector index.
func (s *Searcher) SearchSemantic(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.vectors.Query(embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		out = append(out, Result{
			Path:   m.Path,
			Folder: m.Folder,
			Score:  m.Similarity,
		})
	}
	return out, nil
}
