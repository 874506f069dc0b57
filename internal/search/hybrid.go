package search

import (
	"context"
	"log"
	"sort"
)

// FusionConfig defines weights for hybrid score fusion.
type FusionConfig struct {
	SemanticWeight float64
	KeywordWeight  float64
}

// DefaultFusionConfig provides balanced fusion (70% semantic, 30% keyword).
var DefaultFusionConfig = FusionConfig{
	SemanticWeight: 0.7,
	KeywordWeight:  0.3,
}

// SearchHybrid combines BM25 and semantic scores. If the embedding side
// fails, the keyword results stand alone rather than failing the search.
func (s *Searcher) SearchHybrid(ctx context.Context, query string, limit int, config FusionConfig) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	lexicalResults, err := s.SearchLexical(query, limit*2)
	if err != nil {
		return nil, err
	}

	semanticResults, err := s.SearchSemantic(ctx, query, limit*2)
	if err != nil {
		log.Printf("Warning: semantic search unavailable, keyword only: %v", err)
		return capResults(lexicalResults, limit), nil
	}

	fused := fuseScores(normalizeScores(lexicalResults), semanticResults, config)

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].Path < fused[j].Path
	})

	return capResults(fused, limit), nil
}

// fuseScores combines keyword and semantic results using weighted fusion.
// Notes present on only one side keep that side's score.
func fuseScores(lexical, semantic []Result, config FusionConfig) []Result {
	semanticByPath := make(map[string]Result, len(semantic))
	for _, r := range semantic {
		semanticByPath[r.Path] = r
	}
	lexicalByPath := make(map[string]Result, len(lexical))
	for _, r := range lexical {
		lexicalByPath[r.Path] = r
	}

	seen := make(map[string]bool)
	fused := make([]Result, 0, len(lexical)+len(semantic))

	consider := func(r Result) {
		if seen[r.Path] {
			return
		}
		seen[r.Path] = true

		lex, hasLex := lexicalByPath[r.Path]
		sem, hasSem := semanticByPath[r.Path]

		out := r
		switch {
		case hasLex && hasSem:
			out = sem
			out.Score = config.SemanticWeight*sem.Score + config.KeywordWeight*lex.Score
		case hasSem:
			out = sem
		case hasLex:
			out = lex
		}
		fused = append(fused, out)
	}

	for _, r := range semantic {
		consider(r)
	}
	for _, r := range lexical {
		consider(r)
	}
	return fused
}

// normalizeScores normalizes scores to the [0,1] range so BM25 scores are
// comparable with cosine similarities.
func normalizeScores(results []Result) []Result {
	if len(results) == 0 {
		return results
	}

	minScore := results[0].Score
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	scoreRange := maxScore - minScore
	normalized := make([]Result, len(results))
	for i, r := range results {
		if scoreRange == 0 {
			r.Score = 1.0
		} else {
			r.Score = (r.Score - minScore) / scoreRange
		}
		normalized[i] = r
	}
	return normalized
}

func capResults(results []Result, limit int) []Result {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
