package classify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"notesort/internal/provider"
)

// Request is the structured input handed to suggestion strategies.
type Request struct {
	// Filename is the base name of the note being classified.
	Filename string

	// Excerpt is a bounded prefix of the note content.
	Excerpt string

	// FolderSummary is the workspace folder digest, verbatim.
	FolderSummary string

	// Neighbors are the nearest indexed notes, best first.
	Neighbors []NeighborMatch
}

// Strategy produces a destination suggestion for a request. Strategies are
// tried in priority order; a returned error moves the engine on to the next
// strategy, while a returned suggestion (even an empty one) is final.
type Strategy interface {
	// Name identifies the strategy in outcomes and rationales.
	Name() string

	// Suggest returns a suggestion or an error.
	Suggest(ctx context.Context, req *Request) (SortSuggestion, error)
}

// maxPromptNeighbors caps how many neighbor folders appear in the prompt.
const maxPromptNeighbors = 3

// ProviderStrategy asks the external suggestion provider and parses its
// three-labeled-line reply.
type ProviderStrategy struct {
	Provider provider.Suggester
}

// Name identifies the strategy.
func (s *ProviderStrategy) Name() string { return "provider" }

// Suggest builds the structured prompt, invokes the provider, and parses
// the reply. A request failure is returned as an error so the engine falls
// back; a malformed reply is an empty suggestion, not an error.
func (s *ProviderStrategy) Suggest(ctx context.Context, req *Request) (SortSuggestion, error) {
	reply, err := s.Provider.Suggest(ctx, BuildPrompt(req))
	if err != nil {
		return SortSuggestion{}, fmt.Errorf("suggestion request failed: %w", err)
	}
	return ParseSuggestion(reply), nil
}

// BuildPrompt assembles the classification request text: folder summary,
// neighbor folders with similarity percentages, filename, and a bounded
// content excerpt.
func BuildPrompt(req *Request) string {
	var b strings.Builder

	b.WriteString("You are filing a note into an existing folder structure.\n\n")
	b.WriteString("Current folders (by note count):\n")
	if req.FolderSummary == "" {
		b.WriteString("(none yet)\n")
	} else {
		b.WriteString(req.FolderSummary)
	}

	if len(req.Neighbors) > 0 {
		b.WriteString("\nMost similar existing notes:\n")
		for i, n := range req.Neighbors {
			if i >= maxPromptNeighbors {
				break
			}
			fmt.Fprintf(&b, "- %s (%.0f%% similar)\n", n.Folder, n.Similarity*100)
		}
	}

	fmt.Fprintf(&b, "\nFilename: %s\n\nNote content:\n%s\n", req.Filename, req.Excerpt)
	b.WriteString("\nReply with exactly three lines:\n")
	b.WriteString("Folder: <destination folder path>\n")
	b.WriteString("Confidence: <0-100>\n")
	b.WriteString("Rationale: <one sentence>\n")
	return b.String()
}

// ParseSuggestion parses the provider reply. It expects three labeled lines
// (Folder, Confidence, Rationale) and is lenient about ordering, casing,
// and whitespace. A reply without a folder line yields an empty suggestion
// with confidence 0, never an error.
func ParseSuggestion(reply string) SortSuggestion {
	var sug SortSuggestion
	var hasFolder bool

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*#> "))
		if line == "" {
			continue
		}

		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(label)) {
		case "folder":
			folder := strings.Trim(value, "`\"' ")
			folder = strings.Trim(folder, "/")
			if folder != "" {
				sug.Folder = folder
				hasFolder = true
			}
		case "confidence":
			sug.Confidence = parseConfidence(value)
		case "rationale":
			sug.Rationale = value
		}
	}

	if !hasFolder {
		return SortSuggestion{}
	}
	return sug
}

// parseConfidence converts a 0-100 reply value to [0,1]. Only a value with a
// decimal point at or below 1 (e.g. "0.85") is taken as an already-scaled
// fraction; a bare "1" means 1 out of 100. Unparseable values yield 0.
func parseConfidence(value string) float64 {
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	if v > 1 || !strings.Contains(value, ".") {
		v /= 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// fallbackConfidence is the fixed confidence assigned to plurality fallback
// suggestions.
const fallbackConfidence = 0.5

// PluralityStrategy picks the most common folder among the neighbors. It is
// the fallback when the provider request itself fails.
type PluralityStrategy struct{}

// Name identifies the strategy.
func (s *PluralityStrategy) Name() string { return "neighbor-plurality" }

// Suggest returns the plurality folder among the neighbors at confidence
// 0.5, ties broken by first-encountered folder in the neighbor ranking.
// With no neighbors it returns an empty suggestion.
func (s *PluralityStrategy) Suggest(ctx context.Context, req *Request) (SortSuggestion, error) {
	if len(req.Neighbors) == 0 {
		return SortSuggestion{}, nil
	}

	counts := make(map[string]int)
	for _, n := range req.Neighbors {
		counts[n.Folder]++
	}

	// First folder in ranking order that reaches the max count wins ties.
	var best string
	for _, n := range req.Neighbors {
		if best == "" || counts[n.Folder] > counts[best] {
			best = n.Folder
		}
	}

	return SortSuggestion{
		Folder:     best,
		Confidence: fallbackConfidence,
		Rationale:  fmt.Sprintf("fallback: plurality folder among %d nearest neighbors", len(req.Neighbors)),
	}, nil
}
