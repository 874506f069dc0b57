package classify

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParseSuggestion_WellFormed(t *testing.T) {
	reply := "Folder: work/meetings\nConfidence: 85\nRationale: Matches existing meeting notes."

	sug := ParseSuggestion(reply)
	if sug.Folder != "work/meetings" {
		t.Errorf("expected folder work/meetings, got %q", sug.Folder)
	}
	if math.Abs(sug.Confidence-0.85) > 1e-9 {
		t.Errorf("expected confidence 0.85, got %f", sug.Confidence)
	}
	if sug.Rationale == "" {
		t.Error("expected rationale to be captured")
	}
}

func TestParseSuggestion_LenientOrderingAndWhitespace(t *testing.T) {
	reply := "  rationale:   weekly planning material \n\n CONFIDENCE: 70.5 \n * Folder:  ideas/planning  "

	sug := ParseSuggestion(reply)
	if sug.Folder != "ideas/planning" {
		t.Errorf("expected folder ideas/planning, got %q", sug.Folder)
	}
	if math.Abs(sug.Confidence-0.705) > 1e-9 {
		t.Errorf("expected confidence 0.705, got %f", sug.Confidence)
	}
}

func TestParseSuggestion_MissingFolderIsNoSuggestion(t *testing.T) {
	reply := "Confidence: 95\nRationale: very sure about nothing"

	sug := ParseSuggestion(reply)
	if sug.Folder != "" {
		t.Errorf("expected empty folder, got %q", sug.Folder)
	}
	if sug.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", sug.Confidence)
	}
}

func TestParseSuggestion_GarbageReply(t *testing.T) {
	sug := ParseSuggestion("I am not able to help with that request.")
	if sug.Folder != "" || sug.Confidence != 0 {
		t.Errorf("expected empty suggestion, got %+v", sug)
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
	}{
		{"85", 0.85},
		{"100", 1.0},
		{"0", 0},
		{"1", 0.01},
		{"1.0", 1.0},
		{"70.5", 0.705},
		{"90%", 0.9},
		{"0.9", 0.9},
		{"150", 1.0},
		{"-5", 0},
		{"high", 0},
	}

	for _, tt := range tests {
		if got := parseConfidence(tt.in); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("parseConfidence(%q) = %f, expected %f", tt.in, got, tt.expected)
		}
	}
}

func TestPluralityStrategy_PicksMostCommonFolder(t *testing.T) {
	req := &Request{
		Neighbors: []NeighborMatch{
			{Folder: "work/meetings", Similarity: 0.9},
			{Folder: "work/meetings", Similarity: 0.8},
			{Folder: "ideas", Similarity: 0.7},
		},
	}

	sug, err := (&PluralityStrategy{}).Suggest(context.Background(), req)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sug.Folder != "work/meetings" {
		t.Errorf("expected work/meetings, got %q", sug.Folder)
	}
	if sug.Confidence != 0.5 {
		t.Errorf("expected confidence exactly 0.5, got %f", sug.Confidence)
	}
	if !strings.Contains(sug.Rationale, "fallback") {
		t.Errorf("expected fallback rationale, got %q", sug.Rationale)
	}
}

func TestPluralityStrategy_TieBrokenByRanking(t *testing.T) {
	req := &Request{
		Neighbors: []NeighborMatch{
			{Folder: "ideas", Similarity: 0.9},
			{Folder: "work", Similarity: 0.8},
			{Folder: "work", Similarity: 0.7},
			{Folder: "ideas", Similarity: 0.6},
		},
	}

	sug, err := (&PluralityStrategy{}).Suggest(context.Background(), req)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sug.Folder != "ideas" {
		t.Errorf("expected first-encountered folder ideas on tie, got %q", sug.Folder)
	}
}

func TestPluralityStrategy_NoNeighbors(t *testing.T) {
	sug, err := (&PluralityStrategy{}).Suggest(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sug.Folder != "" || sug.Confidence != 0 {
		t.Errorf("expected empty suggestion with no neighbors, got %+v", sug)
	}
}

// failingSuggester always fails the request itself.
type failingSuggester struct{}

func (failingSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("connection refused")
}

func TestProviderStrategy_RequestFailureIsError(t *testing.T) {
	s := &ProviderStrategy{Provider: failingSuggester{}}
	if _, err := s.Suggest(context.Background(), &Request{}); err == nil {
		t.Error("expected error so the engine can fall back")
	}
}

func TestBuildPrompt_IncludesContext(t *testing.T) {
	req := &Request{
		Filename:      "standup.md",
		Excerpt:       "weekly standup agenda",
		FolderSummary: "work/meetings: 4 notes\n",
		Neighbors: []NeighborMatch{
			{Folder: "work/meetings", Similarity: 0.87},
			{Folder: "work/meetings", Similarity: 0.81},
			{Folder: "ideas", Similarity: 0.6},
			{Folder: "personal", Similarity: 0.5},
		},
	}

	prompt := BuildPrompt(req)

	for _, want := range []string{"standup.md", "weekly standup agenda", "work/meetings: 4 notes", "87% similar", "Folder:", "Confidence:", "Rationale:"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// At most three neighbors appear.
	if strings.Contains(prompt, "personal") {
		t.Error("prompt should cap neighbors at three")
	}
}
