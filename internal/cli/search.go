package cli

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"notesort/internal/search"
	"notesort/internal/store"
)

func newSearchRecord(query string, results int) store.SearchRecord {
	return store.SearchRecord{
		SearchID:     uuid.New().String(),
		Query:        query,
		Timestamp:    time.Now().UTC(),
		ResultsCount: results,
	}
}

// NewSearchCmd creates the 'search' command for finding filed notes.
func NewSearchCmd() *cobra.Command {
	var configPath string
	var limit int
	var keywordOnly bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search filed notes by keyword and meaning",
		Long: `Search sorted notes with a hybrid of keyword matching and semantic
similarity. With --keyword, only keyword matching is used and no provider
is contacted.`,
		Example: `  notesort search "quarterly planning"
  notesort search --keyword budget
  notesort search --limit 20 recipes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, configPath, strings.Join(args, " "), limit, keywordOnly)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of results")
	cmd.Flags().BoolVarP(&keywordOnly, "keyword", "k", false, "Keyword matching only, no semantic scoring")

	return cmd
}

func runSearch(cmd *cobra.Command, configPath, query string, limit int, keywordOnly bool) error {
	a, err := newApp(configPath, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()

	searcher, err := search.NewSearcher(a.index, a.embedder)
	if err != nil {
		return fmt.Errorf("failed to build search index: %w", err)
	}
	defer searcher.Close()

	// The keyword index is in-memory per invocation and is rebuilt from
	// the current workspace contents.
	analysis, err := a.analyzer.Scan(ctx)
	if err != nil {
		return err
	}
	for _, note := range analysis.Notes {
		if err := searcher.IndexNote(note.Path, note.Folder, note.Content); err != nil {
			log.Printf("Warning: failed to index %s for search: %v", note.Path, err)
		}
	}

	var results []search.Result
	if keywordOnly {
		results, err = searcher.SearchLexical(query, limit)
	} else {
		results, err = searcher.SearchHybrid(ctx, query, limit, search.DefaultFusionConfig)
	}
	if err != nil {
		return err
	}

	if err := a.store.RecordSearch(newSearchRecord(query, len(results))); err != nil {
		log.Printf("Warning: failed to record search: %v", err)
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. %-50s %s (%.2f)\n", i+1, r.Path, r.Folder, r.Score)
	}
	return nil
}
