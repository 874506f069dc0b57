/*
Package cli implements the notesort commands.

Each command is built by a NewXxxCmd constructor and wired into the root
command by cmd/notesort. Commands that classify or search share the same
component wiring, assembled by newApp from the loaded configuration.
*/
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"notesort/internal/classify"
	"notesort/internal/config"
	"notesort/internal/provider"
	"notesort/internal/store"
	"notesort/internal/vector"
	"notesort/internal/workspace"
)

// app bundles the wired components shared by the commands.
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	index    *vector.Index
	client   *provider.Client
	embedder provider.Embedder
	analyzer *workspace.Analyzer
	engine   *classify.Engine
}

// appOptions tunes the wiring per command.
type appOptions struct {
	// interactive installs a stdin confirmer on the engine.
	interactive bool

	// skipSnapshot starts from an empty vector index instead of
	// restoring the persisted snapshot.
	skipSnapshot bool
}

// newApp loads config and wires store, vector index, provider, and engine.
// Call close when done.
func newApp(configPath string, opts appOptions) (*app, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.DatabasePath())
	if err := st.Init(); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	index := vector.New()
	if !opts.skipSnapshot {
		if err := index.Restore(cfg.SnapshotPath()); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to restore vector snapshot: %w", err)
		}
	}

	client := provider.NewClient(
		cfg.Provider.BaseURL,
		cfg.Provider.EffectiveAPIKey(),
		cfg.Provider.ChatModel,
		cfg.Provider.EmbedModel,
		cfg.Provider.Dimension,
	)
	embedder := provider.NewCachedEmbedder(client, cfg.EmbedCacheSize)

	analyzer := &workspace.Analyzer{
		Root:             cfg.Workspace,
		Inbox:            cfg.InboxPath(),
		ExcludedFolders:  cfg.ExcludedFolders,
		Extensions:       cfg.Extensions,
		MinContentLength: cfg.MinContentLength,
	}

	var confirm classify.Confirmer
	if opts.interactive {
		confirm = stdinConfirmer
	}

	engine := classify.NewEngine(classify.EngineConfig{
		Index:    index,
		Store:    st,
		Embedder: embedder,
		Strategies: []classify.Strategy{
			&classify.ProviderStrategy{Provider: client},
			&classify.PluralityStrategy{},
		},
		Analyzer:     analyzer,
		Confirm:      confirm,
		Threshold:    cfg.ConfidenceThreshold,
		TopK:         cfg.TopK,
		SnapshotPath: cfg.SnapshotPath(),
	})

	return &app{
		cfg:      cfg,
		store:    st,
		index:    index,
		client:   client,
		embedder: embedder,
		analyzer: analyzer,
		engine:   engine,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
	}
}

// verifyProvider checks the embedding endpoint before any classification.
func (a *app) verifyProvider(ctx context.Context) error {
	if err := a.client.Verify(ctx); err != nil {
		return fmt.Errorf("provider check failed: %w", err)
	}
	return nil
}

// stdinConfirmer prompts for an explicit yes/no on the terminal.
func stdinConfirmer(path string, suggestion classify.SortSuggestion) (bool, error) {
	fmt.Printf("\nMove %s → %s (confidence %.0f%%)?\n", path, suggestion.Folder, suggestion.Confidence*100)
	if suggestion.Rationale != "" {
		fmt.Printf("  %s\n", suggestion.Rationale)
	}
	fmt.Print("Proceed? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
