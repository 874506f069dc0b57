package classify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// SortInbox classifies every eligible file directly inside the inbox
// (non-recursive), sequentially in directory-listing order. Individual
// failures never abort the batch; the outcomes and tally report them.
func (e *Engine) SortInbox(ctx context.Context, opts Options) ([]Outcome, Tally, error) {
	entries, err := os.ReadDir(e.analyzer.Inbox)
	if err != nil {
		return nil, Tally{}, fmt.Errorf("failed to list inbox: %w", err)
	}

	var outcomes []Outcome
	var tally Tally

	for _, entry := range entries {
		if ctx.Err() != nil {
			return outcomes, tally, ctx.Err()
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(e.analyzer.Inbox, entry.Name())
		if !e.analyzer.Eligible(path) {
			continue
		}

		out := e.ClassifyFile(ctx, path, opts)
		outcomes = append(outcomes, out)
		tally.record(out)
	}

	return outcomes, tally, nil
}
