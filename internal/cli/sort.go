package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"notesort/internal/classify"
)

// NewSortCmd creates the 'sort' command for classifying inbox notes.
func NewSortCmd() *cobra.Command {
	var configPath string
	var dryRun bool
	var interactive bool
	var force bool

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Classify and file every note in the inbox",
		Long: `Classify each note in the inbox against the existing workspace and move
it into the best-matching folder. Suggestions below the confidence
threshold are skipped unless --force is set.`,
		Example: `  notesort sort
  notesort sort --dry-run
  notesort sort -i          # confirm every move
  notesort sort --force     # move even low-confidence suggestions`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, configPath, classify.Options{
				Interactive: interactive,
				DryRun:      dryRun,
				Force:       force,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report destinations without moving anything")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Confirm every move")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Move below-threshold suggestions in automatic mode")

	return cmd
}

func runSort(cmd *cobra.Command, configPath string, opts classify.Options) error {
	a, err := newApp(configPath, appOptions{interactive: opts.Interactive})
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if err := a.verifyProvider(ctx); err != nil {
		return err
	}
	if err := a.engine.RefreshSummary(ctx); err != nil {
		return err
	}

	outcomes, tally, err := a.engine.SortInbox(ctx, opts)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		printOutcome(o)
	}

	fmt.Printf("\nSorted: %d  Skipped: %d  Failed: %d\n", tally.Sorted, tally.Skipped, tally.Failed)
	return nil
}

func printOutcome(o classify.Outcome) {
	name := filepath.Base(o.Path)
	switch o.Status {
	case classify.StatusSorted:
		fmt.Printf("  ✓ %s → %s (%.0f%%)\n", name, o.Suggestion.Folder, o.Suggestion.Confidence*100)
	case classify.StatusDryRun:
		fmt.Printf("  → %s would move to %s (%.0f%%)\n", name, o.Suggestion.Folder, o.Suggestion.Confidence*100)
	case classify.StatusTooShort:
		fmt.Printf("  - %s skipped (too short)\n", name)
	case classify.StatusCancelled:
		fmt.Printf("  - %s skipped (cancelled)\n", name)
	case classify.StatusBelowThreshold:
		fmt.Printf("  ✗ %s below threshold: %s (%.0f%%)\n", name, o.Suggestion.Folder, o.Suggestion.Confidence*100)
	case classify.StatusNoSuggestion:
		fmt.Printf("  ✗ %s no suggestion\n", name)
	default:
		if o.Err != nil {
			fmt.Printf("  ✗ %s failed: %v\n", name, o.Err)
		} else {
			fmt.Printf("  ✗ %s failed (%s)\n", name, o.Status)
		}
	}
}
