package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the 'stats' command.
func NewStatsCmd() *cobra.Command {
	var configPath string
	var windowDays int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show sorting statistics",
		Long: `Display note and folder totals plus sort counts and mean confidence
over the trailing window.`,
		Example: `  notesort stats
  notesort stats --window 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(configPath, windowDays)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")
	cmd.Flags().IntVarP(&windowDays, "window", "w", 30, "Trailing window in days")

	return cmd
}

func runStats(configPath string, windowDays int) error {
	a, err := newApp(configPath, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	stats, err := a.store.AggregateStats(windowDays)
	if err != nil {
		return err
	}

	fmt.Printf("Notes:   %d across %d folders\n", stats.Notes, stats.Folders)
	fmt.Printf("Sorts:   %d in the last %d days\n", stats.Sorts, windowDays)
	if stats.Sorts > 0 {
		fmt.Printf("Mean confidence: %.0f%%\n", stats.MeanConfidence*100)
	}

	folders, err := a.store.FolderCounts()
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		return nil
	}

	fmt.Println("\nFolders:")
	for _, f := range folders {
		fmt.Printf("  %-40s %d\n", f.FolderPath, f.NoteCount)
	}
	return nil
}
