package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"notesort/internal/classify"
)

// NewUndoCmd creates the 'undo' command for reversing the last sort.
func NewUndoCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Move the most recently sorted note back where it came from",
		Long: `Reverse the most recent sort by moving the note back to its original
location. Repeating the command steps further back through the history.`,
		Example: `  notesort undo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")

	return cmd
}

func runUndo(configPath string) error {
	a, err := newApp(configPath, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	entry, err := a.engine.UndoLastSort()
	if err != nil {
		if errors.Is(err, classify.ErrNothingToUndo) {
			fmt.Println("Nothing to undo.")
			return nil
		}
		return err
	}

	fmt.Printf("✓ Moved %s back to %s\n", entry.ToPath, entry.FromPath)
	return nil
}
