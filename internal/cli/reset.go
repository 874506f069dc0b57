package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewResetCmd creates the 'reset' command for wiping the index and database.
func NewResetCmd() *cobra.Command {
	var configPath string
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the vector index and all stored metadata",
		Long: `Remove the vector snapshot and clear the database: note records, sort
history, folder stats, and search history. Notes on disk are not touched.
This cannot be undone.`,
		Example: `  notesort reset
  notesort reset --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(configPath, yes)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runReset(configPath string, yes bool) error {
	a, err := newApp(configPath, appOptions{skipSnapshot: true})
	if err != nil {
		return err
	}
	defer a.close()

	if !yes {
		fmt.Print("This deletes the index and all sort history. Type 'yes' to continue: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	if err := os.Remove(a.cfg.SnapshotPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove vector snapshot: %w", err)
	}

	fmt.Println("✓ Index and metadata cleared.")
	return nil
}
