/*
Package main is the entry point for the notesort CLI.

notesort files plain-text notes from an inbox into the folders of an
existing workspace, using nearest-neighbor retrieval over note embeddings
plus a model-provider suggestion step.

Usage:
  notesort [command]

Available Commands:
  init        Create a starter configuration for a workspace
  analyze     Scan the workspace and index every sorted note
  sort        Classify and file every note in the inbox
  watch       Watch the inbox and classify new notes as they appear
  undo        Move the most recently sorted note back where it came from
  search      Search filed notes by keyword and meaning
  stats       Show sorting statistics
  reset       Delete the vector index and all stored metadata
  help        Help about any command

Examples:
  # Point notesort at a workspace and build the index
  notesort init ~/notes
  notesort analyze

  # File everything currently in the inbox
  notesort sort

  # Keep filing new notes as they arrive
  notesort watch
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"notesort/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "notesort",
		Short: "File inbox notes into your workspace automatically",
		Long: `notesort classifies plain-text notes from an inbox into the folders of an
existing workspace. Each note is embedded, compared against already-sorted
notes, and filed into the folder a model provider (or the neighbors
themselves) suggests. Every move is recorded and reversible with 'undo'.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	}

	rootCmd.AddCommand(cli.NewInitCmd())
	rootCmd.AddCommand(cli.NewAnalyzeCmd())
	rootCmd.AddCommand(cli.NewSortCmd())
	rootCmd.AddCommand(cli.NewWatchCmd())
	rootCmd.AddCommand(cli.NewUndoCmd())
	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewStatsCmd())
	rootCmd.AddCommand(cli.NewResetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
