package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the 'analyze' command for (re)indexing the workspace.
func NewAnalyzeCmd() *cobra.Command {
	var configPath string
	var rebuild bool
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Scan the workspace and index every sorted note",
		Long: `Walk the workspace (excluding the inbox), embed each eligible note, and
store it in the vector index and the metadata database. With --rebuild the
index is built from scratch instead of on top of the existing snapshot.
With --check, only report divergence between index and database.`,
		Example: `  notesort analyze
  notesort analyze --rebuild
  notesort analyze --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, configPath, rebuild, checkOnly)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Discard the existing vector snapshot and reindex from scratch")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report index/database divergence")

	return cmd
}

func runAnalyze(cmd *cobra.Command, configPath string, rebuild, checkOnly bool) error {
	a, err := newApp(configPath, appOptions{skipSnapshot: rebuild})
	if err != nil {
		return err
	}
	defer a.close()

	if checkOnly {
		divergence, err := a.engine.CheckConsistency()
		if err != nil {
			return err
		}
		if divergence.Empty() {
			fmt.Println("✓ Vector index and database are consistent.")
			return nil
		}
		fmt.Println(divergence.String())
		fmt.Println("\nRun 'notesort analyze --rebuild' to repair.")
		return nil
	}

	ctx := cmd.Context()
	if err := a.verifyProvider(ctx); err != nil {
		return err
	}

	analysis, err := a.engine.IndexWorkspace(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Indexed %d notes (%d skipped as too short)\n\n", len(analysis.Notes), analysis.SkippedShort)
	fmt.Println(analysis.FolderSummary())
	return nil
}
