package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"notesort/internal/config"
)

// NewInitCmd creates the 'init' command that writes a starter config.
func NewInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init <workspace>",
		Short: "Create a starter configuration for a workspace",
		Long: `Write a configuration file pointing at the given workspace directory,
with defaults for everything else. Existing configuration is backed up to
a .bak file first.`,
		Example: `  notesort init ~/notes`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(configPath, args[0])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")

	return cmd
}

func runInit(configPath, workspace string) error {
	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	abs, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace path: %w", err)
	}

	cfg := config.Default()
	cfg.Workspace = abs
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("✓ Wrote %s\n", configPath)
	fmt.Println("Edit the provider section, then run 'notesort analyze' to build the index.")
	return nil
}
