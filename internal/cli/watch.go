package cli

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"notesort/internal/classify"
	"notesort/internal/watch"
)

// NewWatchCmd creates the 'watch' command for continuous inbox ingestion.
func NewWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the inbox and classify new notes as they appear",
		Long: `Observe the inbox directory and classify each new note automatically once
it has stopped changing. Runs until interrupted; an in-flight
classification is allowed to finish before shutdown.`,
		Example: `  notesort watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.notesort.yaml)")

	return cmd
}

func runWatch(cmd *cobra.Command, configPath string) error {
	a, err := newApp(configPath, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.verifyProvider(ctx); err != nil {
		return err
	}
	if err := a.engine.RefreshSummary(ctx); err != nil {
		return err
	}

	scheduler := watch.NewScheduler(watch.SchedulerConfig{
		Classifier: a.engine,
		Inbox:      a.cfg.InboxPath(),
		Settle:     a.cfg.SettleWindow(),
		Eligible:   a.analyzer.Eligible,
		OnOutcome: func(o classify.Outcome) {
			printOutcome(o)
		},
	})
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", filepath.Clean(a.cfg.InboxPath()))
	<-ctx.Done()

	fmt.Println("\nStopping...")
	scheduler.Stop()
	return nil
}
