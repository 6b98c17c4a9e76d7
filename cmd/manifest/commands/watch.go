package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpggio/chromalabel/internal/manifest"
	"github.com/rpggio/chromalabel/internal/printer"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rewrite the manifest whenever the image root changes",
	Long: `Write the manifest, then keep rewriting it after files are added to or
removed from the category folders. Stops on Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before rebuilding")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := manifest.NewWatcher(newBuilder(), outputPath, watchDebounce, nil)
	watcher.OnRebuild = func(m *manifest.Manifest, err error) {
		if err != nil {
			printer.Warning("Rebuild failed: %v\n", err)
			return
		}
		printer.Success("Wrote %d entries to %s\n", m.Total(), outputPath)
	}

	printer.Step("Watching %s (Ctrl+C to stop)\n", baseFolder)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return printer.Error("watch stopped", err.Error(), []string{"Check that --base-folder exists"})
	}
	printer.Info("Stopped\n")
	return nil
}
