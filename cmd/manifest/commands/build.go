package commands

import (
	"errors"
	"fmt"

	"github.com/rpggio/chromalabel/internal/manifest"
	"github.com/rpggio/chromalabel/internal/printer"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Scan the image root once and write the manifest",
	Long: `Scan the image root once and write the manifest.

Examples:
  # Default layout
  manifest build

  # Custom root and output
  manifest build --base-folder ./images --output ./site/images.json --limit 10`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	builder := newBuilder()

	printer.Step("Scanning %s\n", baseFolder)
	m, err := builder.BuildAndWrite(cmd.Context(), outputPath)
	if err != nil {
		if errors.Is(err, manifest.ErrBaseFolderMissing) {
			return printer.Error(
				"base folder not found",
				fmt.Sprintf("No directory at %s.", baseFolder),
				[]string{"Upload images first or pass --base-folder"},
			)
		}
		return printer.Error("manifest not written", err.Error(), nil)
	}

	for _, category := range m.Categories {
		printer.Info("  %s: %d images\n", category, len(m.Entries[category]))
	}
	printer.Success("Wrote %d entries to %s\n", m.Total(), outputPath)
	return nil
}
