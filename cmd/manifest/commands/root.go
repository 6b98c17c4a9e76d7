package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rpggio/chromalabel/internal/manifest"
	"github.com/spf13/cobra"
)

var (
	baseFolder string
	outputPath string
	limit      int
	categories []string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Build the image manifest for the color labelling experiment",
	Long: `manifest scans the category folders of an image root and writes a JSON
file listing, per category, the first images found and their matching masks.

A mask for "cat.png" is "maskcat.png" or "mask_cat.png" in the same folder.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Errors are printed by the printer package.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&baseFolder, "base-folder", "b", "static/uploads", "Image root containing one folder per category")
	flags.StringVarP(&outputPath, "output", "o", "images.json", "Manifest file to write")
	flags.IntVar(&limit, "limit", manifest.DefaultLimit, "Maximum images per category")
	flags.StringSliceVar(&categories, "categories", manifest.DefaultCategories, "Category folders to scan, in output order")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log scan details to stderr")
}

func newBuilder() *manifest.Builder {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return manifest.NewBuilder(manifest.Options{
		BaseFolder: baseFolder,
		Categories: categories,
		Limit:      limit,
	}, logger)
}
