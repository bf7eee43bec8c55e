package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/printworks/jobmeta/internal/cli"
	"github.com/printworks/jobmeta/internal/cli/config"
	"github.com/printworks/jobmeta/pkg/metadata"
)

var (
	// Set at build time using -ldflags.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "jobmeta <file>",
	Short: "Extracts metadata and preview images from 3D-printer job files.",
	Long: `jobmeta reads the metadata a slicer embeds in a print job file and
prints it as "name: value" lines, without loading the whole file.

Plain-text toolpath files are scanned in a bounded window at the start and
end of the file; zip-packaged resin job files are read from their config
entry. Extracted results are cached in a side-file next to the source.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		opts, logger, err := config.LoadAndValidate(cfgFile, version, verbose, cmd.Flags())
		if err != nil {
			return err
		}

		format := cli.OutputFormatText
		if raw, ferr := cmd.Flags().GetString("output-format"); ferr == nil && raw == string(cli.OutputFormatJSON) {
			format = cli.OutputFormatJSON
		}
		return cli.Run(ctx, args[0], opts, format, os.Stdout, logger)
	},
}

// Execute runs the root command.
func Execute() {
	rootCmd.SetVersionTemplate(`{{.Use}} version {{.Version}}` + "\n")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is ./jobmeta.yaml or $HOME/.config/jobmeta/)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging output")

	rootCmd.Flags().Bool("cache", metadata.DefaultCacheEnabled, "Read and write the cache side-file")
	rootCmd.Flags().Bool("no-cache", false, "Force a full scan by ignoring cache reads (still writes the cache)")
	rootCmd.Flags().Int64("start-window", metadata.DefaultStartWindowBytes, "Byte budget scanned at the start of a toolpath file")
	rootCmd.Flags().Int64("end-window", metadata.DefaultEndWindowBytes, "Byte budget scanned at the end of a toolpath file")
	rootCmd.Flags().Int64("status-scan-budget", metadata.DefaultStatusScanBudget, "Byte budget for the M73 status-code scan")
	rootCmd.Flags().String("output-format", string(cli.OutputFormatText), `Output format ("text", "json")`)
}
