package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dupfinder/internal/config"
	"dupfinder/internal/logging"
)

var (
	cfgPath string
	logFile string
	workers int
	quiet   bool

	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
)

var rootCmd = &cobra.Command{
	Use:   "dupfinder",
	Short: "Find duplicate files by content or image similarity",
	Long: `dupfinder finds groups of duplicate files within a directory tree.

By default files are compared by exact content (SHA-256). For images,
perceptual matching can detect duplicates that survived resizing or
recompression, and the threshold command helps pick a similarity
cutoff for it.

Example usage:
  dupfinder scan ./photos                          # Exact content duplicates
  dupfinder scan ./photos --fuzzy-images           # Perceptually similar images
  dupfinder scan ./photos --delete --dry-run       # Preview deletions
  dupfinder threshold ./photos                     # Suggest a similarity threshold`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCleanup != nil {
			return logCleanup()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file (default: OS config dir)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Number of parallel hashing workers (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress and status messages")
}

// setup loads the config file and wires the logger before any
// subcommand runs. Flags override config values when set.
func setup(cmd *cobra.Command, args []string) error {
	path := cfgPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err == nil {
			path = defaultPath
		}
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = logFile
	}

	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	logger, logCleanup = logging.Setup(cfg.LogFile, level)

	return nil
}
