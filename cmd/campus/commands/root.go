// Package commands wires the campus CLI.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmcdole/campus/internal/config"
	"github.com/mmcdole/campus/internal/log"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configDir string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

// Execute runs the root command. Errors are printed before returning.
func Execute() error {
	root := &cobra.Command{
		Use:           "campus",
		Short:         "Browse school notifications, subjects and attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configDir == "" {
				configDir = config.DefaultDir()
			}

			var err error
			cfg, err = config.Load(configDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, logCloser, err = log.Setup(cfg.Log())
			if err != nil {
				// Fall back to null logger if file logging fails
				logger = log.NullLogger()
			}
			slog.SetDefault(logger)
			logger.Info("starting campus", "version", Version, "command", cmd.Name())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				logCloser.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse()
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "config dir (default ~/.config/campus)")

	root.AddCommand(browseCmd(), loginCmd(), serveCmd(), tokenCmd(), reportCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("campus %s\n", Version)
		},
	}
}
