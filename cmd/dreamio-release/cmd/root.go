package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dreamio-app/dreamio-release/internal/config"
	"github.com/dreamio-app/dreamio-release/internal/logger"
	"github.com/dreamio-app/dreamio-release/internal/service/releaser"
	"github.com/dreamio-app/dreamio-release/internal/version"
)

var (
	// configPath to the pipeline configuration YAML file.
	configPath string

	// artifactPath to a prebuilt executable, skipping the compile step.
	artifactPath string

	// logLevel selects the minimum log level.
	logLevel string

	// rootCmd represents the base command running the release pipeline.
	rootCmd = &cobra.Command{
		Use:   "dreamio-release",
		Short: "Build, package, hash and publish the DREAMIO updater",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &releaser.Options{
				ConfigPath:   configPath,
				ArtifactPath: artifactPath,
			}

			return releaser.Run(ctx, options)
		},
	}
)

// Execute runs the dreamio-release CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&artifactPath, "artifact", "a", "", "path to a prebuilt executable (skips the compile step)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug, info, warn, error)")
}
