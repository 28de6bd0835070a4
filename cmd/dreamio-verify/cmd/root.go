package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dreamio-app/dreamio-release/internal/service/verifier"
	"github.com/dreamio-app/dreamio-release/internal/version"
)

var (
	// digest is the published digest text to compare against.
	digest string

	// descriptionPath points at a saved release description.
	descriptionPath string

	// assetKind selects which digest to read from a description.
	assetKind string

	// rootCmd represents the base command verifying a downloaded artifact.
	rootCmd = &cobra.Command{
		Use:   "dreamio-verify [file]",
		Short: "Verify a downloaded artifact against its published SHA256 digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &verifier.Options{
				FilePath:        args[0],
				Digest:          digest,
				DescriptionPath: descriptionPath,
				AssetKind:       assetKind,
			}

			return verifier.Run(ctx, options)
		},
	}
)

// Execute runs the dreamio-verify CLI and exits with non-zero status on error.
// A non-zero exit means the file must not be executed.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&digest, "digest", "d", "", "published digest to compare against")
	rootCmd.Flags().StringVarP(&descriptionPath, "description", "D", "", "path to a saved release description")
	rootCmd.Flags().StringVarP(&assetKind, "kind", "k", "", "digest to pick from a description: executable or archive")
}
