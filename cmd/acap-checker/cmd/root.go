package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/acap-packager/internal/service/checker"
	"github.com/oshokin/acap-packager/internal/version"
)

// rootCmd represents the base command for verifying packages.
var rootCmd = &cobra.Command{
	Use:   "acap-checker [package-file]",
	Short: "Verify a built package archive.",
	Long: `Verify the structure of a built .eap package archive.

Checks that the archive decompresses, carries exactly one root-level
manifest.json that passes the manifest schema, contains the application
executable, the LICENSE and the generated descriptors, and that every
member is owned by root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return checker.Run(ctx, &checker.Options{Path: args[0]})
	},
}

// Execute runs the acap-checker CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
