package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/acap-packager/internal/config"
	"github.com/oshokin/acap-packager/internal/logger"
	"github.com/oshokin/acap-packager/internal/service/packager"
	"github.com/oshokin/acap-packager/internal/version"
)

var (
	// configPath stores the path to the packaging settings YAML file.
	configPath string
	// architecture is the build target name.
	architecture string
	// buildDir overrides the staging root from the settings file.
	buildDir string
	// outputDir overrides the archive destination from the settings file.
	outputDir string
	// additionalFiles are staged next to the executable.
	additionalFiles []string
	// timestamp pins archive member times to a Unix epoch second.
	timestamp int64
	// logLevel selects the logging verbosity.
	logLevel string

	// rootCmd represents the base command for building packages.
	rootCmd = &cobra.Command{
		Use:   "acap-packager [app-directory]",
		Short: "Build a deployable package from a built application directory.",
		Long: `Build a deployable .eap package from a built application directory.

The directory must contain the application executable named after the
manifest appName, a manifest.json and a LICENSE file. Optional html, lib
and declarations directories are packaged when present. The package
descriptors (package.conf, param.conf, cgi.conf) are generated from the
manifest and the archive is written to the output directory.

Builds are reproducible: pass --timestamp or set SOURCE_DATE_EPOCH to pin
the modification time recorded for every archive member.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if logLevel != "" {
				level, ok := logger.ParseLogLevel(logLevel)
				if !ok {
					return fmt.Errorf("unknown log level %q", logLevel)
				}

				logger.SetLevel(level)
			}

			// Use the app directory argument if provided, otherwise the current directory.
			var appDir string
			if len(args) > 0 {
				appDir = args[0]
			}

			options := &packager.Options{
				AppDir:          appDir,
				Architecture:    architecture,
				ConfigPath:      configPath,
				BuildDir:        buildDir,
				OutputDir:       outputDir,
				AdditionalFiles: additionalFiles,
			}

			if timestamp > 0 {
				options.Timestamp = time.Unix(timestamp, 0)
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the acap-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to packaging settings (default "+config.DefaultConfigFilename+")")
	rootCmd.Flags().StringVarP(&architecture, "arch", "a", "", "build target architecture (aarch64 or armv7hf)")
	rootCmd.Flags().StringVarP(&buildDir, "build-dir", "b", "", "staging root directory")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory the finished archive is copied to")
	rootCmd.Flags().StringArrayVarP(&additionalFiles, "additional-file", "f", nil,
		"extra file staged into the package, repeatable")
	rootCmd.Flags().Int64Var(&timestamp, "timestamp", 0,
		"Unix time recorded for archive members, overrides SOURCE_DATE_EPOCH")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "",
		"logging verbosity: debug, info, warn or error (default info)")
}
