package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chartflow/chartflow/pkg/buildinfo"
	"github.com/chartflow/chartflow/pkg/errors"
)

// Execute runs the chartflow CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Chartflow compiles streaming chart specs into renderer configuration",
		Long:         `Chartflow is a spec engine for live charts: it decides which rows of a never-ending dataset are visible, compiles a declarative grammar of marks, scales, and transforms into renderer-ready configuration, and schedules redraws under a throttle policy.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newStreamCmd())
	root.AddCommand(newSpecsCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(context.Background())
}

func errUnknownStore(backend string) error {
	return errors.New(errors.ErrCodeUnsupported,
		"unknown store backend %q (must be one of: memory, file, mongo)", backend)
}
