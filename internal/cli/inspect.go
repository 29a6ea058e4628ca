package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/inspect"
	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/translate"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	format   string // "dot" or "svg"
	output   string // output file path, empty writes to stdout
	detailed bool   // include scale and transform detail in node labels
}

// newInspectCmd creates the inspect command: compile a spec and render the
// resulting configuration tree as a Graphviz diagram for debugging.
func newInspectCmd() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <spec-file>",
		Short: "Render a spec's compiled configuration tree as DOT or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatDOT, "output format: dot or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include scales and transforms in node labels")

	return cmd
}

func runInspect(cmd *cobra.Command, specPath string, opts *inspectOpts) error {
	logger := loggerFromContext(cmd.Context())

	s, err := spec.Load(specPath)
	if err != nil {
		return err
	}

	cfg := translate.Translate(s)
	dot := inspect.ToDOT(cfg, inspect.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		data, err = inspect.RenderSVG(dot)
		if err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat,
			"unknown format %q (must be dot or svg)", opts.format)
	}

	if opts.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("wrote configuration diagram", "path", opts.output, "children", len(cfg.Children))
	return nil
}
