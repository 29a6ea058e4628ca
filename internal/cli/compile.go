package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chartflow/chartflow/pkg/engine"
	"github.com/chartflow/chartflow/pkg/source"
	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/translate"
)

// compileOpts holds the command-line flags for the compile command.
type compileOpts struct {
	dataPath string // optional NDJSON rows file
	output   string // output file path, empty writes to stdout
	pretty   bool   // indent the JSON output
}

// newCompileCmd creates the compile command: load a spec, optionally load
// rows, run the full pipeline, and emit the renderer-ready configuration as
// JSON.
func newCompileCmd() *cobra.Command {
	var opts compileOpts

	cmd := &cobra.Command{
		Use:   "compile <spec-file>",
		Short: "Compile a chart spec to renderer configuration JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dataPath, "data", "d", "", "NDJSON file with rows to filter and attach")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", true, "indent the JSON output")

	return cmd
}

func runCompile(cmd *cobra.Command, specPath string, opts *compileOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	s, err := spec.Load(specPath)
	if err != nil {
		return err
	}
	logger.Debug("loaded spec", "marks", len(s.Marks), "annotations", len(s.Annotations))

	var rows []spec.Row
	if opts.dataPath != "" {
		rows, err = loadRows(cmd, opts.dataPath)
		if err != nil {
			return err
		}
		logger.Debug("loaded rows", "count", len(rows))
	}

	cfg, err := engine.Compile(s, rows)
	if err != nil {
		return err
	}

	data, err := marshalConfig(cfg, opts.pretty)
	if err != nil {
		return err
	}

	if opts.output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else if err := os.WriteFile(opts.output, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	prog.done(fmt.Sprintf("Compiled %d marks over %d rows", len(s.Marks), len(cfg.Data)))
	return nil
}

// loadRows reads an NDJSON rows file through the same source used by the
// stream command, so both paths accept identical payloads.
func loadRows(cmd *cobra.Command, path string) ([]spec.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	var rows []spec.Row
	sink := source.SinkFunc(func(batch []spec.Row) error {
		rows = append(rows, batch...)
		return nil
	})
	if err := source.NewReader(f).Run(cmd.Context(), sink); err != nil {
		return nil, err
	}
	return rows, nil
}

func marshalConfig(cfg *translate.Config, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(cfg, "", "  ")
	}
	return json.Marshal(cfg)
}
