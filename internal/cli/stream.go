package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chartflow/chartflow/pkg/engine"
	"github.com/chartflow/chartflow/pkg/observability"
	"github.com/chartflow/chartflow/pkg/source"
	redissource "github.com/chartflow/chartflow/pkg/source/redis"
	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/translate"
)

// streamOpts holds the command-line flags for the stream command.
type streamOpts struct {
	redisAddr    string // Redis server address; empty reads NDJSON from stdin
	redisChannel string // pub/sub channel carrying row payloads
	tui          bool   // show live buffer statistics instead of JSON output
}

// newStreamCmd creates the stream command: feed rows from stdin or a Redis
// channel into a live chart. Each scheduled redraw writes the compiled
// configuration as one JSON line to stdout; with --tui a live statistics
// view is shown instead.
func newStreamCmd() *cobra.Command {
	var opts streamOpts

	cmd := &cobra.Command{
		Use:   "stream <spec-file>",
		Short: "Stream live rows into a chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address to subscribe to (default: read NDJSON from stdin)")
	cmd.Flags().StringVar(&opts.redisChannel, "channel", "rows", "Redis pub/sub channel")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show live buffer statistics")

	return cmd
}

func runStream(cmd *cobra.Command, specPath string, opts *streamOpts) error {
	logger := loggerFromContext(cmd.Context())

	s, err := spec.Load(specPath)
	if err != nil {
		return err
	}

	var renderer engine.Renderer
	if !opts.tui {
		renderer = &jsonRenderer{w: cmd.OutOrStdout()}
	} else {
		renderer = nopRenderer{}
	}

	chart, err := engine.NewChart(s, renderer, logger)
	if err != nil {
		return err
	}
	defer chart.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := openSource(ctx, cmd, opts)
	if err != nil {
		return err
	}

	if opts.tui {
		return runStreamTUI(ctx, src, chart)
	}

	err = src.Run(ctx, chart)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openSource picks the row source: a Redis subscription when --redis is
// set, stdin NDJSON otherwise.
func openSource(ctx context.Context, cmd *cobra.Command, opts *streamOpts) (source.Source, error) {
	if opts.redisAddr == "" {
		return source.NewReader(cmd.InOrStdin()), nil
	}

	sp := newSpinner("Connecting to " + opts.redisAddr)
	sp.Start()
	src, err := redissource.New(ctx, redissource.Config{
		Addr:    opts.redisAddr,
		Channel: opts.redisChannel,
	})
	sp.Stop()
	return src, err
}

// runStreamTUI wires buffer hooks into the statistics model and runs the
// source and the TUI side by side. Whichever finishes first stops the other.
func runStreamTUI(ctx context.Context, src source.Source, chart *engine.Chart) error {
	program := tea.NewProgram(newStreamModel(chart))

	collector := &statsCollector{send: program.Send}
	observability.SetBufferHooks(collector)
	observability.SetEngineHooks(collector)
	defer observability.Reset()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	srcErr := make(chan error, 1)
	go func() {
		srcErr <- src.Run(runCtx, chart)
		program.Send(sourceDoneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		return err
	}
	cancel()

	if err := <-srcErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// jsonRenderer is the stdout rendering backend: one compiled configuration
// per redraw, newline-delimited.
type jsonRenderer struct {
	w io.Writer
}

func (r *jsonRenderer) Render(_ context.Context, cfg *translate.Config) error {
	return json.NewEncoder(r.w).Encode(cfg)
}

func (r *jsonRenderer) Close() error { return nil }

// nopRenderer keeps the redraw scheduler exercising the pipeline without
// producing output; the TUI reads the resulting hook events.
type nopRenderer struct{}

func (nopRenderer) Render(context.Context, *translate.Config) error { return nil }
func (nopRenderer) Close() error                                    { return nil }
