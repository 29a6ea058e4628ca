package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/chartflow/chartflow/internal/api"
)

// serverConfig is the TOML server configuration file shape. Flags override
// file values.
type serverConfig struct {
	Addr     string `toml:"addr"`
	Store    string `toml:"store"`
	StoreDir string `toml:"store_dir"`
	MongoURI string `toml:"mongo_uri"`
}

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	configPath string
	store      storeFlags
}

// newServeCmd creates the serve command running the HTTP chart API.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chart API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML server configuration file")
	opts.store.register(cmd.Flags())

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOpts) error {
	logger := loggerFromContext(cmd.Context())

	if opts.configPath != "" {
		var fileCfg serverConfig
		if _, err := toml.DecodeFile(opts.configPath, &fileCfg); err != nil {
			return fmt.Errorf("parse server config: %w", err)
		}
		applyServerConfig(cmd, opts, fileCfg)
	}

	st, err := opts.store.open(cmd.Context())
	if err != nil {
		return err
	}

	server := api.NewServer(st, logger)
	defer server.Close()

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving chart API", "addr", opts.addr, "store", opts.store.backend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// applyServerConfig fills unset flags from the config file. Explicitly
// passed flags win.
func applyServerConfig(cmd *cobra.Command, opts *serveOpts, fileCfg serverConfig) {
	if fileCfg.Addr != "" && !cmd.Flags().Changed("addr") {
		opts.addr = fileCfg.Addr
	}
	if fileCfg.Store != "" && !cmd.Flags().Changed("store") {
		opts.store.backend = fileCfg.Store
	}
	if fileCfg.StoreDir != "" && !cmd.Flags().Changed("store-dir") {
		opts.store.fileDir = fileCfg.StoreDir
	}
	if fileCfg.MongoURI != "" && !cmd.Flags().Changed("mongo-uri") {
		opts.store.mongoURI = fileCfg.MongoURI
	}
}
