// Package cli implements the chartflow command-line interface.
//
// This package provides commands for compiling chart specs into
// renderer-ready configuration, inspecting the compiled tree, serving the
// chart API over HTTP, streaming live rows into a chart, and managing the
// named-spec store. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - compile: Compile a spec (plus optional data) to configuration JSON
//   - inspect: Render the compiled configuration tree as DOT or SVG
//   - serve: Run the HTTP chart API
//   - stream: Feed NDJSON or Redis rows into a live chart
//   - specs: Manage the named-spec store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/chartflow/chartflow/pkg/store"
	mongostore "github.com/chartflow/chartflow/pkg/store/mongo"
)

// appName is the application name used for directories and display.
const appName = "chartflow"

// Store backend names accepted by --store flags.
const (
	storeMemory = "memory"
	storeFile   = "file"
	storeMongo  = "mongo"
)

// storeFlags holds the store selection flags shared by serve and specs.
type storeFlags struct {
	backend  string
	fileDir  string
	mongoURI string
}

// register adds the shared store flags to a flag set. Command groups pass
// their persistent set so subcommands inherit the flags.
func (f *storeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "store", storeFile, "spec store backend: memory, file, or mongo")
	fs.StringVar(&f.fileDir, "store-dir", "", "directory for the file store (default ~/.config/chartflow/specs)")
	fs.StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB connection string for the mongo store")
}

// open creates the selected store backend.
func (f *storeFlags) open(ctx context.Context) (store.Store, error) {
	switch f.backend {
	case storeMemory:
		return store.NewMemoryStore(), nil
	case storeFile:
		return store.NewFileStore(f.fileDir)
	case storeMongo:
		return mongostore.NewStore(ctx, mongostore.Config{URI: f.mongoURI})
	default:
		return nil, errUnknownStore(f.backend)
	}
}
