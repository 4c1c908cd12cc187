package storage

import (
	"context"
	"fmt"

	"github.com/xvierd/fuzzle/internal/logging"
	"github.com/xvierd/fuzzle/internal/ports"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a storage backend.
type Options struct {
	Backend     string
	SQLitePath  string
	PostgresDSN string
}

// Open returns the configured storage, migrated and ready to use.
func Open(ctx context.Context, opts Options, logger logging.Logger) (ports.Storage, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		logger.Debugf("opening sqlite store at %s", opts.SQLitePath)
		return New(opts.SQLitePath)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		logger.Debug("opening postgres store")
		return NewPostgres(ctx, opts.PostgresDSN, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
