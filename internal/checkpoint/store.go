// Package checkpoint persists TraversalState between collection runs.
package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/database"
	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/types"
)

// ErrCorrupt is returned by Load when a stored checkpoint cannot be decoded.
// Callers treat it as "no checkpoint" and start fresh.
var ErrCorrupt = errors.New("checkpoint is corrupt")

// Store is durable storage for one traversal state per video and order.
//
// Load returns (nil, nil) when nothing is stored for the pair. Save replaces
// whatever was stored. Clear is a no-op when nothing is stored.
type Store interface {
	Load(ctx context.Context, videoID string, order types.Order) (*types.TraversalState, error)
	Save(ctx context.Context, state *types.TraversalState) error
	Clear(ctx context.Context, videoID string, order types.Order) error
	Location() string
}

// NopStore discards every write. Used for the "none" backend.
type NopStore struct{}

func (NopStore) Load(context.Context, string, types.Order) (*types.TraversalState, error) {
	return nil, nil
}

func (NopStore) Save(context.Context, *types.TraversalState) error { return nil }

func (NopStore) Clear(context.Context, string, types.Order) error { return nil }

func (NopStore) Location() string { return "none" }

// Backend is an opened Store plus the database behind it, if any.
type Backend struct {
	Store
	Conn *database.Connection
}

// Close releases the database connection.
func (b *Backend) Close() error {
	return b.Conn.Close()
}

// Open builds the Store selected by cfg.Backend. SQL backends get their table
// created on first use.
func Open(ctx context.Context, cfg *config.CheckpointConfig, log *logger.Logger) (*Backend, error) {
	if log == nil {
		log = logger.NewDefault()
	}

	switch cfg.Backend {
	case "file", "":
		return &Backend{Store: NewFileStore(cfg.Path, log)}, nil
	case "none":
		return &Backend{Store: NopStore{}}, nil
	case "mysql", "sqlite":
		conn, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(conn.DB, conn.Dialect, cfg.Table, log)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if err := store.InitializeTable(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return &Backend{Store: store, Conn: conn}, nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Backend)
	}
}
