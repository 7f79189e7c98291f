package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/sqlutil"
	"github.com/dbsmedya/ytcomments/internal/types"
)

// SQLStore keeps checkpoints in a table keyed by (video_id, sort_order), so
// one database can hold checkpoints for many videos. The statements are
// accepted by both MySQL and SQLite.
type SQLStore struct {
	db     *sql.DB
	table  string // quoted
	name   string
	logger *logger.Logger
}

// NewSQLStore validates the table name and quotes it for the dialect.
func NewSQLStore(db *sql.DB, dialect sqlutil.Dialect, table string, log *logger.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	quoted, err := dialect.QuoteIdentifierSafe(table)
	if err != nil {
		return nil, fmt.Errorf("invalid checkpoint table: %w", err)
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &SQLStore{db: db, table: quoted, name: table, logger: log}, nil
}

// Location returns the table name.
func (s *SQLStore) Location() string {
	return "table " + s.name
}

// InitializeTable creates the checkpoint table if it does not exist.
func (s *SQLStore) InitializeTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
	video_id VARCHAR(32) NOT NULL,
	sort_order VARCHAR(16) NOT NULL,
	state_json TEXT NOT NULL,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (video_id, sort_order)
)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create checkpoint table: %w", err)
	}
	s.logger.Debugf("Checkpoint table %s ready", s.name)
	return nil
}

// Load reads the state for videoID and order.
func (s *SQLStore) Load(ctx context.Context, videoID string, order types.Order) (*types.TraversalState, error) {
	query := "SELECT state_json FROM " + s.table + " WHERE video_id = ? AND sort_order = ?"

	var raw string
	err := s.db.QueryRowContext(ctx, query, videoID, string(order)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var st types.TraversalState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrCorrupt, videoID, order, err)
	}
	if !st.Matches(videoID, order) {
		return nil, fmt.Errorf("%w: row %s/%s holds state for %s/%s", ErrCorrupt, videoID, order, st.VideoID, st.Order)
	}
	return &st, nil
}

// Save upserts the state row.
func (s *SQLStore) Save(ctx context.Context, state *types.TraversalState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	query := "REPLACE INTO " + s.table + " (video_id, sort_order, state_json, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)"
	if _, err := s.db.ExecContext(ctx, query, state.VideoID, string(state.Order), string(data)); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	s.logger.Debugf("Checkpoint saved for %s/%s (%d threads processed)", state.VideoID, state.Order, state.Processed.Len())
	return nil
}

// Clear deletes the row for videoID and order.
func (s *SQLStore) Clear(ctx context.Context, videoID string, order types.Order) error {
	query := "DELETE FROM " + s.table + " WHERE video_id = ? AND sort_order = ?"
	res, err := s.db.ExecContext(ctx, query, videoID, string(order))
	if err != nil {
		return fmt.Errorf("failed to clear checkpoint: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Infof("Removed checkpoint %s/%s from %s", videoID, order, s.name)
	}
	return nil
}
