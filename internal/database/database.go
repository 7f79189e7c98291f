// Package database opens the SQL connections behind the checkpoint backends.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver, registered as "sqlite"

	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/sqlutil"
)

// Connection is an open checkpoint database and the dialect it speaks.
type Connection struct {
	DB      *sql.DB
	Dialect sqlutil.Dialect
}

// Close closes the underlying pool. Safe on a nil Connection.
func (c *Connection) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// Retry policy for opening a connection. Variables so tests can shorten them.
var (
	maxAttempts    = 3
	initialBackoff = time.Second
)

// Open connects to the database selected by the checkpoint backend.
// Only the mysql and sqlite backends are accepted.
func Open(ctx context.Context, cfg *config.CheckpointConfig) (*Connection, error) {
	switch cfg.Backend {
	case "mysql":
		db, err := connectWithRetry(ctx, func() (*sql.DB, error) { return openMySQL(&cfg.Database) })
		if err != nil {
			return nil, fmt.Errorf("failed to connect to checkpoint database: %w", err)
		}
		return &Connection{DB: db, Dialect: sqlutil.MySQL}, nil
	case "sqlite":
		db, err := connectWithRetry(ctx, func() (*sql.DB, error) { return openSQLite(cfg.Path) })
		if err != nil {
			return nil, fmt.Errorf("failed to open checkpoint database %s: %w", cfg.Path, err)
		}
		return &Connection{DB: db, Dialect: sqlutil.SQLite}, nil
	default:
		return nil, fmt.Errorf("backend %q has no database", cfg.Backend)
	}
}

// connectWithRetry opens and pings, backing off exponentially between attempts.
func connectWithRetry(ctx context.Context, open func() (*sql.DB, error)) (*sql.DB, error) {
	var err error
	backoff := initialBackoff

	for i := 0; i < maxAttempts; i++ {
		var db *sql.DB
		db, err = open()
		if err == nil {
			if err = db.PingContext(ctx); err == nil {
				return db, nil
			}
			db.Close()
		}

		if i < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
}

func openMySQL(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", BuildDSN(cfg))
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// openSQLite opens a single-writer pool. The busy timeout covers a second
// process touching the same file.
func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// SQLiteDSN builds a modernc.org/sqlite DSN with WAL and a busy timeout.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	// user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	params := "?parseTime=true&charset=utf8mb4"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	default:
		params += "&tls=preferred"
	}

	return dsn + params
}
