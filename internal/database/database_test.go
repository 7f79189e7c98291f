package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dbsmedya/ytcomments/internal/config"
	"github.com/dbsmedya/ytcomments/internal/sqlutil"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DatabaseConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.DatabaseConfig{
				Host: "localhost", Port: 3306, User: "root", Password: "secret",
				Database: "comments", TLS: "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/comments?parseTime=true&charset=utf8mb4&tls=preferred",
		},
		{
			name: "TLS disabled",
			cfg: &config.DatabaseConfig{
				Host: "db", Port: 3307, User: "yt", Password: "p@ss!", Database: "c", TLS: "disable",
			},
			expected: "yt:p@ss!@tcp(db:3307)/c?parseTime=true&charset=utf8mb4&tls=false",
		},
		{
			name: "TLS required",
			cfg: &config.DatabaseConfig{
				Host: "db", Port: 3306, User: "yt", Database: "c", TLS: "required",
			},
			expected: "yt:@tcp(db:3306)/c?parseTime=true&charset=utf8mb4&tls=true",
		},
		{
			name: "TLS empty defaults to preferred",
			cfg: &config.DatabaseConfig{
				Host: "db", Port: 3306, User: "yt", Database: "c",
			},
			expected: "yt:@tcp(db:3306)/c?parseTime=true&charset=utf8mb4&tls=preferred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := BuildDSN(tt.cfg); result != tt.expected {
				t.Errorf("BuildDSN() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("/tmp/state.db")
	if !strings.HasPrefix(dsn, "file:/tmp/state.db?") {
		t.Errorf("unexpected DSN prefix: %s", dsn)
	}
	if !strings.Contains(dsn, "busy_timeout(5000)") {
		t.Errorf("DSN should set busy_timeout: %s", dsn)
	}
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.CheckpointConfig{
		Backend: "sqlite",
		Path:    filepath.Join(t.TempDir(), "state.db"),
	}

	conn, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer conn.Close()

	if conn.Dialect != sqlutil.SQLite {
		t.Errorf("expected sqlite dialect, got %s", conn.Dialect)
	}
	if _, err := conn.DB.Exec("CREATE TABLE t (id INTEGER)"); err != nil {
		t.Errorf("exec on opened database failed: %v", err)
	}
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	for _, backend := range []string{"file", "none", ""} {
		_, err := Open(context.Background(), &config.CheckpointConfig{Backend: backend})
		if err == nil {
			t.Errorf("expected error for backend %q", backend)
		}
	}
}

func TestOpen_MySQLUnreachable(t *testing.T) {
	oldAttempts, oldBackoff := maxAttempts, initialBackoff
	maxAttempts, initialBackoff = 2, time.Millisecond
	defer func() { maxAttempts, initialBackoff = oldAttempts, oldBackoff }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg := &config.CheckpointConfig{
		Backend: "mysql",
		Database: config.DatabaseConfig{
			Host: "127.0.0.1", Port: 1, User: "nobody", Database: "none", TLS: "disable",
		},
	}
	_, err := Open(ctx, cfg)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !strings.Contains(err.Error(), "checkpoint database") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConnectionCloseNil(t *testing.T) {
	var conn *Connection
	if err := conn.Close(); err != nil {
		t.Errorf("Close() on nil connection returned %v", err)
	}
}
