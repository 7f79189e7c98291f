// Package lock provides a MySQL advisory lock that keeps two collectors off
// the same checkpoint row.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLocked is returned when another process holds the run lock.
var ErrLocked = errors.New("run lock is held by another process")

// Lock wait times for GET_LOCK, in seconds.
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
)

// maxNameLen is MySQL's limit on user-level lock names.
const maxNameLen = 64

// RunLock is a named GET_LOCK held on a pinned connection. MySQL ties
// advisory locks to the session, so acquire and release must share one.
type RunLock struct {
	conn *sql.Conn
	name string
}

// RunLockName returns the lock name for a video and order pair, e.g.
// "ytcomments:run:dQw4w9WgXcQ:time". Unexpected characters become '_' and the
// result is capped at 64 bytes.
func RunLockName(videoID, order string) string {
	sanitize := func(s string) string {
		return strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
				return r
			}
			return '_'
		}, s)
	}
	name := fmt.Sprintf("ytcomments:run:%s:%s", sanitize(videoID), sanitize(order))
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

// Acquire takes the named lock, waiting up to timeoutSeconds.
// It returns an error wrapping ErrLocked when the wait runs out.
func Acquire(ctx context.Context, db *sql.DB, name string, timeoutSeconds int) (*RunLock, error) {
	if db == nil {
		return nil, errors.New("lock: nil database")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve lock connection: %w", err)
	}

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, timeoutSeconds).Scan(&result); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		conn.Close()
		return nil, fmt.Errorf("GET_LOCK returned NULL for lock %q", name)
	}

	switch result.Int64 {
	case 1:
		return &RunLock{conn: conn, name: name}, nil
	case 0:
		conn.Close()
		return nil, fmt.Errorf("%w: %q", ErrLocked, name)
	default:
		conn.Close()
		return nil, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// Name returns the lock name.
func (l *RunLock) Name() string {
	return l.name
}

// Held reports whether the lock has not been released yet.
func (l *RunLock) Held() bool {
	return l != nil && l.conn != nil
}

// Release releases the lock and returns the pinned connection to the pool.
// Releasing twice is a no-op.
func (l *RunLock) Release(ctx context.Context) error {
	if !l.Held() {
		return nil
	}
	conn := l.conn
	l.conn = nil
	defer conn.Close()

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", l.name).Scan(&result); err != nil {
		return fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid || result.Int64 != 1 {
		return fmt.Errorf("lock %q was not held by this session", l.name)
	}
	return nil
}

// WithRunLock runs fn while holding the named lock. The lock is released on a
// fresh context so a canceled run still frees it.
func WithRunLock(ctx context.Context, db *sql.DB, name string, fn func() error) (err error) {
	l, err := Acquire(ctx, db, name, TimeoutShort)
	if err != nil {
		return err
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if releaseErr := l.Release(releaseCtx); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	return fn()
}
