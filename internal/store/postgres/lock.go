package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"
)

const unlockTimeout = 5 * time.Second

// AcquirePushLock takes a session level advisory lock keyed by name.
// The lock lives on a dedicated connection. The release function unlocks it
// and returns the connection to the pool, or discards the connection when the
// unlock fails so the server ends the session and drops the lock with it.
func (s *Store) AcquirePushLock(ctx context.Context, name string) (func() error, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve connection for lock %q: %w", name, err)
	}

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock(hashtext($1))`, name); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to acquire lock %q: %w", name, err)
	}

	release := func() error {
		// the caller's context may already be cancelled
		unlockCtx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()

		if _, err := conn.ExecContext(unlockCtx, `SELECT pg_advisory_unlock(hashtext($1))`, name); err != nil {
			// Advisory locks are re-entrant per session; a pooled session
			// still holding one would block every other owner.
			conn.Raw(func(any) error { return driver.ErrBadConn })
			conn.Close()
			return fmt.Errorf("failed to release lock %q, connection discarded: %w", name, err)
		}
		return conn.Close()
	}
	return release, nil
}
