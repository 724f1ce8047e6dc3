package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/salon-booking/internal/interval"
)

// DefaultQueryTimeout bounds every repository call when the caller did
// not configure a timeout.
const DefaultQueryTimeout = 5 * time.Second

// conn is embedded by every repository. It carries the pool and the
// per-call deadline.
type conn struct {
	db      *sql.DB
	timeout time.Duration
}

func newConn(db *sql.DB, timeout time.Duration) conn {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return conn{db: db, timeout: timeout}
}

// DB exposes the underlying connection pool.
func (c conn) DB() *sql.DB { return c.db }

func (c conn) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.timeout)
}

// rollback is deferred right after BeginTx; it is a no-op once the
// transaction has been committed.
func rollback(tx *sql.Tx, committed *bool) {
	if !*committed {
		_ = tx.Rollback()
	}
}

// parseClock converts a TIME column ("HH:MM:SS") to a clock value.
func parseClock(col, raw string) (interval.Clock, error) {
	c, err := interval.ParseClock(raw)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return c, nil
}

// dateArg renders a calendar date for a DATE column.
func dateArg(t time.Time) string {
	return t.Format(interval.DateLayout)
}
