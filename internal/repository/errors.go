// Package repository contains the MySQL data access layer of the booking
// engine. The sentinel values below let the service layer tell missing
// rows and lost write races apart from infrastructure failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a row does not exist for the given tenant,
// or has been soft deleted.
var ErrNotFound = errors.New("not found")

// ErrOverlap is returned when a booking insert lost the race for a
// professional's day: the database reported a deadlock, a lock wait
// timeout or a duplicate key while the day lock was being taken.
var ErrOverlap = errors.New("booking overlaps an existing booking")

// MySQL server error numbers translated to ErrOverlap.
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// translateWriteErr maps lock contention errors onto ErrOverlap and
// returns every other error unchanged.
func translateWriteErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry, mysqlLockWaitTimeout, mysqlDeadlock:
			return errors.Join(ErrOverlap, err)
		}
	}
	return err
}
