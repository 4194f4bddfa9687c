package database

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateKey is a constraint violation error.
var ErrDuplicateKey = errors.New("duplicate key value violates table constraint")

const (
	mysqlErrDupEntry     = 1062
	pqErrUniqueViolation = pq.ErrorCode("23505")
)

// WrapError unites the unique-constraint errors of the supported drivers
// into ErrDuplicateKey. Other errors are returned unchanged.
func WrapError(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDupEntry {
		return ErrDuplicateKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqErrUniqueViolation {
		return ErrDuplicateKey
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return ErrDuplicateKey
		}
	}

	return err
}
