package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/matryer/is"
)

func TestDSN(t *testing.T) {
	is := is.New(t)

	dsn, err := Config{
		Driver:   DriverMySQL,
		Host:     "db",
		Port:     "3306",
		User:     "adt",
		Password: "secret",
		Name:     "adtdb",
	}.DSN()
	is.NoErr(err)
	is.True(strings.HasPrefix(dsn, "adt:secret@tcp(db:3306)/adtdb?"))
	is.True(strings.Contains(dsn, "parseTime=true"))
	is.True(strings.Contains(dsn, "clientFoundRows=true"))

	mc, err := mysql.ParseDSN(dsn)
	is.NoErr(err)
	is.Equal(mc.Params["time_zone"], "'+00:00'") // session writes UTC
	is.Equal(mc.Loc, time.UTC)

	dsn, err = Config{
		Driver:   DriverPostgres,
		Host:     "db",
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		Name:     "hwadtdb",
	}.DSN()
	is.NoErr(err)
	is.Equal(dsn, "postgres://postgres:postgres@db:5432/hwadtdb?sslmode=disable&timezone=UTC")

	_, err = Config{Driver: DriverSQLite}.DSN()
	is.True(err != nil)

	_, err = Config{Driver: "oracle"}.DSN()
	is.True(err != nil)
}

func TestNewDatabaseUnknownDriver(t *testing.T) {
	is := is.New(t)
	_, err := NewDatabase(context.TODO(), Config{Driver: "invalid"}, nil)
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "unknown driver"))
}

func TestWrapErrorPassThrough(t *testing.T) {
	is := is.New(t)
	for _, e := range []error{
		fmt.Errorf("foo"),
		errors.New("bar"),
		sql.ErrNoRows,
		&mysql.MySQLError{Number: 1146, Message: "table doesn't exist"},
		&pq.Error{Code: "42P01"},
	} {
		is.Equal(WrapError(e), e)
	}
	is.NoErr(WrapError(nil))
}

func TestWrapErrorDuplicateKey(t *testing.T) {
	is := is.New(t)
	is.Equal(WrapError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrDuplicateKey)
	is.Equal(WrapError(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})), ErrDuplicateKey)
}

func TestWrapErrorSqliteConstraint(t *testing.T) {
	is := is.New(t)
	ctx := context.TODO()

	db, err := NewDatabase(ctx, Config{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "wrap.db"),
	}, nil)
	is.NoErr(err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	is.NoErr(err)
	_, err = db.ExecContext(ctx, `INSERT INTO t (id) VALUES (1)`)
	is.NoErr(err)
	_, err = db.ExecContext(ctx, `INSERT INTO t (id) VALUES (1)`)
	is.True(errors.Is(WrapError(err), ErrDuplicateKey))
}
