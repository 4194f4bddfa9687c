package database

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver
)

// Supported driver names.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes how to reach the database.
type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	// Path is the database file, sqlite only.
	Path    string
	SSLMode string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the driver specific data source name.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, c.Port)
		mc.DBName = c.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		// CURRENT_TIMESTAMP must be written in the zone it is read back in
		mc.Params = map[string]string{"time_zone": "'+00:00'"}
		// rows affected must count matched rows, not changed rows
		mc.ClientFoundRows = true
		return mc.FormatDSN(), nil
	case DriverPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, c.Port),
			Path:     "/" + c.Name,
			RawQuery: url.Values{"sslmode": {sslMode}, "timezone": {"UTC"}}.Encode(),
		}
		return u.String(), nil
	case DriverSQLite:
		if c.Path == "" {
			return "", fmt.Errorf("sqlite: missing database path")
		}
		return c.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("unknown driver %q", c.Driver)
	}
}

// DB wraps sqlx.DB and traces queries through the given logger.
type DB struct {
	*sqlx.DB
	logger *slog.Logger
}

func NewDatabase(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.Driver == DriverSQLite {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}

	return &DB{DB: db, logger: logger}, nil
}
