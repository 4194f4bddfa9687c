package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestLoadConfigDefaults(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfig(t.TempDir())
	is.NoErr(err)
	is.Equal(cfg.HTTP.Port, 8080)
	is.Equal(cfg.HTTP.Timeout, 10*time.Second)
	is.Equal(cfg.Database.Driver, "mysql")
	is.Equal(cfg.Cache.Driver, "noop")
	is.Equal(cfg.Tracing.ServiceName, "adt-service")
	is.Equal(cfg.Logger.Level, "info")
}

func TestLoadConfigFile(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	data := []byte(`
http:
  port: 9000
  timeout: 3s
database:
  driver: sqlite
  path: /tmp/adt.db
cache:
  driver: lru
  ttl: 1m
tracing:
  service_name: adt-test
`)
	is.NoErr(os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o600))

	cfg, err := LoadConfig(dir)
	is.NoErr(err)
	is.Equal(cfg.HTTP.Port, 9000)
	is.Equal(cfg.HTTP.Timeout, 3*time.Second)
	is.Equal(cfg.Database.Driver, "sqlite")
	is.Equal(cfg.Database.Path, "/tmp/adt.db")
	is.Equal(cfg.Cache.Driver, "lru")
	is.Equal(cfg.Cache.TTL, time.Minute)
	is.Equal(cfg.Tracing.ServiceName, "adt-test")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	is := is.New(t)

	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CACHE_DRIVER", "redis")

	cfg, err := LoadConfig(t.TempDir())
	is.NoErr(err)
	is.Equal(cfg.Database.Host, "db.internal")
	is.Equal(cfg.HTTP.Port, 9090)
	is.Equal(cfg.Cache.Driver, "redis")
}

func TestLoadConfigInvalidFile(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	is.NoErr(os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("http: [port"), 0o600))

	_, err := LoadConfig(dir)
	is.True(err != nil)
}
