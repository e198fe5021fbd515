package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// StoreConfig selects and configures a store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite mysql postgres redis memory"`

	Path  string      `mapstructure:"path"`  // sqlite database file
	DSN   string      `mapstructure:"dsn"`   // postgres DSN or URL
	MySQL MySQLConfig `mapstructure:"mysql"` // mysql connection settings
	Redis RedisConfig `mapstructure:"redis"` // redis connection settings

	MaxOpenConns    int `mapstructure:"max_open_conns"`
	MaxIdleConns    int `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime_seconds"`
}

// Open creates the store described by cfg. The returned store owns its
// connection; callers release it with Close.
func Open(ctx context.Context, cfg StoreConfig, opts ...Option) (ClosableStore, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(opts...), nil
	case "redis":
		return NewRedisStore(ctx, cfg.Redis, opts...)
	case "sqlite", "mysql", "postgres":
		db, err := openSQL(cfg)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLStore(ctx, db, opts...)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openSQL(cfg StoreConfig) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error
	switch cfg.Driver {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "translations.db"
		}
		db, err = OpenSQLite(path)
	case "mysql":
		db, err = OpenMySQL(cfg.MySQL)
	case "postgres":
		db, err = OpenPostgres(cfg.DSN)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}
