package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ZaguanLabs/wordcache"
)

// Driver names understood by SQLStore.
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

const (
	sqliteSchema = `CREATE TABLE IF NOT EXISTS translations (
	source_text     TEXT NOT NULL,
	study_lang      TEXT NOT NULL,
	native_lang     TEXT NOT NULL,
	translated_text TEXT NOT NULL,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (source_text, study_lang, native_lang)
)`

	mysqlSchema = `CREATE TABLE IF NOT EXISTS translations (
	source_text     VARCHAR(255) NOT NULL,
	study_lang      VARCHAR(16) NOT NULL,
	native_lang     VARCHAR(16) NOT NULL,
	translated_text TEXT NOT NULL,
	created_at      DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	PRIMARY KEY (source_text, study_lang, native_lang)
) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`

	postgresSchema = `CREATE TABLE IF NOT EXISTS translations (
	source_text     TEXT NOT NULL,
	study_lang      TEXT NOT NULL,
	native_lang     TEXT NOT NULL,
	translated_text TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (source_text, study_lang, native_lang)
)`

	selectTextQuery = `SELECT translated_text FROM translations
WHERE source_text = ? AND study_lang = ? AND native_lang = ? LIMIT 1`

	selectEntryQuery = `SELECT source_text, study_lang, native_lang, translated_text, created_at FROM translations
WHERE source_text = ? AND study_lang = ? AND native_lang = ? LIMIT 1`

	selectEntriesQuery = `SELECT source_text, study_lang, native_lang, translated_text, created_at FROM translations
ORDER BY study_lang, native_lang, source_text`

	countQuery = `SELECT COUNT(*) FROM translations`

	insertPrefix = `INSERT INTO translations (source_text, study_lang, native_lang, translated_text, created_at)
VALUES (?, ?, ?, ?, ?)`

	upsertOnConflict = insertPrefix + `
ON CONFLICT (source_text, study_lang, native_lang)
DO UPDATE SET translated_text = excluded.translated_text, created_at = excluded.created_at`

	upsertOnDuplicateKey = insertPrefix + `
ON DUPLICATE KEY UPDATE translated_text = VALUES(translated_text), created_at = VALUES(created_at)`
)

type dialect struct {
	schema string
	upsert string
}

var dialects = map[string]dialect{
	DriverSQLite:   {schema: sqliteSchema, upsert: upsertOnConflict},
	DriverMySQL:    {schema: mysqlSchema, upsert: upsertOnDuplicateKey},
	DriverPostgres: {schema: postgresSchema, upsert: upsertOnConflict},
}

// entryRow is the database representation of a cache entry.
type entryRow struct {
	SourceText     string    `db:"source_text"`
	StudyLang      string    `db:"study_lang"`
	NativeLang     string    `db:"native_lang"`
	TranslatedText string    `db:"translated_text"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r entryRow) toEntry() wordcache.CacheEntry {
	return wordcache.CacheEntry{
		Key:            wordcache.NewKey(r.SourceText, r.StudyLang, r.NativeLang),
		TranslatedText: r.TranslatedText,
		CreatedAt:      r.CreatedAt,
	}
}

// SQLStore is a CacheStore backed by a single SQL table keyed on
// (source_text, study_lang, native_lang). Every call round-trips to the database.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
	opts    options
}

// NewSQLStore wraps db and ensures the translations table exists.
// The dialect is chosen from db.DriverName().
func NewSQLStore(ctx context.Context, db *sqlx.DB, opts ...Option) (*SQLStore, error) {
	d, ok := dialects[db.DriverName()]
	if !ok {
		return nil, fmt.Errorf("unsupported SQL driver %q", db.DriverName())
	}

	s := &SQLStore{
		db:      db,
		dialect: d,
		opts:    newOptions(opts),
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the translations table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return storageError("ensure_schema", wordcache.Key{}, err)
	}
	return nil
}

// Get returns the translation stored for key.
func (s *SQLStore) Get(ctx context.Context, key wordcache.Key) (string, bool, error) {
	var text string
	err := s.db.GetContext(ctx, &text, s.db.Rebind(selectTextQuery), key.SourceText, key.StudyLang, key.NativeLang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storageError("get", key, err)
	}
	return text, true, nil
}

// Put inserts the translation for key, or replaces its text and timestamp.
func (s *SQLStore) Put(ctx context.Context, key wordcache.Key, translatedText string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(s.dialect.upsert),
		key.SourceText, key.StudyLang, key.NativeLang, translatedText, s.opts.now())
	if err != nil {
		return storageError("put", key, err)
	}
	return nil
}

// Entry returns the full entry stored for key.
func (s *SQLStore) Entry(ctx context.Context, key wordcache.Key) (wordcache.CacheEntry, bool, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(selectEntryQuery), key.SourceText, key.StudyLang, key.NativeLang)
	if errors.Is(err, sql.ErrNoRows) {
		return wordcache.CacheEntry{}, false, nil
	}
	if err != nil {
		return wordcache.CacheEntry{}, false, storageError("get", key, err)
	}
	return row.toEntry(), true, nil
}

// Entries returns all entries ordered by language pair and source text.
func (s *SQLStore) Entries(ctx context.Context) ([]wordcache.CacheEntry, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, selectEntriesQuery); err != nil {
		return nil, storageError("list", wordcache.Key{}, err)
	}

	entries := make([]wordcache.CacheEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.toEntry()
	}
	return entries, nil
}

// Len returns the number of stored entries.
func (s *SQLStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, countQuery); err != nil {
		return 0, storageError("count", wordcache.Key{}, err)
	}
	return n, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// OpenSQLite opens a SQLite database file. An in-memory database is limited
// to one connection so every query sees the same data.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverSQLite, path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// MySQLConfig holds MySQL connection settings.
type MySQLConfig struct {
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Database string            `mapstructure:"database"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	TLS      bool              `mapstructure:"tls"`
	Params   map[string]string `mapstructure:"params"`
}

// FormatDSN builds the driver DSN. parseTime is always enabled so created_at
// scans into time.Time.
func (c MySQLConfig) FormatDSN() string {
	mysqlCfg := mysql.NewConfig()
	mysqlCfg.User = c.Username
	mysqlCfg.Passwd = c.Password
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	mysqlCfg.DBName = c.Database
	mysqlCfg.ParseTime = true
	if c.TLS {
		mysqlCfg.TLSConfig = "true"
	}
	if len(c.Params) > 0 {
		mysqlCfg.Params = c.Params
	}
	return mysqlCfg.FormatDSN()
}

// OpenMySQL opens a MySQL connection pool.
func OpenMySQL(cfg MySQLConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverMySQL, cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql database: %w", err)
	}
	return db, nil
}

// OpenPostgres opens a PostgreSQL connection pool from a lib/pq DSN or URL.
func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	return db, nil
}

var (
	_ ClosableStore = (*SQLStore)(nil)
	_ Lister        = (*SQLStore)(nil)
)
