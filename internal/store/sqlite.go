// Package store persists the last successfully fetched models catalog in a
// local SQLite database.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roelfdiedericks/modelmeta/internal/catalog"
	. "github.com/roelfdiedericks/modelmeta/internal/logging"
	"github.com/roelfdiedericks/modelmeta/internal/paths"
)

const (
	keyConfig = "models_config_cache"
	keyTime   = "models_config_cache_time"

	dbOpenOptions = "?_journal_mode=WAL&_busy_timeout=5000"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore implements catalog.Store on a single kv table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the cache database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := paths.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+dbOpenOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	L_debug("store: cache database opened", "path", path)
	return &SQLiteStore{db: db}, nil
}

// Load returns the persisted catalog and its fetch time, or (nil, zero, nil)
// when nothing is persisted. Malformed entries are reported as errors; the
// engine treats them as absent.
func (s *SQLiteStore) Load() (*catalog.ModelsConfig, time.Time, error) {
	raw, ok, err := s.get(keyConfig)
	if err != nil || !ok {
		return nil, time.Time{}, err
	}

	tsRaw, ok, err := s.get(keyTime)
	if err != nil || !ok {
		return nil, time.Time{}, err
	}

	var cfg catalog.ModelsConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, time.Time{}, fmt.Errorf("malformed persisted catalog: %w", err)
	}

	ms, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("malformed persisted timestamp %q: %w", tsRaw, err)
	}

	return &cfg, time.UnixMilli(ms), nil
}

// Save writes the catalog and its fetch time, replacing any previous entry.
func (s *SQLiteStore) Save(cfg *catalog.ModelsConfig, fetchedAt time.Time) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}

	now := time.Now().UnixMilli()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`

	if _, err := tx.Exec(upsert, keyConfig, string(data), now); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	if _, err := tx.Exec(upsert, keyTime, strconv.FormatInt(fetchedAt.UnixMilli(), 10), now); err != nil {
		return fmt.Errorf("failed to save catalog timestamp: %w", err)
	}

	return tx.Commit()
}

// Purge removes the persisted catalog and its timestamp.
func (s *SQLiteStore) Purge() error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key IN (?, ?)", keyConfig, keyTime); err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}
