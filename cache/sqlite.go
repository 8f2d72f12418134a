package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a file-backed cache that survives restarts.
type SQLite struct {
	db *sql.DB

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewSQLite opens (or creates) the cache database at path and ensures the
// schema exists. The special path ":memory:" keeps everything in memory.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "data/cache.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	// A single connection keeps ":memory:" databases from splitting per conn.
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db, stop: make(chan struct{})}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: sqlite schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS responses (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_expires ON responses(expires_at);
`)
	return err
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM responses WHERE key = ? AND expires_at > ?`,
		key, time.Now().UnixNano(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (key, value, expires_at) VALUES (?, ?, ?)`,
		key, value, time.Now().Add(ttl).UnixNano(),
	)
	return err
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE key = ?`, key)
	return err
}

// Purge removes expired rows and returns how many were deleted.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE expires_at <= ?`, time.Now().UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeEvery runs Purge on a ticker until Close. Expired rows are never
// served, so this only bounds the size of the file.
func (s *SQLite) PurgeEvery(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.Purge(context.Background())
			}
		}
	}()
}

// Close stops the purge loop and closes the underlying database connection.
func (s *SQLite) Close() error {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.db.Close()
}
