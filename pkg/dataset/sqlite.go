package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore persists samples in a SQLite database. Suitable for
// single-instance deployments that want queryable datasets surviving
// restarts.
//
// The store opens the database in WAL mode with a busy timeout for
// better behavior under concurrent writers.
type SQLiteStore struct {
	db         *sql.DB
	insertStmt *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns limits open connections. Default: 10
	MaxOpenConns int

	// MaxIdleConns limits idle connections. Default: 5
	MaxIdleConns int

	// BusyTimeout is how long to wait for locks. Default: 5s
	BusyTimeout time.Duration
}

// NewSQLiteStore opens the database, applies pragmas and creates the
// samples table if missing.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("dataset path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize dataset schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return store, nil
}

// initSchema creates the samples table if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	ddl := `
	CREATE TABLE IF NOT EXISTS samples (
		id TEXT PRIMARY KEY,
		schema_name TEXT NOT NULL,
		prompt TEXT NOT NULL,
		record TEXT NOT NULL,
		attempts INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_schema ON samples(schema_name);
	CREATE INDEX IF NOT EXISTS idx_samples_created_at ON samples(created_at);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// prepareStatements pre-compiles the hot-path statements.
func (s *SQLiteStore) prepareStatements() error {
	var err error
	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO samples (id, schema_name, prompt, record, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	return nil
}

// Write implements Store.
func (s *SQLiteStore) Write(ctx context.Context, sample *Sample) error {
	record, err := json.Marshal(sample.Record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = s.insertStmt.ExecContext(ctx,
		sample.ID,
		sample.Schema,
		sample.Prompt,
		string(record),
		sample.Attempts,
		sample.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.insertStmt != nil {
		s.insertStmt.Close()
	}
	return s.db.Close()
}
