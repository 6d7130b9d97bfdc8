package kvstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const defaultDBPath = "shopdash.db"

// SQLiteStore keeps each collection as a JSON payload in a single slots
// table. It is the process-local equivalent of a per-origin key-value
// storage: durable across restarts, not coordinated across processes.
type SQLiteStore struct {
	db      *sql.DB
	mu      sync.Mutex
	path    string
	latency time.Duration
}

// NewSQLiteStore opens (creating if needed) the database at path and runs the
// schema migrations.
func NewSQLiteStore(path string, latency time.Duration) (*SQLiteStore, error) {
	if path == "" {
		path = defaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, path: path, latency: latency}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Load reads the payload for a collection slot.
func (s *SQLiteStore) Load(ctx context.Context, collection string) ([]byte, bool, error) {
	simulateLatency(s.latency)

	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM slots WHERE collection = ?`, collection,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load slot %q: %w", collection, err)
	}
	return payload, true, nil
}

// Save overwrites the collection slot with the payload.
func (s *SQLiteStore) Save(ctx context.Context, collection string, payload []byte) error {
	simulateLatency(s.latency)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (collection, payload) VALUES (?, ?)
		 ON CONFLICT(collection) DO UPDATE SET payload = excluded.payload`,
		collection, payload,
	)
	if err != nil {
		return fmt.Errorf("save slot %q: %w", collection, err)
	}
	return nil
}

// Path reports the database file backing the store.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
