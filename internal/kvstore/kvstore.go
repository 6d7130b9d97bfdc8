package kvstore

import (
	"context"
	"log/slog"
	"time"
)

// Store persists one JSON-serialized entity collection per named slot.
// Every Save fully overwrites the slot; there are no partial updates.
type Store interface {
	// Load returns the slot payload. A missing slot is reported with
	// ok=false and a nil error.
	Load(ctx context.Context, collection string) (payload []byte, ok bool, err error)
	// Save overwrites the slot with the given payload.
	Save(ctx context.Context, collection string, payload []byte) error
}

// Config carries the knobs for opening a store.
type Config struct {
	// Path is the SQLite database file backing the durable store.
	Path string
	// SimLatency is slept before every Load/Save to mimic the latency of a
	// remote backend. Zero disables it.
	SimLatency time.Duration
}

// Open returns a durable SQLite-backed store, or an in-memory store when the
// durable backend cannot be opened. The fallback is logged, never fatal; a
// process running on the fallback simply loses its data on exit.
func Open(cfg Config, logger *slog.Logger) Store {
	store, err := NewSQLiteStore(cfg.Path, cfg.SimLatency)
	if err != nil {
		logger.Warn("durable store unavailable, falling back to in-memory store",
			"path", cfg.Path, "error", err)
		return NewMemoryStore(cfg.SimLatency)
	}
	return store
}

func simulateLatency(d time.Duration) {
	// In-flight store operations always run to completion, so the delay
	// deliberately ignores context cancellation.
	if d > 0 {
		time.Sleep(d)
	}
}
