package querycache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle position of one query entry. Success and Error
// re-enter Loading on refetch while the entry keeps exposing its last-known
// data (stale-while-revalidate).
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Fetcher produces fresh data for a query key.
type Fetcher func(ctx context.Context) (any, error)

// Snapshot is the externally visible state of a query entry at one moment.
type Snapshot struct {
	Key       Key
	State     State
	Data      any
	Err       error
	FetchedAt time.Time
	Stale     bool
}

const (
	defaultStaleAfter = 5 * time.Minute
	defaultMaxEntries = 256
	subscriberBuffer  = 8
)

// Cache is a process-wide query cache keyed by logical query identity.
// Concurrent reads of one key share a single underlying fetch; reads past the
// staleness window return cached data immediately and revalidate in the
// background. Entries live in a bounded LRU so detail keys cannot accumulate
// without limit.
type Cache struct {
	mu         sync.Mutex
	staleAfter time.Duration
	entries    *lru.Cache[string, *entry]
	group      singleflight.Group
	logger     *slog.Logger
	metrics    *Metrics
	nextSubID  int
}

type entry struct {
	key       Key
	fetch     Fetcher
	state     State
	data      any
	err       error
	fetchedAt time.Time
	subs      map[int]chan Snapshot
}

// New constructs a cache. Zero staleAfter and maxEntries select defaults;
// metrics may be nil.
func New(staleAfter time.Duration, maxEntries int, logger *slog.Logger, metrics *Metrics) (*Cache, error) {
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	c := &Cache{
		staleAfter: staleAfter,
		logger:     logger,
		metrics:    metrics,
	}

	entries, err := lru.NewWithEvict(maxEntries, func(_ string, ent *entry) {
		for _, ch := range ent.subs {
			close(ch)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create cache entry table: %w", err)
	}
	c.entries = entries

	return c, nil
}

// Get returns data for the key. A fresh entry is served directly; a stale one
// is served immediately while a background refetch runs; anything else blocks
// on the fetch, deduplicated with any concurrent read of the same key. A
// caller whose context ends mid-fetch gets the context error while the fetch
// itself runs to completion and still populates the entry.
func (c *Cache) Get(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	ent := c.entry(key)
	ent.fetch = fetch

	if ent.state == StateSuccess {
		data := ent.data
		stale := c.staleLocked(ent)
		c.mu.Unlock()

		if !stale {
			c.metrics.RecordRead(ctx, "hit")
			return data, nil
		}

		c.metrics.RecordRead(ctx, "stale")
		c.refetch(key)
		return data, nil
	}

	if ent.state == StateLoading && ent.data != nil {
		// A revalidation is already in flight; keep serving the
		// last-known data instead of blocking on it.
		data := ent.data
		c.mu.Unlock()
		c.metrics.RecordRead(ctx, "stale")
		return data, nil
	}
	c.mu.Unlock()

	c.metrics.RecordRead(ctx, "miss")
	return c.fetchShared(ctx, key)
}

// Invalidate marks entries stale and triggers background refetches, so
// dependent reads observe fresh data. Unknown keys are ignored.
func (c *Cache) Invalidate(keys ...Key) {
	for _, key := range keys {
		c.mu.Lock()
		ent, ok := c.entries.Get(key.String())
		if !ok {
			c.mu.Unlock()
			continue
		}
		ent.fetchedAt = time.Time{}
		hasFetcher := ent.fetch != nil
		c.mu.Unlock()

		c.metrics.RecordInvalidation(context.Background())
		if hasFetcher {
			c.refetch(key)
		}
	}
}

// Subscribe registers an observer for a key and returns its snapshot channel
// plus a cancel func. The current snapshot is delivered immediately; later
// notifications are dropped rather than blocking when the observer falls
// behind or disappears.
func (c *Cache) Subscribe(key Key) (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := c.entry(key)
	id := c.nextSubID
	c.nextSubID++

	ch := make(chan Snapshot, subscriberBuffer)
	ent.subs[id] = ch
	ch <- c.snapshotLocked(ent)

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if e, ok := c.entries.Get(key.String()); ok {
			delete(e.subs, id)
		}
	}
	return ch, cancel
}

// Peek reports the current snapshot without touching fetch state.
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries.Get(key.String())
	if !ok {
		return Snapshot{}, false
	}
	return c.snapshotLocked(ent), true
}

func (c *Cache) entry(key Key) *entry {
	str := key.String()
	if ent, ok := c.entries.Get(str); ok {
		return ent
	}
	ent := &entry{key: key, state: StateIdle, subs: make(map[int]chan Snapshot)}
	c.entries.Add(str, ent)
	return ent
}

func (c *Cache) staleLocked(ent *entry) bool {
	return ent.fetchedAt.IsZero() || time.Since(ent.fetchedAt) >= c.staleAfter
}

func (c *Cache) snapshotLocked(ent *entry) Snapshot {
	return Snapshot{
		Key:       ent.key,
		State:     ent.state,
		Data:      ent.data,
		Err:       ent.err,
		FetchedAt: ent.fetchedAt,
		Stale:     ent.state == StateSuccess && c.staleLocked(ent),
	}
}

// fetchShared joins (or starts) the in-flight fetch for the key. The fetch
// itself is detached from the caller's context so one canceled consumer
// cannot fail the read for everyone sharing it.
func (c *Cache) fetchShared(ctx context.Context, key Key) (any, error) {
	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.runFetch(context.WithoutCancel(ctx), key)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.RecordDedup(ctx)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		// Consumer went away; the fetch completes on its own and its
		// result is simply discarded here.
		return nil, ctx.Err()
	}
}

func (c *Cache) refetch(key Key) {
	go func() {
		ch := c.group.DoChan(key.String(), func() (any, error) {
			c.metrics.RecordRefetch(context.Background())
			return c.runFetch(context.Background(), key)
		})
		<-ch
	}()
}

func (c *Cache) runFetch(ctx context.Context, key Key) (any, error) {
	c.mu.Lock()
	ent := c.entry(key)
	fetch := ent.fetch
	ent.state = StateLoading
	c.notifyLocked(ent)
	c.mu.Unlock()

	if fetch == nil {
		return nil, fmt.Errorf("no fetcher recorded for query key %q", key)
	}

	data, err := fetch(ctx)

	c.mu.Lock()
	ent = c.entry(key)
	if err != nil {
		ent.state = StateError
		ent.err = err
		if c.logger != nil {
			c.logger.WarnContext(ctx, "query fetch failed", "key", key.String(), "error", err)
		}
	} else {
		ent.state = StateSuccess
		ent.data = data
		ent.err = nil
		ent.fetchedAt = time.Now()
	}
	c.notifyLocked(ent)
	c.mu.Unlock()

	return data, err
}

func (c *Cache) notifyLocked(ent *entry) {
	if len(ent.subs) == 0 {
		return
	}
	snapshot := c.snapshotLocked(ent)
	for _, ch := range ent.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// GetAs is a typed wrapper over Cache.Get.
func GetAs[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	data, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	if data == nil {
		return zero, nil
	}

	typed, ok := data.(T)
	if !ok {
		return zero, fmt.Errorf("query key %q holds %T, not %T", key, data, zero)
	}
	return typed, nil
}
