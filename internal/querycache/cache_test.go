package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dejobratic/shopdash/internal/querycache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, staleAfter time.Duration) *querycache.Cache {
	t.Helper()
	cache, err := querycache.New(staleAfter, 0, nil, nil)
	require.NoError(t, err)
	return cache
}

// countingFetcher returns the given data and counts its invocations.
func countingFetcher(count *atomic.Int64, data any) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		count.Add(1)
		return data, nil
	}
}

func TestCacheGet(t *testing.T) {
	ctx := context.Background()

	t.Run("first read runs the fetcher", func(t *testing.T) {
		cache := newCache(t, time.Minute)
		var count atomic.Int64

		data, err := cache.Get(ctx, querycache.ProductsKey(), countingFetcher(&count, "v1"))

		require.NoError(t, err)
		assert.Equal(t, "v1", data)
		assert.Equal(t, int64(1), count.Load())
	})

	t.Run("fresh entry is served without refetching", func(t *testing.T) {
		cache := newCache(t, time.Minute)
		var count atomic.Int64
		fetch := countingFetcher(&count, "v1")

		_, err := cache.Get(ctx, querycache.ProductsKey(), fetch)
		require.NoError(t, err)

		data, err := cache.Get(ctx, querycache.ProductsKey(), fetch)
		require.NoError(t, err)
		assert.Equal(t, "v1", data)
		assert.Equal(t, int64(1), count.Load())
	})

	t.Run("stale entry is served immediately and revalidated in the background", func(t *testing.T) {
		cache := newCache(t, time.Millisecond)
		var count atomic.Int64
		var value atomic.Value
		value.Store("v1")
		fetch := func(ctx context.Context) (any, error) {
			count.Add(1)
			return value.Load(), nil
		}

		_, err := cache.Get(ctx, querycache.ProductsKey(), fetch)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		value.Store("v2")

		data, err := cache.Get(ctx, querycache.ProductsKey(), fetch)
		require.NoError(t, err)
		assert.Equal(t, "v1", data, "stale read should serve the last-known data")

		require.Eventually(t, func() bool {
			snapshot, ok := cache.Peek(querycache.ProductsKey())
			return ok && snapshot.Data == "v2"
		}, time.Second, time.Millisecond)
		assert.Equal(t, int64(2), count.Load())
	})

	t.Run("concurrent reads of one key share a single fetch", func(t *testing.T) {
		cache := newCache(t, time.Minute)
		var count atomic.Int64
		gate := make(chan struct{})
		fetch := func(ctx context.Context) (any, error) {
			count.Add(1)
			<-gate
			return "shared", nil
		}

		const readers = 8
		var wg sync.WaitGroup
		results := make([]any, readers)
		errs := make([]error, readers)
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = cache.Get(ctx, querycache.ProductsKey(), fetch)
			}(i)
		}

		require.Eventually(t, func() bool {
			return count.Load() >= 1
		}, time.Second, time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		close(gate)
		wg.Wait()

		assert.Equal(t, int64(1), count.Load())
		for i := range results {
			require.NoError(t, errs[i])
			assert.Equal(t, "shared", results[i])
		}
	})

	t.Run("failed fetch surfaces the error and records the error state", func(t *testing.T) {
		cache := newCache(t, time.Minute)
		fetchErr := errors.New("backend unavailable")

		_, err := cache.Get(ctx, querycache.OrdersKey(), func(ctx context.Context) (any, error) {
			return nil, fetchErr
		})

		require.ErrorIs(t, err, fetchErr)
		snapshot, ok := cache.Peek(querycache.OrdersKey())
		require.True(t, ok)
		assert.Equal(t, querycache.StateError, snapshot.State)
		assert.ErrorIs(t, snapshot.Err, fetchErr)
	})

	t.Run("canceled consumer gets the context error while the fetch completes", func(t *testing.T) {
		cache := newCache(t, time.Minute)
		gate := make(chan struct{})
		fetch := func(ctx context.Context) (any, error) {
			<-gate
			return "late", nil
		}

		cancelCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := cache.Get(cancelCtx, querycache.ProductsKey(), fetch)
			done <- err
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()
		require.ErrorIs(t, <-done, context.Canceled)

		close(gate)
		require.Eventually(t, func() bool {
			snapshot, ok := cache.Peek(querycache.ProductsKey())
			return ok && snapshot.State == querycache.StateSuccess && snapshot.Data == "late"
		}, time.Second, time.Millisecond)
	})
}

func TestCacheInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the entry stale and refetches in the background", func(t *testing.T) {
		cache := newCache(t, time.Hour)
		var count atomic.Int64

		_, err := cache.Get(ctx, querycache.ProductsKey(), countingFetcher(&count, "v1"))
		require.NoError(t, err)

		cache.Invalidate(querycache.ProductsKey())

		require.Eventually(t, func() bool {
			return count.Load() == 2
		}, time.Second, time.Millisecond)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		cache := newCache(t, time.Hour)

		cache.Invalidate(querycache.ProductKey("never-fetched"))

		_, ok := cache.Peek(querycache.ProductKey("never-fetched"))
		assert.False(t, ok)
	})
}

func TestCacheSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers the current snapshot immediately", func(t *testing.T) {
		cache := newCache(t, time.Minute)

		ch, cancel := cache.Subscribe(querycache.OrdersKey())
		defer cancel()

		snapshot := <-ch
		assert.Equal(t, querycache.StateIdle, snapshot.State)
	})

	t.Run("observes loading then success on a fetch", func(t *testing.T) {
		cache := newCache(t, time.Minute)

		ch, cancel := cache.Subscribe(querycache.ProductsKey())
		defer cancel()
		<-ch

		_, err := cache.Get(ctx, querycache.ProductsKey(), func(ctx context.Context) (any, error) {
			return "v1", nil
		})
		require.NoError(t, err)

		first := <-ch
		assert.Equal(t, querycache.StateLoading, first.State)
		second := <-ch
		assert.Equal(t, querycache.StateSuccess, second.State)
		assert.Equal(t, "v1", second.Data)
	})

	t.Run("canceled subscriber stops receiving", func(t *testing.T) {
		cache := newCache(t, time.Minute)

		ch, cancel := cache.Subscribe(querycache.ProductsKey())
		<-ch
		cancel()

		_, err := cache.Get(ctx, querycache.ProductsKey(), func(ctx context.Context) (any, error) {
			return "v1", nil
		})
		require.NoError(t, err)

		select {
		case snapshot, ok := <-ch:
			if ok {
				t.Fatalf("expected no notification, got %+v", snapshot)
			}
		default:
		}
	})
}

func TestGetAs(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the typed result", func(t *testing.T) {
		cache := newCache(t, time.Minute)

		data, err := querycache.GetAs(ctx, cache, querycache.ProductsKey(), func(ctx context.Context) ([]string, error) {
			return []string{"a", "b"}, nil
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, data)
	})

	t.Run("nil data yields the zero value", func(t *testing.T) {
		cache := newCache(t, time.Minute)

		data, err := querycache.GetAs(ctx, cache, querycache.ProductKey("missing"), func(ctx context.Context) (*struct{ Name string }, error) {
			return nil, nil
		})

		require.NoError(t, err)
		assert.Nil(t, data)
	})
}
