package querycache_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dejobratic/shopdash/internal/querycache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutatorDo(t *testing.T) {
	ctx := context.Background()

	t.Run("reports pending then succeeded and returns the result", func(t *testing.T) {
		cache := newCache(t, time.Minute)
		mutator := querycache.NewMutator(cache, nil, nil)

		var statuses []querycache.MutationStatus
		result, err := mutator.Do(ctx, querycache.MutationSpec{
			Name: "createProduct",
			Op: func(ctx context.Context) (any, error) {
				return "created", nil
			},
			OnStatus: func(status querycache.MutationStatus) {
				statuses = append(statuses, status)
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "created", result)
		assert.Equal(t, []querycache.MutationStatus{
			querycache.MutationPending,
			querycache.MutationSucceeded,
		}, statuses)
	})

	t.Run("invalidates the affected keys on success", func(t *testing.T) {
		cache := newCache(t, time.Hour)
		mutator := querycache.NewMutator(cache, nil, nil)

		var fetches atomic.Int64
		_, err := cache.Get(ctx, querycache.ProductsKey(), countingFetcher(&fetches, "before"))
		require.NoError(t, err)

		_, err = mutator.Do(ctx, querycache.MutationSpec{
			Name: "createProduct",
			Op: func(ctx context.Context) (any, error) {
				return "created", nil
			},
			Keys: func(result any) []querycache.Key {
				return []querycache.Key{querycache.ProductsKey()}
			},
		})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return fetches.Load() == 2
		}, time.Second, time.Millisecond)
	})

	t.Run("derives detail keys from the operation result", func(t *testing.T) {
		cache := newCache(t, time.Hour)
		mutator := querycache.NewMutator(cache, nil, nil)

		var fetches atomic.Int64
		_, err := cache.Get(ctx, querycache.ProductKey("p-1"), countingFetcher(&fetches, "before"))
		require.NoError(t, err)

		_, err = mutator.Do(ctx, querycache.MutationSpec{
			Name: "updateProduct",
			Op: func(ctx context.Context) (any, error) {
				return "p-1", nil
			},
			Keys: func(result any) []querycache.Key {
				return []querycache.Key{querycache.ProductKey(result.(string))}
			},
		})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return fetches.Load() == 2
		}, time.Second, time.Millisecond)
	})

	t.Run("a failed operation surfaces its error and leaves the cache untouched", func(t *testing.T) {
		cache := newCache(t, time.Hour)
		mutator := querycache.NewMutator(cache, nil, nil)

		var fetches atomic.Int64
		_, err := cache.Get(ctx, querycache.ProductsKey(), countingFetcher(&fetches, "before"))
		require.NoError(t, err)

		opErr := errors.New("write rejected")
		var statuses []querycache.MutationStatus
		result, err := mutator.Do(ctx, querycache.MutationSpec{
			Name: "createProduct",
			Op: func(ctx context.Context) (any, error) {
				return nil, opErr
			},
			Keys: func(result any) []querycache.Key {
				return []querycache.Key{querycache.ProductsKey()}
			},
			OnStatus: func(status querycache.MutationStatus) {
				statuses = append(statuses, status)
			},
		})

		require.ErrorIs(t, err, opErr)
		assert.Nil(t, result)
		assert.Equal(t, []querycache.MutationStatus{
			querycache.MutationPending,
			querycache.MutationFailed,
		}, statuses)

		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, int64(1), fetches.Load(), "failed mutation must not trigger a refetch")
		snapshot, ok := cache.Peek(querycache.ProductsKey())
		require.True(t, ok)
		assert.Equal(t, "before", snapshot.Data)
	})
}
