package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexer_EventuallyConsistent(t *testing.T) {
	idx := setupTestIndex(t)
	x := NewIndexer(idx, IndexerOptions{Workers: 2, QueueSize: 16, JobTimeout: time.Second})
	stop := x.Start()
	defer stop(context.Background())

	x.Upsert(&PostDocument{ID: "p1", Title: "eventually searchable"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, x.Sync(ctx))

	ids, err := idx.Search(context.Background(), "searchable", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	x.Remove("p1")
	require.NoError(t, x.Sync(ctx))
	ids, err = idx.Search(context.Background(), "searchable", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndexer_InlineAppliesImmediately(t *testing.T) {
	idx := setupTestIndex(t)
	x := NewIndexer(idx, IndexerOptions{Inline: true})
	_ = x.Start()

	x.Upsert(&PostDocument{ID: "p1", Title: "inline"})

	ids, err := idx.Search(context.Background(), "inline", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
}

func TestIndexer_DropsWhenQueueFull(t *testing.T) {
	idx := setupTestIndex(t)
	// 未启动 worker，队列容量 1
	x := NewIndexer(idx, IndexerOptions{Workers: 1, QueueSize: 1})

	x.Upsert(&PostDocument{ID: "a", Title: "a"})
	x.Upsert(&PostDocument{ID: "b", Title: "b"})

	assert.Equal(t, 1, x.QueueLen())

	stop := x.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, x.Sync(ctx))
	require.NoError(t, stop(ctx))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndexer_SyncHonoursContext(t *testing.T) {
	idx := setupTestIndex(t)
	x := NewIndexer(idx, IndexerOptions{QueueSize: 4})
	x.Upsert(&PostDocument{ID: "a", Title: "never applied"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, x.Sync(ctx), context.DeadlineExceeded)
}

func TestIndexer_UpsertThenRemoveLeavesNothing(t *testing.T) {
	idx := setupTestIndex(t)
	x := NewIndexer(idx, IndexerOptions{Workers: 4, QueueSize: 4096, JobTimeout: 5 * time.Second})
	stop := x.Start()
	defer stop(context.Background())

	const n = 500
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		x.Upsert(&PostDocument{ID: id, Title: "ephemeral"})
		x.Remove(id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, x.Sync(ctx))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIndexer_LatestUpsertWins(t *testing.T) {
	idx := setupTestIndex(t)
	x := NewIndexer(idx, IndexerOptions{Workers: 4, QueueSize: 4096, JobTimeout: 5 * time.Second})
	stop := x.Start()
	defer stop(context.Background())

	const n = 300
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		x.Upsert(&PostDocument{ID: id, Title: "superseded"})
		x.Remove(id)
		x.Upsert(&PostDocument{ID: id, Title: "draft"})
		x.Upsert(&PostDocument{ID: id, Title: "published"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, x.Sync(ctx))

	for _, stale := range []string{"superseded", "draft"} {
		ids, err := idx.Search(context.Background(), stale, n)
		require.NoError(t, err)
		assert.Empty(t, ids, stale)
	}
	ids, err := idx.Search(context.Background(), "published", n)
	require.NoError(t, err)
	assert.Len(t, ids, n)
}

func TestIndexer_SameIDSameShard(t *testing.T) {
	x := NewIndexer(nil, IndexerOptions{Workers: 8, QueueSize: 64})
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("post-%d", i)
		assert.Equal(t, x.shardFor(id), x.shardFor(id))
	}
}
