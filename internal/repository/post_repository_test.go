package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ListOrdersByTimestampDesc(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()

	base := time.Now()
	seedPost(t, repo, "a", base.Add(-time.Hour))
	seedPost(t, repo, "b", base)
	seedPost(t, repo, "c", base.Add(-2*time.Hour))

	list, total, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}

func TestPostRepository_UpdateAndDelete(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()

	p := seedPost(t, repo, "p1", time.Now())
	p.Title = "changed"
	p.CommentsEnabled = false
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Title)
	assert.False(t, got.CommentsEnabled)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), ErrNotFound)
}
