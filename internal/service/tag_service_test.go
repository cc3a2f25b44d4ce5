package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/gin-blog/internal/model"
)

func TestTagService_AddTagsIdempotent(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p1 := env.createPost(t, "p1", "body", "")
	p2 := env.createPost(t, "p2", "body", "")

	tags, err := env.tags.AddTags(ctx, p1.ID, []string{"go", "go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, tagNames(tags))

	_, err = env.tags.AddTags(ctx, p1.ID, []string{"go"})
	require.NoError(t, err)
	_, err = env.tags.AddTags(ctx, p2.ID, []string{"go"})
	require.NoError(t, err)

	var tagRows, linkRows int64
	require.NoError(t, env.db.Model(&model.Tag{}).Count(&tagRows).Error)
	require.NoError(t, env.db.Model(&model.PostTag{}).Count(&linkRows).Error)
	assert.Equal(t, int64(1), tagRows)
	assert.Equal(t, int64(2), linkRows)

	_, err = env.tags.AddTags(ctx, "missing", []string{"go"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestTagService_RemoveTagScopedToPost(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p1 := env.createPost(t, "p1", "body", "go,web")
	p2 := env.createPost(t, "p2", "body", "go")

	require.NoError(t, env.tags.RemoveTag(ctx, p1.ID, "go"))

	left, err := env.tags.FindTagsForPost(ctx, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, tagNames(left))

	other, err := env.tags.FindTagsForPost(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, tagNames(other))

	assert.ErrorIs(t, env.tags.RemoveTag(ctx, p1.ID, "go"), ErrTagNotAssociated)
	assert.ErrorIs(t, env.tags.RemoveTag(ctx, p1.ID, "unknown"), ErrTagNotAssociated)
	assert.ErrorIs(t, env.tags.RemoveTag(ctx, "missing", "go"), ErrPostNotFound)
}

func TestTagService_RemoveTagRefreshesIndexAndCache(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.createPost(t, "Plain title", "plain body", "kubernetes")

	ids, err := env.index.Search(ctx, "kubernetes", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids)

	_, err = env.posts.Get(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, env.mr.Exists("post:"+p.ID))

	require.NoError(t, env.tags.RemoveTag(ctx, p.ID, "kubernetes"))
	assert.False(t, env.mr.Exists("post:"+p.ID))

	ids, err = env.index.Search(ctx, "kubernetes", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)

	got, err := env.posts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestTagService_FindPostsByTag(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	env.createPost(t, "a", "body", "go")
	env.createPost(t, "b", "body", "go")
	env.createPost(t, "c", "body", "go,web")
	env.createPost(t, "d", "body", "web")

	page, err := env.tags.FindPostsByTag(ctx, "go", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Posts, 2)

	page, err = env.tags.FindPostsByTag(ctx, "go", 2)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 1)

	_, err = env.tags.FindPostsByTag(ctx, "rust", 1)
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestTagService_ListCachedAndInvalidated(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.createPost(t, "a", "body", "go,web")
	env.createPost(t, "b", "body", "go")

	tags, err := env.tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "go", tags[0].Name)
	assert.Equal(t, int64(2), tags[0].PostCount)
	assert.Equal(t, int64(1), tags[1].PostCount)
	assert.True(t, env.mr.Exists("tags:all"))

	require.NoError(t, env.tags.RemoveTag(ctx, p.ID, "web"))
	assert.False(t, env.mr.Exists("tags:all"))

	tags, err = env.tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, int64(0), tags[1].PostCount)
}
