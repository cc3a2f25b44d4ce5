package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Blog.PostsPerPage)
	assert.Equal(t, 20, cfg.Blog.MaxSearchResults)
	assert.Equal(t, 1048, cfg.Blog.DefaultSlugChars)
	assert.Equal(t, "admin@admin.net", cfg.Blog.AdminEmail)
	assert.Equal(t, "async", cfg.Search.Mode)
	assert.Equal(t, 5*time.Second, cfg.Search.JobTimeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_BLOG_POSTS_PER_PAGE", "5")
	t.Setenv("APP_BLOG_ADMIN_EMAIL", "me@example.com")
	t.Setenv("APP_SEARCH_MODE", "sync")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Blog.PostsPerPage)
	assert.Equal(t, "me@example.com", cfg.Blog.AdminEmail)
	assert.Equal(t, "sync", cfg.Search.Mode)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("APP_DATABASE_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}
