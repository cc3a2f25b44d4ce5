package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/cache"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/search"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

const testAdminEmail = "admin@example.com"

type testEnv struct {
	db    *gorm.DB
	index *search.Index
	mr    *miniredis.Miniredis
	links repository.PostTagRepository

	posts    PostService
	tags     TagService
	comments CommentService
	search   SearchService
	users    UserService
}

func testBlogConfig() config.BlogConfig {
	return config.BlogConfig{
		AdminEmail:       testAdminEmail,
		PostsPerPage:     2,
		CommentsPerPage:  2,
		MaxSearchResults: 20,
		DefaultSlugChars: 10,
	}
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "blog.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	idx, err := search.Open(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	indexer := search.NewIndexer(idx, search.IndexerOptions{Inline: true})

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.New(client, time.Minute)

	cfg := testBlogConfig()
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	linkRepo := repository.NewPostTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)

	return &testEnv{
		db:       db,
		index:    idx,
		mr:       mr,
		links:    linkRepo,
		posts:    NewPostService(db, postRepo, tagRepo, linkRepo, commentRepo, indexer, c, cfg),
		tags:     NewTagService(db, postRepo, tagRepo, linkRepo, indexer, c, cfg),
		comments: NewCommentService(postRepo, commentRepo, cfg),
		search:   NewSearchService(idx, postRepo, linkRepo, cfg),
		users:    NewUserService(userRepo, auth.NewTokenIssuer("test-secret", time.Hour, "gin-blog"), cfg),
	}
}

func (e *testEnv) createPost(t *testing.T, title, body, tags string) *model.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), "author-1", PostInput{Title: title, Body: body, Tags: tags})
	require.NoError(t, err)
	return p
}

func tagNames(tags []model.Tag) []string {
	names := make([]string, len(tags))
	for i, tg := range tags {
		names[i] = tg.Name
	}
	return names
}
