package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/api/handler"
	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/search"
	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *gin.Engine
}

func setupServer(t *testing.T) *testServer {
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

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode, RateLimit: 100, RateBurst: 100},
		Blog: config.BlogConfig{
			AdminEmail:       "admin@example.com",
			PostsPerPage:     20,
			CommentsPerPage:  2,
			MaxSearchResults: 20,
			DefaultSlugChars: 1048,
		},
	}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour, "gin-blog")

	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	linkRepo := repository.NewPostTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	h := handler.NewHandler(
		service.NewPostService(db, postRepo, tagRepo, linkRepo, commentRepo, indexer, nil, cfg.Blog),
		service.NewTagService(db, postRepo, tagRepo, linkRepo, indexer, nil, cfg.Blog),
		service.NewCommentService(postRepo, commentRepo, cfg.Blog),
		service.NewSearchService(idx, postRepo, linkRepo, cfg.Blog),
		service.NewUserService(repository.NewUserRepository(db), tokens, cfg.Blog),
	)
	engine, err := Setup(cfg, h, tokens)
	require.NoError(t, err)
	return &testServer{t: t, engine: engine}
}

func (s *testServer) do(method, path string, body any, token string) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (s *testServer) login(email, username string) string {
	s.t.Helper()
	code, _ := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": email, "username": username, "password": "secret"}, "")
	require.Equal(s.t, http.StatusCreated, code)
	code, env := s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": email, "password": "secret"}, "")
	require.Equal(s.t, http.StatusOK, code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &out))
	return out.Token
}

func (s *testServer) createPost(token, title, body, tags string) model.Post {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/posts", gin.H{"title": title, "body": body, "tags": tags}, token)
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	var p model.Post
	require.NoError(s.t, json.Unmarshal(env.Data, &p))
	return p
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealthz(t *testing.T) {
	s := setupServer(t)
	code, _ := s.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestPostLifecycle(t *testing.T) {
	s := setupServer(t)
	admin := s.login("admin@example.com", "admin")

	p := s.createPost(admin, "Tagged post", "body about golang", " go, web ,go")
	require.Len(t, p.Tags, 2)

	code, env := s.do(http.MethodGet, "/api/v1/posts/"+p.ID+"/tags", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.Tag](t, env.Data), 2)

	code, env = s.do(http.MethodGet, "/api/v1/posts/"+p.ID+"/edit", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "go, web", decode[service.PostForm](t, env.Data).Tags)

	code, _ = s.do(http.MethodPut, "/api/v1/posts/"+p.ID, gin.H{"title": "Retitled", "body": "body", "tags": "ops"}, admin)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, "/api/v1/tags", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]model.TagCount](t, env.Data), 3)

	code, _ = s.do(http.MethodDelete, "/api/v1/posts/"+p.ID+"/tags/web", nil, admin)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, "/api/v1/posts/"+p.ID+"/tags/web", nil, admin)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodGet, "/api/v1/tags/go/posts", nil, "")
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	code, _ = s.do(http.MethodGet, "/api/v1/tags/web/posts", nil, "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/tags/nope/posts", nil, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/posts/"+p.ID, nil, admin)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodGet, "/api/v1/posts/"+p.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAdminGate(t *testing.T) {
	s := setupServer(t)
	reader := s.login("reader@example.com", "reader")

	code, _ := s.do(http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "body": "b"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = s.do(http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "body": "b"}, reader)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(http.MethodPut, "/api/v1/profile", gin.H{"name": "Reader", "location": "Porto"}, reader)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Reader", decode[model.User](t, env.Data).Name)

	code, env = s.do(http.MethodGet, "/api/v1/users/reader", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Porto", decode[model.User](t, env.Data).Location)
}

func TestValidation(t *testing.T) {
	s := setupServer(t)
	admin := s.login("admin@example.com", "admin")

	code, env := s.do(http.MethodPost, "/api/v1/posts", gin.H{"title": "   ", "body": "b"}, admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "title")

	code, _ = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": "not-an-email", "username": "x", "password": "p"}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": "admin@example.com", "username": "other", "password": "p"}, "")
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "admin@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	// 40 个字符但 80 字节，超过 bcrypt 上限
	code, _ = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"email": "wide@example.com", "username": "wide", "password": strings.Repeat("é", 40)}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.do(http.MethodPost, "/api/v1/posts", gin.H{"title": "t", "body": "b", "tags": strings.Repeat("x", model.MaxTagNameLength+1)}, admin)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "tag name too long")
}

func TestComments(t *testing.T) {
	s := setupServer(t)
	admin := s.login("admin@example.com", "admin")
	p := s.createPost(admin, "Discuss", "body", "")
	base := "/api/v1/posts/" + p.ID

	var lastID string
	for _, body := range []string{"one", "two", "three"} {
		code, env := s.do(http.MethodPost, base+"/comments", gin.H{"author": "ann", "body": body}, "")
		require.Equal(t, http.StatusCreated, code)
		lastID = decode[model.Comment](t, env.Data).ID
	}

	code, env := s.do(http.MethodGet, base+"?page=-1", nil, "")
	require.Equal(t, http.StatusOK, code)
	var detail struct {
		Comments service.CommentPage `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, 2, detail.Comments.Page)
	assert.Len(t, detail.Comments.Comments, 1)

	code, _ = s.do(http.MethodPost, base+"/comments/"+lastID+"/toggle", nil, admin)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodGet, base+"/comments?page=1", nil, "")
	require.Equal(t, http.StatusOK, code)
	page := decode[service.CommentPage](t, env.Data)
	require.NotEmpty(t, page.Comments)
	assert.True(t, page.Comments[0].Disabled)
	assert.Empty(t, page.Comments[0].Body)

	code, _ = s.do(http.MethodPost, base+"/comments-toggle", nil, admin)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, base+"/comments", gin.H{"author": "ann", "body": "late"}, "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestSearch(t *testing.T) {
	s := setupServer(t)
	admin := s.login("admin@example.com", "admin")
	p := s.createPost(admin, "Bleve internals", "inverted index segments", "search")
	s.createPost(admin, "Unrelated", "cooking pasta", "food")

	code, env := s.do(http.MethodGet, "/api/v1/search?q=bleve", nil, "")
	require.Equal(t, http.StatusOK, code)
	var res struct {
		Total int64        `json:"total"`
		List  []model.Post `json:"list"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Len(t, res.List, 1)
	assert.Equal(t, p.ID, res.List[0].ID)

	code, env = s.do(http.MethodGet, "/api/v1/search?q=", nil, "")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Zero(t, res.Total)
}

func TestAbout(t *testing.T) {
	s := setupServer(t)
	code, _ := s.do(http.MethodGet, "/api/v1/about", nil, "")
	assert.Equal(t, http.StatusNotFound, code)

	s.login("admin@example.com", "admin")
	code, env := s.do(http.MethodGet, "/api/v1/about", nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "admin", decode[model.User](t, env.Data).Username)
}
