package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogfeed/internal/config"
	"blogfeed/internal/database"
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "server-test-secret-0123456789abcdef"

type testEnv struct {
	srv   *Server
	app   *fiber.App
	db    *gorm.DB
	cache *testutil.CountingCache
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig(flags string) *config.Config {
	return &config.Config{
		JWTSecret:    testJWTSecret,
		Port:         "0",
		DBDriver:     "sqlite",
		CacheBackend: "memory",
		PostsPerPage: 10,
		FeatureFlags: flags,
		Env:          "test",
	}
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	return newTestEnvWithRedis(t, flags, nil)
}

func newTestEnvWithRedis(t *testing.T, flags string, rdb *redis.Client) *testEnv {
	t.Helper()
	db := openTestDB(t)
	counting := testutil.NewCountingCache(nil)
	srv, err := NewServerWithDeps(testConfig(flags), db, rdb, counting)
	require.NoError(t, err)
	return &testEnv{srv: srv, app: srv.NewApp(), db: db, cache: counting}
}

// user creates an account and returns it with a bearer token.
func (e *testEnv) user(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, repository.NewUserRepository(e.db).Create(context.Background(), u))
	token, err := middleware.IssueToken(testJWTSecret, u.ID, u.Username, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug}
	require.NoError(t, repository.NewGroupRepository(e.db).Create(context.Background(), g))
	return g
}

// post inserts directly, bypassing the service, so no cache event fires.
func (e *testEnv) post(t *testing.T, author *models.User, group *models.Group, text string, minute int) *models.Post {
	t.Helper()
	p := &models.Post{
		Text:      text,
		AuthorID:  author.ID,
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).Add(time.Duration(minute) * time.Minute),
	}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, repository.NewPostRepository(e.db).Create(context.Background(), p))
	return p
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) do(t *testing.T, req *http.Request, token string) *http.Response {
	t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path, token string) *http.Response {
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return e.do(t, req, token)
}

func (e *testEnv) postJSON(t *testing.T, path string, body any, token string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return e.do(t, req, token)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type postJSON struct {
	ID       uint   `json:"id"`
	Text     string `json:"text"`
	AuthorID uint   `json:"author_id"`
	GroupID  *uint  `json:"group_id"`
}

type pageJSON struct {
	Posts []postJSON `json:"posts"`
	Page  struct {
		Number       int   `json:"number"`
		NumPages     int   `json:"num_pages"`
		Total        int64 `json:"total"`
		HasNext      bool  `json:"has_next"`
		HasPrevious  bool  `json:"has_previous"`
		NextPage     int   `json:"next_page"`
		PreviousPage int   `json:"previous_page"`
	} `json:"page"`
	Group *struct {
		Slug string `json:"slug"`
	} `json:"group"`
	Author *struct {
		Username string `json:"username"`
	} `json:"author"`
	Following bool `json:"following"`
}

func (p pageJSON) texts() []string {
	out := make([]string, 0, len(p.Posts))
	for _, post := range p.Posts {
		out = append(out, post.Text)
	}
	return out
}

type errorJSON struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
