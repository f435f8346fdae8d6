package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"sociopedia/internal/cache"
	"sociopedia/internal/config"
	"sociopedia/internal/database"
	"sociopedia/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

const testSecret = "server-test-secret-0123456789abcdef"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:         "test",
		Port:        "0",
		JWTSecret:   testSecret,
		JWTIssuer:   "sociopedia-api",
		JWTAudience: "sociopedia-client",
		BcryptCost:  4,
		DBDriver:    "sqlite",
		AssetsDir:   t.TempDir(),
		MaxUploadMB: 2,
	}
}

// newTestServer builds a Server over a private SQLite file and returns its app.
func newTestServer(t *testing.T, rdb *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := NewServerWithDeps(testConfig(t), db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() { cache.SetClient(nil) })
	return s, s.NewApp()
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

type session struct {
	user  models.User
	token string
}

// signup registers and logs in a user named first.
func signup(t *testing.T, app *fiber.App, first string) session {
	t.Helper()
	email := fmt.Sprintf("%s@example.com", first)
	resp := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"firstName": first,
		"lastName":  "Doe",
		"email":     email,
		"password":  "p4ssword",
		"location":  "Lisbon",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": "p4ssword",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return session{user: out.User, token: out.Token}
}

func uintStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
