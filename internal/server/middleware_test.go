package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seasworth/seasworthai/internal/api"
)

func TestErrorEnvelope_RecoversPanic(t *testing.T) {
	s := setupTestServer(t, "", nil)
	s.router.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := doRequest(s, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"message":"Internal server error."}}`, w.Body.String())
}

func TestErrorEnvelope_PlainErrorIsInternal(t *testing.T) {
	s := setupTestServer(t, "", nil)
	s.router.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("database password is hunter2"))
	})

	w := doRequest(s, http.MethodGet, "/plain", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestErrorEnvelope_StatusError(t *testing.T) {
	s := setupTestServer(t, "", nil)
	s.router.GET("/teapot", func(c *gin.Context) {
		_ = c.Error(api.ErrUpstream(http.StatusTeapot, "Upstream is a teapot.", nil))
	})

	w := doRequest(s, http.MethodGet, "/teapot", "")

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"error":{"message":"Upstream is a teapot."}}`, w.Body.String())
}

func TestRequestID(t *testing.T) {
	s := setupTestServer(t, "", nil)

	t.Run("generated", func(t *testing.T) {
		w := doRequest(s, http.MethodGet, "/healthz", "")
		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "expected a UUID, got %q", id)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "caller-supplied-id")
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, "caller-supplied-id", w.Header().Get(RequestIDHeader))
	})
}

func TestCORSPreflight(t *testing.T) {
	s := setupTestServer(t, "", nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://client.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t, "", nil)
	doRequest(s, http.MethodGet, "/healthz", "")

	w := doRequest(s, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `seasworthai_http_requests_total{endpoint="/healthz",status="200"} 1`)
}

func writeStatic(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestStaticPages(t *testing.T) {
	s := setupTestServer(t, "", nil)
	writeStatic(t, s.config.StaticDir, map[string]string{
		"landing.html":    "landing page",
		"index.html":      "app shell",
		"admin.html":      "admin page",
		"dev-portal.html": "dev portal",
		"css/app.css":     "body{}",
	})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"root serves landing", "/", http.StatusOK, "landing page"},
		{"index without redirect", "/index.html", http.StatusOK, "app shell"},
		{"named page", "/admin.html", http.StatusOK, "admin page"},
		{"dev portal", "/dev-portal.html", http.StatusOK, "dev portal"},
		{"asset", "/css/app.css", http.StatusOK, "body{}"},
		{"client route falls back", "/chat/session/42", http.StatusOK, "app shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(s, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestStaticPages_Head(t *testing.T) {
	s := setupTestServer(t, "", nil)
	writeStatic(t, s.config.StaticDir, map[string]string{
		"landing.html": "landing page",
		"index.html":   "app shell",
	})

	tests := []struct {
		path       string
		wantLength string
	}{
		{"/", "12"},
		{"/index.html", "9"},
		{"/chat/session/42", "9"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := doRequest(s, http.MethodHead, tt.path, "")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantLength, w.Header().Get("Content-Length"))
			assert.Empty(t, w.Body.String())
		})
	}
}

func TestStaticPages_MissingFile(t *testing.T) {
	s := setupTestServer(t, "", nil)

	w := doRequest(s, http.MethodGet, "/login.html", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":{"message":"Page not found."}}`, w.Body.String())
}

func TestUnknownAPIPath(t *testing.T) {
	s := setupTestServer(t, "", nil)
	writeStatic(t, s.config.StaticDir, map[string]string{"index.html": "app shell"})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/unknown"},
		{http.MethodGet, "/api/chat"},
		{http.MethodPost, "/not-api"},
	} {
		w := doRequest(s, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		assert.JSONEq(t, `{"error":{"message":"Not found."}}`, w.Body.String())
	}
}
