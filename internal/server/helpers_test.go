package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/seasworth/seasworthai/internal/config"
)

// mockUpstream is an httptest server that counts calls and keeps the last request.
type mockUpstream struct {
	*httptest.Server

	mu       sync.Mutex
	calls    int
	lastReq  *http.Request
	lastBody []byte
}

func newMockUpstream(t *testing.T, handler http.HandlerFunc) *mockUpstream {
	t.Helper()
	m := &mockUpstream{}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		m.mu.Lock()
		m.calls++
		m.lastReq = r.Clone(r.Context())
		m.lastBody = body
		m.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		handler(w, r)
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockUpstream) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockUpstream) Last() (*http.Request, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq, m.lastBody
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.StaticDir = t.TempDir()
	cfg.Credentials = config.Credentials{
		Groq:          "groq-key",
		Serper:        "serper-key",
		Clipdrop:      "clipdrop-key",
		CryptoCompare: "cc-key",
		Google:        "google-key",
	}
	return cfg
}

// setupTestServer builds a server whose every upstream points at target.
func setupTestServer(t *testing.T, target string, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := testConfig(t)
	if target != "" {
		cfg.Upstreams = config.Upstreams{
			Chat:          target,
			Search:        target + "/search",
			Image:         target + "/text-to-image/v1",
			CryptoPrice:   target + "/data/price",
			CryptoTopList: target + "/data/top/mktcapfull",
		}
	}
	if mutate != nil {
		mutate(&cfg)
	}
	s := NewServer(&cfg, "127.0.0.1", 0)
	gin.SetMode(gin.TestMode)
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}
