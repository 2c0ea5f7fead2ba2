package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/seasworth/seasworthai/internal/api"
	"github.com/seasworth/seasworthai/internal/config"
	"github.com/seasworth/seasworthai/internal/pages"
)

// setupRoutes sets up all the routes for the server
func (s *Server) setupRoutes() {
	up := s.upstream

	r := s.router.Group("/api")
	r.POST("/chat", handle(s, endpoint[api.ChatRequest, api.ChatResponse]{
		name:       "chat",
		credential: config.CredentialGroq,
		call:       up.Chat,
	}))
	r.POST("/research", handle(s, endpoint[api.ResearchRequest, api.ResearchResponse]{
		name:       "research",
		credential: config.CredentialSerper,
		call:       up.Research,
	}))
	r.POST("/fetch-url", handle(s, endpoint[api.FetchURLRequest, api.FetchURLResponse]{
		name: "fetch-url",
		call: func(ctx context.Context, _ string, req api.FetchURLRequest) (api.FetchURLResponse, error) {
			return up.FetchURL(ctx, req)
		},
	}))
	r.POST("/generate-image", handle(s, endpoint[api.GenerateImageRequest, api.GenerateImageResponse]{
		name:       "generate-image",
		credential: config.CredentialClipdrop,
		call:       up.GenerateImage,
	}))
	r.POST("/generate-video", handle(s, endpoint[api.GenerateVideoRequest, api.GenerateVideoResponse]{
		name:       "generate-video",
		credential: config.CredentialGoogle,
		call:       up.GenerateVideo,
	}))
	r.GET("/crypto-price", handle(s, endpoint[api.CryptoPriceRequest, api.CryptoPriceResponse]{
		name:       "crypto-price",
		credential: config.CredentialCryptoCompare,
		call:       up.CryptoPrice,
	}))
	r.GET("/crypto-toplist", handle(s, endpoint[api.CryptoTopListRequest, []api.CryptoTopListEntry]{
		name:       "crypto-toplist",
		credential: config.CredentialCryptoCompare,
		call:       up.CryptoTopList,
	}))

	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	for _, page := range pages.Catalog {
		s.router.GET(page.Route, s.handlePage)
		s.router.HEAD(page.Route, s.handlePage)
	}
	s.router.NoRoute(s.handleFallback)
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// handlePage serves the catalog page registered for the matched route.
func (s *Server) handlePage(c *gin.Context) {
	page, ok := pages.Lookup(c.FullPath())
	if !ok {
		_ = c.Error(api.ErrNotFound("Page not found."))
		return
	}
	s.serveFile(c, filepath.Join(s.config.StaticDir, page.File))
}

// handleFallback serves static assets and falls back to the app shell so
// client-side routes resolve. Unknown API paths get a JSON 404.
func (s *Server) handleFallback(c *gin.Context) {
	urlPath := c.Request.URL.Path
	if pages.IsAPIPath(urlPath) || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		_ = c.Error(api.ErrNotFound("Not found."))
		return
	}

	if file := pages.Resolve(s.config.StaticDir, urlPath); isRegularFile(file) {
		s.serveFile(c, file)
		return
	}
	s.serveFile(c, filepath.Join(s.config.StaticDir, pages.AppShell))
}

// serveFile writes file without http.ServeFile's index.html redirect.
func (s *Server) serveFile(c *gin.Context, file string) {
	f, err := os.Open(file)
	if err != nil {
		_ = c.Error(api.WrapError(err, http.StatusNotFound, "Page not found."))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = c.Error(api.WrapError(err, http.StatusNotFound, "Page not found."))
		return
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
