package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/seasworth/seasworthai/internal/api"
	"github.com/seasworth/seasworthai/internal/logctx"
	"github.com/seasworth/seasworthai/internal/metrics"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLen = 128
	// statusClientClosed is the de facto status for a client that went away.
	statusClientClosed = 499
)

// requestContext assigns a request ID and attaches a request-scoped logger.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		logger := slog.Default().With(
			"request_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Request = c.Request.WithContext(logctx.WithLogger(c.Request.Context(), logger))
		c.Next()
	}
}

func loggerFrom(c *gin.Context) *slog.Logger {
	return logctx.FromContext(c.Request.Context())
}

func recordMetrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		collector.RecordRequest(endpoint, c.Writer.Status(), time.Since(start))
	}
}

// errorEnvelope turns handler errors and panics into {"error":{"message":...}}.
// Handlers report failures with c.Error and return.
func errorEnvelope() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}
			loggerFrom(c).Error("Handler panicked", "panic", r, "stack", string(debug.Stack()))
			if !c.Writer.Written() {
				handleError(c, api.ErrInternal(fmt.Errorf("panic: %v", r)))
			}
			c.Abort()
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		if c.Writer.Written() {
			loggerFrom(c).Error("Error after response was written", "error", err)
			return
		}
		handleError(c, err)
	}
}

// handleError sends a standardized error response with context-aware cancellation handling
func handleError(c *gin.Context, err error) {
	logger := loggerFrom(c)

	// Check for context cancellation (client disconnected)
	if errors.Is(err, context.Canceled) {
		logger.Debug("Client disconnected", "error", err)
		c.AbortWithStatusJSON(statusClientClosed, (&api.StatusError{ErrorMessage: "Request canceled."}).Envelope())
		return
	}

	var se *api.StatusError
	if !errors.As(err, &se) {
		se = api.ErrInternal(err)
	}

	if se.StatusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", "kind", se.Kind, "status", se.StatusCode, "error", se)
	} else {
		logger.Warn("Request rejected", "kind", se.Kind, "status", se.StatusCode, "error", se)
	}
	c.AbortWithStatusJSON(se.StatusCode, se.Envelope())
}

// limitBody caps request bodies at limit bytes.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
