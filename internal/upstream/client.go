package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/seasworth/seasworthai/internal/api"
	"github.com/seasworth/seasworthai/internal/config"
	"github.com/seasworth/seasworthai/internal/logctx"
	"github.com/seasworth/seasworthai/internal/metrics"
)

// Service labels used in logs and metrics.
const (
	ServiceGroq          = "groq"
	ServiceSerper        = "serper"
	ServiceFetch         = "fetch"
	ServiceClipdrop      = "clipdrop"
	ServiceCryptoCompare = "cryptocompare"
)

const (
	// maxResponseBytes bounds how much of an upstream body is buffered.
	maxResponseBytes = 32 << 20
	// maxLoggedBody bounds how much of a failing upstream body is logged.
	maxLoggedBody = 512

	headerOrganization = "OpenAI-Organization"
	headerProject      = "OpenAI-Project"
)

// Client forwards requests to every upstream service over one shared transport.
type Client struct {
	http      *http.Client
	endpoints config.Upstreams
	chat      openai.Client
	chatModel string
	metrics   *metrics.Collector
}

// New creates a client for the upstreams named in cfg. collector may be nil.
func New(cfg *config.Config, collector *metrics.Collector) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConnsPerHost: 50,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: cfg.UpstreamTimeout,
	}

	chat := openai.NewClient(
		option.WithBaseURL(cfg.Upstreams.Chat),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
		// The SDK picks these up from OPENAI_* env vars; they mean nothing to Groq.
		option.WithHeaderDel(headerOrganization),
		option.WithHeaderDel(headerProject),
	)

	return &Client{
		http:      httpClient,
		endpoints: cfg.Upstreams,
		chat:      chat,
		chatModel: cfg.ChatModel,
		metrics:   collector,
	}
}

// do executes req and returns the buffered body of a 2xx response.
// Any other status becomes an upstream StatusError carrying failMsg; the raw
// body is only logged.
func (c *Client) do(req *http.Request, service, failMsg string) ([]byte, error) {
	ctx := req.Context()
	logger := logctx.FromContext(ctx).With("service", service)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstream(service, outcomeOf(err), time.Since(start))
		logger.Error("Upstream request failed", "error", err)
		return nil, transportError(failMsg, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.metrics.RecordUpstream(service, outcomeOf(err), time.Since(start))
		logger.Error("Failed to read upstream response", "error", err)
		return nil, transportError(failMsg, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RecordUpstream(service, metrics.OutcomeError, time.Since(start))
		logger.Error("Upstream returned error status",
			"status", resp.StatusCode,
			"body", truncateBytes(body, maxLoggedBody),
		)
		return nil, api.ErrUpstream(resp.StatusCode, failMsg,
			fmt.Errorf("%s returned status %d", service, resp.StatusCode))
	}

	c.metrics.RecordUpstream(service, metrics.OutcomeSuccess, time.Since(start))
	logger.Debug("Upstream request completed", "status", resp.StatusCode, "duration", time.Since(start))
	return body, nil
}

// decodeError reports a 2xx body that could not be parsed.
func decodeError(ctx context.Context, service, failMsg string, body []byte, err error) error {
	logctx.FromContext(ctx).Error("Malformed upstream response",
		"service", service,
		"error", err,
		"body", truncateBytes(body, maxLoggedBody),
	)
	return api.ErrBadGateway(failMsg, fmt.Errorf("decode %s response: %w", service, err))
}

// transportError maps a failure with no upstream status onto 502/504.
// Cancellation stays reachable through errors.Is.
func transportError(failMsg string, err error) error {
	if isTimeout(err) {
		return api.ErrGatewayTimeout(failMsg, err)
	}
	return api.ErrBadGateway(failMsg, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	if isTimeout(err) {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
