package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seasworth/seasworthai/internal/api"
)

const (
	// BrowserUserAgent is sent because many sites reject default client identifiers.
	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// MaxContentChars caps the extracted paragraph text.
	MaxContentChars = 2000

	NoTitleText   = "No title found"
	NoContentText = "No content found"

	fetchFailMsg = "Failed to fetch URL."
)

// ExtractPage pulls the <title> and the concatenated <p> text out of an HTML document.
func ExtractPage(r io.Reader) (api.FetchURLResponse, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return api.FetchURLResponse{}, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = NoTitleText
	}

	content := strings.TrimSpace(doc.Find("p").Text())
	content = truncateRunes(content, MaxContentChars)
	if content == "" {
		content = NoContentText
	}

	return api.FetchURLResponse{Title: title, Content: content}, nil
}

// ValidateFetchURL accepts only absolute http and https URLs.
func ValidateFetchURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// FetchURL downloads a page and extracts its title and paragraph text.
func (c *Client) FetchURL(ctx context.Context, req api.FetchURLRequest) (api.FetchURLResponse, error) {
	if err := ValidateFetchURL(req.URL); err != nil {
		return api.FetchURLResponse{}, api.ErrValidation("url must be an http or https URL.", req)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return api.FetchURLResponse{}, api.ErrValidation("url must be an http or https URL.", req)
	}
	httpReq.Header.Set("User-Agent", BrowserUserAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	body, err := c.do(httpReq, ServiceFetch, fetchFailMsg)
	if err != nil {
		return api.FetchURLResponse{}, err
	}

	page, err := ExtractPage(bytes.NewReader(body))
	if err != nil {
		return api.FetchURLResponse{}, decodeError(ctx, ServiceFetch, fetchFailMsg, body, err)
	}
	return page, nil
}
