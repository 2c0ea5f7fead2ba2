package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/seasworth/seasworthai/internal/api"
)

const (
	searchResultCount = 5
	digestResultCount = 3
	searchFailMsg     = "Failed to get search results."

	// NoResultsText is the digest when the search returns nothing.
	NoResultsText = "No results found."
)

// OrganicResult is one organic hit of the search service.
type OrganicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type searchResponse struct {
	Organic []OrganicResult `json:"organic"`
}

// FormatDigest renders the first three results as numbered paragraphs:
//
//	1. <title>
//	<snippet>
//	Source: <link>
//
// separated by a blank line.
func FormatDigest(results []OrganicResult) string {
	if len(results) == 0 {
		return NoResultsText
	}
	if len(results) > digestResultCount {
		results = results[:digestResultCount]
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("%d. %s\n%s\nSource: %s", i+1, r.Title, r.Snippet, r.Link)
	}
	return strings.Join(parts, "\n\n")
}

// Research queries the search service and returns a text digest.
func (c *Client) Research(ctx context.Context, apiKey string, req api.ResearchRequest) (api.ResearchResponse, error) {
	payload, err := json.Marshal(searchRequest{Q: req.Query, Num: searchResultCount})
	if err != nil {
		return api.ResearchResponse{}, api.ErrInternal(fmt.Errorf("marshal search request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.Search, bytes.NewReader(payload))
	if err != nil {
		return api.ResearchResponse{}, api.ErrInternal(fmt.Errorf("create search request: %w", err))
	}
	httpReq.Header.Set("X-API-KEY", apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.do(httpReq, ServiceSerper, searchFailMsg)
	if err != nil {
		return api.ResearchResponse{}, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return api.ResearchResponse{}, decodeError(ctx, ServiceSerper, searchFailMsg, body, err)
	}

	return api.ResearchResponse{Answer: FormatDigest(resp.Organic)}, nil
}
