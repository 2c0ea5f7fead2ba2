package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/seasworth/seasworthai/internal/api"
)

const imageFailMsg = "Failed to generate image."

// GenerateImage submits the prompt as multipart form data and returns the
// image bytes base64-encoded. Nothing is stored.
func (c *Client) GenerateImage(ctx context.Context, apiKey string, req api.GenerateImageRequest) (api.GenerateImageResponse, error) {
	var form bytes.Buffer
	w := multipart.NewWriter(&form)
	if err := w.WriteField("prompt", req.Prompt); err != nil {
		return api.GenerateImageResponse{}, api.ErrInternal(fmt.Errorf("write prompt field: %w", err))
	}
	if err := w.Close(); err != nil {
		return api.GenerateImageResponse{}, api.ErrInternal(fmt.Errorf("close multipart writer: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoints.Image, &form)
	if err != nil {
		return api.GenerateImageResponse{}, api.ErrInternal(fmt.Errorf("create image request: %w", err))
	}
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	body, err := c.do(httpReq, ServiceClipdrop, imageFailMsg)
	if err != nil {
		return api.GenerateImageResponse{}, err
	}

	return api.GenerateImageResponse{ImageBase64: base64.StdEncoding.EncodeToString(body)}, nil
}
