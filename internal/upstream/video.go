package upstream

import (
	"context"

	"github.com/seasworth/seasworthai/internal/api"
	"github.com/seasworth/seasworthai/internal/logctx"
)

// VideoUnavailableText explains the null videoUrl.
const VideoUnavailableText = "Video generation is not available yet."

// GenerateVideo is credential-gated but has no provider behind it. It always
// succeeds with a null videoUrl.
func (c *Client) GenerateVideo(ctx context.Context, _ string, req api.GenerateVideoRequest) (api.GenerateVideoResponse, error) {
	logctx.FromContext(ctx).Debug("Video generation requested", "prompt_chars", len(req.Prompt))
	return api.GenerateVideoResponse{VideoURL: nil, Message: VideoUnavailableText}, nil
}
