package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/seasworth/seasworthai/internal/api"
	"github.com/seasworth/seasworthai/internal/logctx"
	"github.com/seasworth/seasworthai/internal/metrics"
)

const (
	// SystemPreamble is always the first message sent upstream.
	SystemPreamble = "You are a helpful AI assistant."
	// NoResponseText is returned when the completion carries no content.
	NoResponseText = "No response."

	chatTemperature = 0.7
	chatMaxTokens   = 1000
	chatFailMsg     = "Failed to get response from AI service."
)

// ChatMessages builds [system preamble, ...prior turns, user message].
func ChatMessages(req api.ChatRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+2)
	msgs = append(msgs, openai.SystemMessage(SystemPreamble))
	for _, m := range req.Messages {
		switch m.Role {
		case api.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(m.Content))
		case api.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return append(msgs, openai.UserMessage(req.Message))
}

// Chat sends the conversation to the chat-completion service and returns the
// first choice, or NoResponseText when there is none.
func (c *Client) Chat(ctx context.Context, apiKey string, req api.ChatRequest) (api.ChatResponse, error) {
	logger := logctx.FromContext(ctx).With("service", ServiceGroq)

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.chatModel),
		Messages:    ChatMessages(req),
		Temperature: openai.Float(chatTemperature),
		MaxTokens:   openai.Int(chatMaxTokens),
	}

	start := time.Now()
	completion, err := c.chat.Chat.Completions.New(ctx, params, option.WithAPIKey(apiKey))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.metrics.RecordUpstream(ServiceGroq, metrics.OutcomeError, time.Since(start))
			logger.Error("Chat completion returned error status", "status", apiErr.StatusCode, "error", err)
			return api.ChatResponse{}, api.ErrUpstream(apiErr.StatusCode, chatFailMsg,
				fmt.Errorf("%s returned status %d", ServiceGroq, apiErr.StatusCode))
		}
		c.metrics.RecordUpstream(ServiceGroq, outcomeOf(err), time.Since(start))
		logger.Error("Chat completion failed", "error", err)
		return api.ChatResponse{}, transportError(chatFailMsg, err)
	}
	c.metrics.RecordUpstream(ServiceGroq, metrics.OutcomeSuccess, time.Since(start))

	text := NoResponseText
	if len(completion.Choices) > 0 && completion.Choices[0].Message.Content != "" {
		text = completion.Choices[0].Message.Content
	}
	return api.ChatResponse{Text: text}, nil
}
