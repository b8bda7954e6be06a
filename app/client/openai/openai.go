// Package openai talks to any OpenAI-compatible chat completions endpoint.
package openai

import (
	"chatrouter/app/client/llmerr"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
)

const providerName = "openai"

type Client struct {
	client *openai.Client
}

var _ llms.Model = (*Client)(nil)

func NewClient(token, baseURL string, httpClient *http.Client) *Client {
	clientConfig := openai.DefaultConfig(token)

	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *Client) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}

	if opts.Model == "" {
		return nil, llms.NewError(llms.ErrCodeInvalidRequest, providerName, "model is required")
	}

	req := openai.ChatCompletionRequest{
		Model:    opts.Model,
		Messages: convertMessages(messages),
	}
	if opts.MaxTokens > 0 {
		req.MaxCompletionTokens = opts.MaxTokens
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	aiResponse, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, mapError(err)
	}

	choices := make([]*llms.ContentChoice, 0, len(aiResponse.Choices))
	for _, choice := range aiResponse.Choices {
		choices = append(choices, &llms.ContentChoice{
			Content:    strings.TrimSpace(choice.Message.Content),
			StopReason: string(choice.FinishReason),
		})
	}

	return &llms.ContentResponse{Choices: choices}, nil
}

func (c *Client) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

func convertMessages(messages []llms.MessageContent) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))

	for _, msg := range messages {
		var sb strings.Builder
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}

		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			role = openai.ChatMessageRoleSystem
		case llms.ChatMessageTypeAI:
			role = openai.ChatMessageRoleAssistant
		}

		result = append(result, openai.ChatCompletionMessage{
			Role:    role,
			Content: sb.String(),
		})
	}

	return result
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return llmerr.FromStatus(providerName, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return llmerr.FromStatus(providerName, reqErr.HTTPStatusCode, "", err)
	}

	return llmerr.FromTransport(providerName, err)
}
