// Package gemini adapts the Google GenAI SDK to the llms.Model interface.
package gemini

import (
	"chatrouter/app/client/llmerr"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"google.golang.org/genai"
)

const providerName = "gemini"

type Client struct {
	client *genai.Client
}

var _ llms.Model = (*Client)(nil)

// NewClient builds a Gemini API client. baseURL may be empty.
func NewClient(ctx context.Context, token, baseURL string, httpClient *http.Client) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     token,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{client: client}, nil
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

	contents, system := convertMessages(messages)
	if len(contents) == 0 {
		return nil, llms.NewError(llms.ErrCodeInvalidRequest, providerName, "no messages to send")
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: system,
	}
	if opts.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(opts.MaxTokens)
	}
	if opts.JSONMode {
		genConfig.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, opts.Model, contents, genConfig)
	if err != nil {
		return nil, mapError(err)
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: resp.Text()},
		},
	}, nil
}

func (c *Client) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, c, prompt, options...)
}

// convertMessages splits system parts into the system instruction and maps
// the remaining roles onto user/model contents.
func convertMessages(messages []llms.MessageContent) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var systemParts []string

	for _, msg := range messages {
		text := textOf(msg)
		if text == "" {
			continue
		}

		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			systemParts = append(systemParts, text)
		case llms.ChatMessageTypeAI:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = genai.NewContentFromText(strings.Join(systemParts, "\n\n"), genai.RoleUser)
	}

	return contents, system
}

func textOf(msg llms.MessageContent) string {
	var sb strings.Builder

	for _, part := range msg.Parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}

	return sb.String()
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llmerr.FromStatus(providerName, apiErr.Code, apiErr.Message, err)
	}

	return llmerr.FromTransport(providerName, err)
}
