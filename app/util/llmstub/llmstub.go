// Package llmstub provides a scripted llms.Model for tests. Replies are chosen
// by the first rule whose marker appears in the newest message.
package llmstub

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

var ErrNoRule = errors.New("llmstub: no rule matches")

type Rule struct {
	Marker string
	Reply  string
	Err    error
}

type Call struct {
	Messages []llms.MessageContent
	Options  llms.CallOptions
}

// LastText returns the text of the newest message.
func (c Call) LastText() string {
	if len(c.Messages) == 0 {
		return ""
	}

	return partsText(c.Messages[len(c.Messages)-1])
}

// SystemText returns the system instruction, if any.
func (c Call) SystemText() string {
	for _, msg := range c.Messages {
		if msg.Role == llms.ChatMessageTypeSystem {
			return partsText(msg)
		}
	}

	return ""
}

type Model struct {
	mu    sync.Mutex
	rules []Rule
	calls []Call
}

var _ llms.Model = (*Model)(nil)

func New(rules ...Rule) *Model {
	return &Model{rules: rules}
}

func (m *Model) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, opt := range options {
		opt(&opts)
	}

	call := Call{Messages: messages, Options: opts}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	text := call.LastText()
	for _, rule := range m.rules {
		if !strings.Contains(text, rule.Marker) {
			continue
		}
		if rule.Err != nil {
			return nil, rule.Err
		}
		return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: rule.Reply}}}, nil
	}

	return nil, ErrNoRule
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *Model) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Call, len(m.calls))
	copy(result, m.calls)

	return result
}

// CallsWith counts calls whose newest message contains marker.
func (m *Model) CallsWith(marker string) int {
	count := 0
	for _, call := range m.Calls() {
		if strings.Contains(call.LastText(), marker) {
			count++
		}
	}

	return count
}

func partsText(msg llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range msg.Parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}

	return sb.String()
}
