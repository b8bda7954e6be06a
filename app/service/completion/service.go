package completion

import (
	"chatrouter/app/client/gemini"
	"chatrouter/app/client/llmerr"
	"chatrouter/app/client/openai"
	"chatrouter/app/config"
	"chatrouter/app/service/memory"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
)

type Service struct {
	model llms.Model

	preferred string
	fallbacks []string
	timeout   time.Duration
	cooldown  time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	appCtx := do.MustInvoke[context.Context](di)

	if cfg.LLM.Disabled || cfg.LLM.Token == "" {
		slog.Warn("Completion backend disabled, using deterministic fallbacks",
			"disabled", cfg.LLM.Disabled,
			"has_token", cfg.LLM.Token != "",
		)
		return NewWithModel(nil, cfg.LLM), nil
	}

	httpClient := &http.Client{
		Timeout: cfg.LLM.Timeout,
	}

	var model llms.Model
	switch cfg.LLM.Provider {
	case "openai":
		model = openai.NewClient(cfg.LLM.Token, cfg.LLM.BaseURL, httpClient)
	default:
		client, err := gemini.NewClient(appCtx, cfg.LLM.Token, cfg.LLM.BaseURL, httpClient)
		if err != nil {
			return nil, oops.In("completion").Errorf("failed to create gemini client: %w", err)
		}
		model = client
	}

	return NewWithModel(model, cfg.LLM), nil
}

// NewWithModel wires an explicit backend. A nil model disables completions.
func NewWithModel(model llms.Model, cfg config.LLM) *Service {
	if cfg.Disabled {
		model = nil
	}

	return &Service{
		model:     model,
		preferred: cfg.Model,
		fallbacks: cfg.FallbackModels,
		timeout:   cfg.Timeout,
		cooldown:  cfg.RateLimitCooldown,
		sleep:     sleepContext,
	}
}

func (s *Service) Enabled() bool {
	return s.model != nil
}

// Candidates lists the models Complete would try for preferred, in order.
func (s *Service) Candidates(preferred string) []string {
	if preferred == "" {
		preferred = s.preferred
	}

	list := append([]string{preferred}, s.fallbacks...)

	return lo.Uniq(lo.Compact(list))
}

// Complete walks the candidate models until one returns text. Rate limits
// pause before the next candidate, unavailable models are skipped at once and
// a rejected request stops the walk.
func (s *Service) Complete(ctx context.Context, req Request) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	messages := buildMessages(req)
	if len(messages) == 0 {
		return "", oops.In("completion").Wrap(errEmptyRequest)
	}

	candidates := s.Candidates(req.Model)

	var lastErr error
	for i, model := range candidates {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		text, err := s.call(ctx, model, messages, req)
		result := classify(text, err)

		slog.Debug("Completion attempt finished",
			"model", model,
			"attempt", i+1,
			"outcome", result.String(),
			"error", err,
		)

		switch result {
		case outcomeSucceeded:
			return text, nil
		case outcomeFatal:
			return "", oops.In("completion").
				With("model", model).
				Wrapf(err, "request rejected")
		case outcomeRateLimited:
			lastErr = err
			slog.Warn("Completion model rate limited",
				"model", model,
				"cooldown", s.cooldown,
			)
			if i < len(candidates)-1 {
				if err := s.sleep(ctx, s.cooldown); err != nil {
					lastErr = err
				}
			}
		case outcomeSkip:
			lastErr = lo.Ternary(err != nil, err, errEmptyResponse)
		default:
			lastErr = err
		}
	}

	if lastErr == nil {
		return "", oops.In("completion").Wrap(ErrAllBackendsExhausted)
	}

	return "", oops.In("completion").
		With("candidates", candidates).
		Errorf("%w: %w", ErrAllBackendsExhausted, lastErr)
}

func (s *Service) call(ctx context.Context, model string, messages []llms.MessageContent, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	options := []llms.CallOption{llms.WithModel(model)}
	if req.MaxTokens > 0 {
		options = append(options, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSON {
		options = append(options, llms.WithJSONMode())
	}

	resp, err := s.model.GenerateContent(ctx, messages, options...)
	if err != nil {
		if ctx.Err() != nil && llmerr.Code(err) == llms.ErrCodeUnknown {
			return "", llmerr.FromTransport("completion", ctx.Err())
		}
		return "", err
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", nil
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}

func classify(text string, err error) outcome {
	if err == nil {
		if text == "" {
			return outcomeSkip
		}
		return outcomeSucceeded
	}

	switch llmerr.Code(err) {
	case llms.ErrCodeRateLimit, llms.ErrCodeQuotaExceeded:
		return outcomeRateLimited
	case llms.ErrCodeProviderUnavailable, llms.ErrCodeResourceNotFound:
		return outcomeSkip
	case llms.ErrCodeInvalidRequest:
		return outcomeFatal
	default:
		return outcomeFault
	}
}

func buildMessages(req Request) []llms.MessageContent {
	var messages []llms.MessageContent

	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}

	for _, turn := range req.History {
		if turn.Text == "" {
			continue
		}
		role := lo.Ternary(turn.Role == memory.RoleAgent, llms.ChatMessageTypeAI, llms.ChatMessageTypeHuman)
		messages = append(messages, llms.TextParts(role, turn.Text))
	}

	if req.Prompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))
	}

	if len(messages) == 0 || messages[len(messages)-1].Role == llms.ChatMessageTypeSystem {
		return nil
	}

	return messages
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
