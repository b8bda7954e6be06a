package intent

import (
	"chatrouter/app/service/completion"
	"chatrouter/app/util/extract"
	"chatrouter/app/util/prompt"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/do"
)

//go:embed classify_prompt.txt
var classifyPromptText string

var classifyPrompt = prompt.MustParse(classifyPromptText, "message")

const classifyMaxTokens = 256

type Service struct {
	completionSvc *completion.Service
}

func New(di *do.Injector) (*Service, error) {
	return NewWithCompletion(do.MustInvoke[*completion.Service](di)), nil
}

func NewWithCompletion(completionSvc *completion.Service) *Service {
	return &Service{
		completionSvc: completionSvc,
	}
}

// Classify never fails: any problem with the model path drops to Fallback.
func (s *Service) Classify(ctx context.Context, message string) Result {
	if !s.completionSvc.Enabled() {
		return Fallback(message)
	}

	result, err := s.classifyWithModel(ctx, message)
	if err != nil {
		slog.Warn("Intent classification fell back to keywords",
			"error", err,
		)
		return Fallback(message)
	}

	return result
}

func (s *Service) classifyWithModel(ctx context.Context, message string) (Result, error) {
	text, err := classifyPrompt.Render(map[string]any{"message": message})
	if err != nil {
		return Result{}, err
	}

	reply, err := s.completionSvc.Complete(ctx, completion.Request{
		Prompt:    text,
		MaxTokens: classifyMaxTokens,
		JSON:      true,
	})
	if err != nil {
		return Result{}, fmt.Errorf("completion failed: %w", err)
	}

	obj := extract.Object(reply)
	if obj == nil {
		return Result{}, errors.New("no JSON object in classifier reply")
	}

	intent := strings.ToLower(strings.TrimSpace(stringField(obj, "intent")))
	if intent == "" {
		return Result{}, errors.New("classifier reply has no intent")
	}
	if !IsKnown(intent) {
		intent = General
	}

	return Result{
		Intent:   intent,
		Location: strings.TrimSpace(stringField(obj, "location")),
		Topic:    strings.TrimSpace(stringField(obj, "topic")),
		Activity: strings.TrimSpace(stringField(obj, "activity")),
	}, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
