package analyzer

import (
	"chatrouter/app/service/completion"
	"chatrouter/app/util/extract"
	"chatrouter/app/util/prompt"
	"context"
	_ "embed"
	"log/slog"
	"regexp"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

var (
	//go:embed sarcasm_prompt.txt
	sarcasmPromptText string
	//go:embed mood_prompt.txt
	moodPromptText string

	sarcasmPrompt = prompt.MustParse(sarcasmPromptText, "message")
	moodPrompt    = prompt.MustParse(moodPromptText, "message")
)

const analyzerMaxTokens = 200

var wordRe = regexp.MustCompile(`\p{L}+`)

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

// HasDistressKeyword reports whether any distress word appears in message.
func HasDistressKeyword(message string) bool {
	words := wordRe.FindAllString(strings.ToLower(message), -1)

	return pie.Any(words, func(w string) bool {
		return pie.Contains(distressKeywords, w)
	})
}

// Sarcasm fails soft to the zero value.
func (s *Service) Sarcasm(ctx context.Context, message string) Sarcasm {
	var result Sarcasm
	if !s.ask(ctx, sarcasmPrompt, message, &result) {
		return Sarcasm{}
	}

	if !result.IsSarcastic {
		result.IntendedMeaning = ""
	}

	return result
}

// Mood short-circuits on distress keywords and fails soft to not-low.
func (s *Service) Mood(ctx context.Context, message string) Mood {
	if HasDistressKeyword(message) {
		return Mood{IsLowMood: true}
	}

	var result Mood
	if !s.ask(ctx, moodPrompt, message, &result) {
		return Mood{}
	}

	return result
}

// Analyze runs the sarcasm check and, if withMood is set, the mood check
// concurrently.
func (s *Service) Analyze(ctx context.Context, message string, withMood bool) (Sarcasm, Mood) {
	var sarcasm Sarcasm
	var mood Mood

	var g errgroup.Group

	g.Go(func() error {
		sarcasm = s.Sarcasm(ctx, message)
		return nil
	})

	if withMood {
		g.Go(func() error {
			mood = s.Mood(ctx, message)
			return nil
		})
	}

	_ = g.Wait()

	return sarcasm, mood
}

func (s *Service) ask(ctx context.Context, tmpl prompt.Template, message string, dst any) bool {
	if !s.completionSvc.Enabled() {
		return false
	}

	text, err := tmpl.Render(map[string]any{"message": message})
	if err != nil {
		slog.Error("Failed to render analyzer prompt", "error", err)
		return false
	}

	reply, err := s.completionSvc.Complete(ctx, completion.Request{
		Prompt:    text,
		MaxTokens: analyzerMaxTokens,
		JSON:      true,
	})
	if err != nil {
		slog.Warn("Analyzer call failed", "error", err)
		return false
	}

	return extract.Into(reply, dst)
}
