package general

import (
	"chatrouter/app/config"
	"chatrouter/app/service/analyzer"
	"chatrouter/app/service/completion"
	"chatrouter/app/service/memory"
	"chatrouter/app/util/extract"
	"chatrouter/app/util/prompt"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

var (
	//go:embed support_prompt.txt
	supportPromptText string
	//go:embed system_prompt.txt
	systemPromptText string

	supportPrompt = prompt.MustParse(supportPromptText, "message", "source")
	systemPrompt  = prompt.MustParse(systemPromptText, "detailed", "sarcastic", "intended_meaning")
)

const supportMaxTokens = 600

var creativeRe = regexp.MustCompile(`\b(` + strings.Join(pie.Map(creativeKeywords, regexp.QuoteMeta), "|") + `)\b`)

type Service struct {
	completionSvc *completion.Service
	analyzerSvc   *analyzer.Service

	supportSource     string
	conciseMaxTokens  int
	detailedMaxTokens int
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		do.MustInvoke[*completion.Service](di),
		do.MustInvoke[*analyzer.Service](di),
		cfg.General,
	), nil
}

func NewService(completionSvc *completion.Service, analyzerSvc *analyzer.Service, cfg config.General) *Service {
	return &Service{
		completionSvc:     completionSvc,
		analyzerSvc:       analyzerSvc,
		supportSource:     cfg.SupportSource,
		conciseMaxTokens:  cfg.ConciseMaxTokens,
		detailedMaxTokens: cfg.DetailedMaxTokens,
	}
}

func IsCreative(message string) bool {
	return creativeRe.MatchString(strings.ToLower(message))
}

// Reply never fails. Creative requests skip the mood check entirely, so they
// are never answered with a support passage.
func (s *Service) Reply(ctx context.Context, message string, history []memory.Turn) Reply {
	creative := IsCreative(message)

	sarcasm, mood := s.analyzerSvc.Analyze(ctx, message, !creative)

	if mood.IsLowMood && !creative && s.completionSvc.Enabled() {
		if text, ok := s.support(ctx, message); ok {
			return Reply{Text: text, Path: PathSupport}
		}
	}

	return s.converse(ctx, message, history, creative, sarcasm)
}

func (s *Service) support(ctx context.Context, message string) (string, bool) {
	text, err := supportPrompt.Render(map[string]any{
		"message": message,
		"source":  s.supportSource,
	})
	if err != nil {
		slog.Error("Failed to render support prompt", "error", err)
		return "", false
	}

	reply, err := s.completionSvc.Complete(ctx, completion.Request{
		Prompt:    text,
		MaxTokens: supportMaxTokens,
		JSON:      true,
	})
	if err != nil {
		slog.Warn("Support passage failed, falling through", "error", err)
		return "", false
	}

	var passage supportPassage
	if !extract.Into(reply, &passage) || !passage.complete() {
		slog.Warn("Support passage incomplete, falling through")
		return "", false
	}

	return formatPassage(s.supportSource, passage), true
}

func (s *Service) converse(
	ctx context.Context,
	message string,
	history []memory.Turn,
	creative bool,
	sarcasm analyzer.Sarcasm,
) Reply {
	system, err := systemPrompt.Render(map[string]any{
		"detailed":         creative,
		"sarcastic":        sarcasm.IsSarcastic,
		"intended_meaning": sarcasm.IntendedMeaning,
	})
	if err != nil {
		slog.Error("Failed to render system prompt", "error", err)
		return Reply{Text: msgApology, Path: PathApology}
	}

	maxTokens := s.conciseMaxTokens
	if creative {
		maxTokens = s.detailedMaxTokens
	}

	text, err := s.completionSvc.Complete(ctx, completion.Request{
		System:    system,
		History:   history,
		Prompt:    message,
		MaxTokens: maxTokens,
	})
	if err != nil {
		slog.Warn("Conversational reply failed", "error", err)
		return Reply{Text: msgApology, Path: PathApology}
	}

	return Reply{Text: text, Path: PathConversation}
}

func formatPassage(source string, p supportPassage) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("I'm sorry you're going through this. Here is a passage from the %s that may bring some comfort:\n\n", source))
	sb.WriteString(fmt.Sprintf("> %s\n\n", p.SourceText))
	sb.WriteString(fmt.Sprintf("*%s*\n\n", p.Transliteration))
	sb.WriteString(fmt.Sprintf("**Meaning:** %s", p.Meaning))

	return sb.String()
}
