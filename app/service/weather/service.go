package weather

import (
	"chatrouter/app/client/weatherapi"
	"chatrouter/app/service/completion"
	"chatrouter/app/service/intent"
	"chatrouter/app/service/memory"
	"chatrouter/app/util/prompt"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/do"
)

//go:embed activity_prompt.txt
var activityPromptText string

var activityPrompt = prompt.MustParse(activityPromptText, "activity", "report")

const activityMaxTokens = 300

type Reply struct {
	Text string
	// Location actually looked up, empty when none was resolved
	Location string
}

type Service struct {
	memorySvc     *memory.Service
	completionSvc *completion.Service
	client        *weatherapi.Client
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		memorySvc:     do.MustInvoke[*memory.Service](di),
		completionSvc: do.MustInvoke[*completion.Service](di),
		client:        do.MustInvoke[*weatherapi.Client](di),
	}, nil
}

func NewService(memorySvc *memory.Service, completionSvc *completion.Service, client *weatherapi.Client) *Service {
	return &Service{
		memorySvc:     memorySvc,
		completionSvc: completionSvc,
		client:        client,
	}
}

// Reply never fails; every problem becomes a user-facing message.
func (s *Service) Reply(ctx context.Context, in intent.Result, history []memory.Turn) Reply {
	location := in.Location
	if location == "" {
		location = s.memorySvc.LastLocation()
	}
	if location == "" {
		return Reply{Text: msgAskLocation}
	}

	if !s.client.Configured() {
		return Reply{Text: msgNotConfigured, Location: location}
	}

	forecast, err := s.client.Forecast(ctx, location)
	if err != nil {
		if errors.Is(err, weatherapi.ErrNotFound) {
			return Reply{Text: fmt.Sprintf(msgUnknownPlace, location), Location: location}
		}

		slog.Error("Weather lookup failed",
			"location", location,
			"error", err,
		)
		return Reply{Text: fmt.Sprintf(msgProviderFailed, location), Location: location}
	}

	report := formatReport(forecast)

	if in.Activity != "" {
		if advice := s.activityAdvice(ctx, in.Activity, report, history); advice != "" {
			report += fmt.Sprintf("\n\n**Should you go %s?**\n\n%s", in.Activity, advice)
		}
	}

	return Reply{Text: report, Location: location}
}

func (s *Service) activityAdvice(ctx context.Context, activity, report string, history []memory.Turn) string {
	if !s.completionSvc.Enabled() {
		return ""
	}

	text, err := activityPrompt.Render(map[string]any{
		"activity": activity,
		"report":   report,
	})
	if err != nil {
		slog.Error("Failed to render activity prompt", "error", err)
		return ""
	}

	advice, err := s.completionSvc.Complete(ctx, completion.Request{
		Prompt:    text,
		History:   history,
		MaxTokens: activityMaxTokens,
	})
	if err != nil {
		slog.Warn("Activity advice failed, omitting it",
			"activity", activity,
			"error", err,
		)
		return ""
	}

	return advice
}
