package conversation

import (
	"chatrouter/app/service/general"
	"chatrouter/app/service/intent"
	"chatrouter/app/service/memory"
	"chatrouter/app/service/news"
	"chatrouter/app/service/weather"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Service struct {
	memorySvc  *memory.Service
	intentSvc  *intent.Service
	weatherSvc *weather.Service
	newsSvc    *news.Service
	generalSvc *general.Service
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*memory.Service](di),
		do.MustInvoke[*intent.Service](di),
		do.MustInvoke[*weather.Service](di),
		do.MustInvoke[*news.Service](di),
		do.MustInvoke[*general.Service](di),
	), nil
}

func NewService(
	memorySvc *memory.Service,
	intentSvc *intent.Service,
	weatherSvc *weather.Service,
	newsSvc *news.Service,
	generalSvc *general.Service,
) *Service {
	return &Service{
		memorySvc:  memorySvc,
		intentSvc:  intentSvc,
		weatherSvc: weatherSvc,
		newsSvc:    newsSvc,
		generalSvc: generalSvc,
	}
}

// HandleChatRequest fails only for an empty message. Everything else ends in
// a reply, at worst a generic apology.
func (s *Service) HandleChatRequest(ctx context.Context, req Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	startTime := time.Now()
	requestID := uuid.NewString()
	sessionID := lo.CoalesceOrEmpty(strings.TrimSpace(req.SessionID), memory.DefaultSession)

	logger := slog.With(
		"request_id", requestID,
		"session_id", sessionID,
	)

	s.memorySvc.Seed(sessionID, req.History)
	history := s.memorySvc.History(sessionID)

	result := s.intentSvc.Classify(ctx, message)
	s.memorySvc.SetLastLocation(result.Location)

	resp := &Response{
		Intent:    result.Intent,
		Location:  result.Location,
		Topic:     result.Topic,
		SessionID: sessionID,
	}

	var path string
	err := oops.
		In("conversation").
		With("request_id", requestID, "intent", result.Intent).
		Recoverf(func() {
			path = s.route(ctx, message, result, history, resp)
		}, "response strategy panicked")
	if err != nil {
		logger.Error("Failed to build reply",
			"intent", result.Intent,
			"error", err,
		)
		resp.Reply = msgFailure
	}

	s.memorySvc.Append(sessionID, memory.UserTurn(message), memory.AgentTurn(resp.Reply))

	logger.Info("Handled chat request",
		"intent", resp.Intent,
		"location", resp.Location,
		"topic", resp.Topic,
		"path", path,
		"duration", time.Since(startTime),
	)

	return resp, nil
}

// route fills the reply and returns which responder produced it.
func (s *Service) route(ctx context.Context, message string, result intent.Result, history []memory.Turn, resp *Response) string {
	switch result.Intent {
	case intent.Weather:
		reply := s.weatherSvc.Reply(ctx, result, history)
		resp.Reply = reply.Text
		resp.Location = reply.Location
		return intent.Weather
	case intent.News:
		reply := s.newsSvc.Reply(ctx, message, result)
		resp.Reply = reply.Text
		resp.Topic = reply.Topic
		return intent.News
	default:
		reply := s.generalSvc.Reply(ctx, message, history)
		resp.Intent = intent.General
		resp.Reply = reply.Text
		return intent.General + "/" + reply.Path
	}
}
