// Package api serves the chat dispatcher over HTTP.
package api

import (
	"chatrouter/app/config"
	"chatrouter/app/service/completion"
	"chatrouter/app/service/conversation"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/samber/do"
)

const shutdownTimeout = 10 * time.Second

var _ do.Shutdownable = (*Server)(nil)

type Server struct {
	listen          string
	conversationSvc *conversation.Service
	completionSvc   *completion.Service
	validate        *validator.Validate
	app             *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewServer(
		cfg.Server,
		do.MustInvoke[*conversation.Service](di),
		do.MustInvoke[*completion.Service](di),
	), nil
}

func NewServer(cfg config.Server, conversationSvc *conversation.Service, completionSvc *completion.Service) *Server {
	s := &Server{
		listen:          cfg.Listen,
		conversationSvc: conversationSvc,
		completionSvc:   completionSvc,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "chatrouter",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())

	group := s.app.Group("/api")
	group.Post("/chat", s.handleChat)
	group.Get("/health", s.handleHealth)

	return s
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Run blocks until ctx is canceled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			slog.Error("HTTP shutdown failed", slog.Any("error", err))
		}
	}()

	slog.Info("HTTP server started", slog.String("listen", s.listen))

	if err := s.app.Listen(s.listen); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}

	return nil
}

func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	history, err := req.turns()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid history: %v", err))
	}

	resp, err := s.conversationSvc.HandleChatRequest(c.UserContext(), conversation.Request{
		Message:   req.Message,
		SessionID: req.SessionID,
		History:   history,
	})
	if errors.Is(err, conversation.ErrEmptyMessage) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(healthResponse{
		Status:     "ok",
		LLMEnabled: s.completionSvc.Enabled(),
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	} else {
		slog.Error("Request failed",
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
	}

	return c.Status(code).JSON(errorResponse{Error: message})
}
