// Package mcpserver exposes the chat dispatcher as an MCP tool over stdio.
package mcpserver

import (
	"chatrouter/app/service/conversation"
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const (
	serverName    = "chatrouter"
	serverVersion = "1.0.0"

	ToolChat = "chat"
)

type Server struct {
	conversationSvc *conversation.Service
	mcpServer       *server.MCPServer
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(do.MustInvoke[*conversation.Service](di)), nil
}

func NewServer(conversationSvc *conversation.Service) *Server {
	s := &Server{
		conversationSvc: conversationSvc,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Send user messages to the chat tool. It answers weather, news and general questions and keeps per-session context."),
	)

	s.mcpServer.AddTool(mcp.NewTool(ToolChat,
		mcp.WithDescription("Route a user message to the weather, news or conversational responder and return the reply"),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The user's message"),
		),
		mcp.WithString("session_id",
			mcp.Description("Conversation id; omit to use the shared default session"),
		),
	), s.handleChat)

	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Run serves MCP over stdin/stdout until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	slog.Info("MCP stdio server started")

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.conversationSvc.HandleChatRequest(ctx, conversation.Request{
		Message:   message,
		SessionID: request.GetString("session_id", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultStructured(resp, resp.Reply), nil
}
