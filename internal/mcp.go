package internal

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer exposes the assistant as MCP tools. Both tools route
// through the same orchestrator entry point the other transports use,
// so summaries are cached and follow-up questions share history.
type MCPServer struct {
	session         *Session
	defaultLanguage string
	mcpServer       *server.MCPServer
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(session *Session, defaultLanguage string) *MCPServer {
	mcpServer := server.NewMCPServer(
		"tubechat-server",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		session:         session,
		defaultLanguage: defaultLanguage,
		mcpServer:       mcpServer,
	}
	s.registerTools()
	return s
}

func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("summarize_video",
		mcp.WithDescription("Fetch a YouTube video's metadata and transcript and return an AI-generated summary. Results are cached: summarizing the same video again returns the stored summary without extra API calls."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or 11-character video ID"),
			mcp.Required(),
		),
		mcp.WithString("session",
			mcp.Description("Opaque session identifier; follow-up ask_video calls with the same session discuss this video"),
		),
	), s.handleSummarizeVideo)

	s.mcpServer.AddTool(mcp.NewTool("ask_video",
		mcp.WithDescription("Ask a question about the most recent video summarized in this session. The answer is grounded in the video's transcript and the session's conversation history. Requires a prior summarize_video call for the session."),
		mcp.WithString("question",
			mcp.Description("Question about the video's content"),
			mcp.Required(),
		),
		mcp.WithString("session",
			mcp.Description("Session identifier used with summarize_video"),
		),
	), s.handleAskVideo)
}

// sessionUserID maps an opaque session string to a stable user id so
// the MCP transport shares the same per-user conversation model as the
// chat transports.
func sessionUserID(session string) int64 {
	if session == "" {
		session = "mcp"
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(session))
	return int64(h.Sum64())
}

func (s *MCPServer) dispatch(ctx context.Context, session, text string) (*mcp.CallToolResult, error) {
	var out collectReplier
	msg := InboundMessage{
		UserID:   sessionUserID(session),
		Language: s.defaultLanguage,
		Text:     text,
	}
	if err := s.session.HandleMessage(ctx, msg, &out); err != nil {
		return mcp.NewToolResultErrorFromErr("handling message", err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(out.text)},
	}, nil
}

func (s *MCPServer) handleSummarizeVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	if _, ok := ExtractVideoID(url); !ok {
		return mcp.NewToolResultError("could not find a YouTube video ID in the url parameter"), nil
	}
	return s.dispatch(ctx, request.GetString("session", ""), url)
}

func (s *MCPServer) handleAskVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question parameter is required and must be a string"), nil
	}
	return s.dispatch(ctx, request.GetString("session", ""), question)
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httpServer.Start(addr)
	}

	// Default to stdio transport
	return server.ServeStdio(s.mcpServer)
}

// collectReplier captures the final reply for transports that return a
// single result instead of streaming messages.
type collectReplier struct {
	text string
}

func (c *collectReplier) Reply(_ context.Context, text string) error {
	c.text = text
	return nil
}

func (c *collectReplier) Status(context.Context, string) error { return nil }
