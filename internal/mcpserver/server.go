// Package mcpserver exposes the memory service as Model Context Protocol
// tools so agents can store facts and verify drafts before replying.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Harshitk-cp/groundcheck/internal/domain"
	"github.com/Harshitk-cp/groundcheck/internal/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const DefaultThread = "default"

// Server wraps the memory service with MCP tool handlers.
type Server struct {
	svc       *service.MemoryService
	logger    *zap.Logger
	mcpServer *server.MCPServer
}

func New(svc *service.MemoryService, version string, logger *zap.Logger) *Server {
	s := &Server{
		svc:    svc,
		logger: logger,
		mcpServer: server.NewMCPServer(
			"groundcheck",
			version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying server for transports.
func (s *Server) MCP() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving JSON-RPC over stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	storeFact := mcp.NewTool("store_fact",
		mcp.WithDescription("Store a fact about the user. Returns any contradictions with facts already stored in the thread."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The fact in plain language, e.g. \"User works at Microsoft\""),
		),
		mcp.WithString("source",
			mcp.Description("Where the fact came from; sets its default trust"),
			mcp.Enum(string(domain.SourceUser), string(domain.SourceDocument), string(domain.SourceCode), string(domain.SourceInferred)),
			mcp.DefaultString(string(domain.SourceUser)),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation or user the fact belongs to"),
			mcp.DefaultString(DefaultThread),
		),
	)
	s.mcpServer.AddTool(storeFact, s.handleStoreFact)

	checkMemory := mcp.NewTool("check_memory",
		mcp.WithDescription("List what is known in a thread, ranked by relevance to the query, with any contradictions."),
		mcp.WithString("query",
			mcp.Description("What you want to know"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation or user to look in"),
			mcp.DefaultString(DefaultThread),
		),
	)
	s.mcpServer.AddTool(checkMemory, s.handleCheckMemory)

	verifyOutput := mcp.NewTool("verify_output",
		mcp.WithDescription("Verify a draft reply against the thread's stored facts before sending it."),
		mcp.WithString("draft",
			mcp.Required(),
			mcp.Description("The draft reply to verify"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation or user to verify against"),
			mcp.DefaultString(DefaultThread),
		),
		mcp.WithString("mode",
			mcp.Description("strict returns a corrected draft; permissive only reports"),
			mcp.Enum(string(domain.ModeStrict), string(domain.ModePermissive)),
			mcp.DefaultString(string(domain.ModeStrict)),
		),
	)
	s.mcpServer.AddTool(verifyOutput, s.handleVerifyOutput)
}

func (s *Server) handleStoreFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.Store(ctx, service.StoreRequest{
		ThreadID: threadID(request),
		Text:     text,
		Source:   domain.MemorySource(strings.ToLower(request.GetString("source", string(domain.SourceUser)))),
	})
	if err != nil {
		return s.toolError("store_fact", err), nil
	}

	resp := map[string]any{
		"stored":          true,
		"memory_id":       result.Memory.ID,
		"trust":           result.Memory.Trust,
		"facts_extracted": result.FactsExtracted,
		"total_memories":  result.TotalMemories,
		"contradictions":  result.Contradictions,
	}
	if len(result.Contradictions) > 0 {
		resp["warning"] = "This fact conflicts with facts already stored. Confirm with the user which is current."
	}
	return jsonResult(resp)
}

func (s *Server) handleCheckMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.svc.Check(ctx, threadID(request), request.GetString("query", ""))
	if err != nil {
		return s.toolError("check_memory", err), nil
	}
	return jsonResult(result)
}

func (s *Server) handleVerifyOutput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft, err := request.RequireString("draft")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := domain.Mode(strings.ToLower(request.GetString("mode", string(domain.ModeStrict))))

	result, err := s.svc.VerifyDraft(ctx, threadID(request), draft, mode)
	if err != nil {
		return s.toolError("verify_output", err), nil
	}
	return jsonResult(result)
}

func threadID(request mcp.CallToolRequest) string {
	id := strings.TrimSpace(request.GetString("thread_id", DefaultThread))
	if id == "" {
		return DefaultThread
	}
	return id
}

// toolError reports validation errors to the caller as-is and hides
// everything else behind a generic message.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, service.ErrTextEmpty),
		errors.Is(err, service.ErrThreadIDMissing),
		errors.Is(err, service.ErrInvalidTrust),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidSource):
		return mcp.NewToolResultError(err.Error())
	}
	s.logger.Error("tool call failed", zap.String("tool", tool), zap.Error(err))
	return mcp.NewToolResultError(tool + " failed")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
