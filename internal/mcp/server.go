package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/port"
	"github.com/arturoeanton/scout/internal/service"
)

// Server implements the Model Context Protocol (MCP) server.
// It exposes the interview knowledge base as tools for external AI agents.
type Server struct {
	knowledge *service.KnowledgeService
	retrieval *service.RetrievalService
	audit     port.AuditWriter
	port      string
	srv       *server.MCPServer
}

// NewServer creates a new MCP server. audit may be nil.
func NewServer(knowledge *service.KnowledgeService, retrieval *service.RetrievalService, audit port.AuditWriter, listenPort, version string) *Server {
	s := &Server{
		knowledge: knowledge,
		retrieval: retrieval,
		audit:     audit,
		port:      listenPort,
		srv:       server.NewMCPServer("scout", version, server.WithToolCapabilities(false)),
	}

	s.srv.AddTool(mcp.NewTool("search_knowledge",
		mcp.WithDescription("Semantic search over stored interview knowledge. Returns ranked matches as JSON."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language search query.")),
		mcp.WithNumber("threshold", mcp.Description("Minimum cosine similarity in [-1, 1]. Defaults to the server setting.")),
		mcp.WithNumber("count", mcp.Description("Maximum number of matches.")),
	), s.audited("search_knowledge", s.handleSearch))

	s.srv.AddTool(mcp.NewTool("retrieve_context",
		mcp.WithDescription("Returns a prompt-ready context block of the interview knowledge most relevant to a query."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language query.")),
	), s.audited("retrieve_context", s.handleRetrieve))

	s.srv.AddTool(mcp.NewTool("store_knowledge",
		mcp.WithDescription("Embeds and stores a piece of interview knowledge."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Text to store.")),
		mcp.WithBoolean("split", mcp.Description("Split long content into chunks before storing.")),
	), s.audited("store_knowledge", s.handleStore))

	return s
}

// Start serves the tools over streamable HTTP on the configured port.
func (s *Server) Start() error {
	slog.Info("MCP server starting", "port", s.port)
	return server.NewStreamableHTTPServer(s.srv).Start(":" + s.port)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := service.RetrievalOptions{Count: req.GetInt("count", 0)}
	if _, ok := req.GetArguments()["threshold"]; ok {
		threshold := req.GetFloat("threshold", service.DefaultMatchThreshold)
		opts.Threshold = &threshold
	}

	matches, err := s.knowledge.Search(ctx, query, opts)
	if err != nil {
		return toolError(err)
	}

	out, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("encode matches: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleRetrieve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.retrieval.Retrieve(ctx, query, service.RetrievalOptions{})
	if err != nil {
		return toolError(err)
	}
	if !result.MatchesFound {
		return mcp.NewToolResultText("No relevant context found."), nil
	}
	return mcp.NewToolResultText(result.ContextText), nil
}

func (s *Server) handleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	docs, err := s.knowledge.Store(ctx, service.StoreRequest{
		Content:  content,
		Metadata: domain.Metadata{"source": "mcp"},
		Split:    req.GetBool("split", false),
	})
	if err != nil {
		return toolError(err)
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return mcp.NewToolResultText(fmt.Sprintf("Stored %d document(s): %s", len(ids), strings.Join(ids, ", "))), nil
}

// toolError reports caller mistakes and provider failures as tool results; anything else fails the call.
func toolError(err error) (*mcp.CallToolResult, error) {
	var (
		ve *port.ValidationError
		pe *port.ProviderError
	)
	if errors.As(err, &ve) || errors.As(err, &pe) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

// audited records each tool call through the audit writer.
func (s *Server) audited(tool string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, req)

		if s.audit != nil {
			details, _ := json.Marshal(map[string]any{
				"arguments":   req.GetArguments(),
				"is_error":    err != nil || (result != nil && result.IsError),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			entry := domain.AuditLog{
				Actor:      "mcp",
				Action:     domain.AuditActionMCPCall,
				Resource:   "tool",
				ResourceID: tool,
				Details:    string(details),
			}
			if writeErr := s.audit.WriteAudit(context.WithoutCancel(ctx), entry); writeErr != nil {
				slog.Error("failed to write audit log", "error", writeErr)
			}
		}
		return result, err
	}
}
