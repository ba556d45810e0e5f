package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/arturoeanton/scout/internal/adapter/store"
	"github.com/arturoeanton/scout/internal/domain"
	"github.com/arturoeanton/scout/internal/service"
)

type keywordEmbedder struct{}

func (keywordEmbedder) ModelName() string { return "keyword" }

func (keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if strings.Contains(t, "deploy") {
			out[i] = []float32{1, 0}
		} else {
			out[i] = []float32{0, 1}
		}
	}
	return out, nil
}

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore(2)
	embedder := service.NewEmbeddingService(keywordEmbedder{}, service.DefaultBatchSize, 1)
	retrieval := service.NewRetrievalService(embedder, mem, service.DefaultMatchThreshold, service.DefaultMatchCount)
	knowledge := service.NewKnowledgeService(embedder, mem, retrieval, 8000)
	return NewServer(knowledge, retrieval, mem, "0", "test"), mem
}

func call(t *testing.T, s *Server, tool string, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	result, err := s.audited(tool, handler)(context.Background(), req)
	if err != nil {
		t.Fatalf("%s: %v", tool, err)
	}
	return result
}

func text(r *mcp.CallToolResult) string {
	if len(r.Content) == 0 {
		return ""
	}
	tc, _ := r.Content[0].(mcp.TextContent)
	return tc.Text
}

func TestTools(t *testing.T) {
	s, mem := newTestServer(t)

	res := call(t, s, "store_knowledge", s.handleStore, map[string]any{"content": "We deploy every Friday."})
	if res.IsError || !strings.HasPrefix(text(res), "Stored 1 document(s)") {
		t.Fatalf("store = %q", text(res))
	}

	res = call(t, s, "search_knowledge", s.handleSearch, map[string]any{"query": "when do you deploy", "count": 3})
	var matches []domain.SimilarityMatch
	if err := json.Unmarshal([]byte(text(res)), &matches); err != nil {
		t.Fatalf("search result %q: %v", text(res), err)
	}
	if len(matches) != 1 || matches[0].Metadata["source"] != "mcp" {
		t.Errorf("matches = %+v", matches)
	}

	res = call(t, s, "search_knowledge", s.handleSearch, map[string]any{"query": "something else", "threshold": 0.9})
	if text(res) != "[]" {
		t.Errorf("unrelated search = %q", text(res))
	}

	res = call(t, s, "retrieve_context", s.handleRetrieve, map[string]any{"query": "deploy cadence"})
	if !strings.Contains(text(res), "We deploy every Friday.") {
		t.Errorf("context = %q", text(res))
	}

	res = call(t, s, "retrieve_context", s.handleRetrieve, map[string]any{"query": "hiring"})
	if text(res) != "No relevant context found." {
		t.Errorf("empty context = %q", text(res))
	}

	logs, _ := mem.ListAuditLogs(context.Background(), 0, domain.AuditActionMCPCall)
	if len(logs) != 5 || logs[0].ResourceID != "retrieve_context" {
		t.Errorf("audit logs = %+v", logs)
	}
}

func TestTools_InvalidArguments(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		tool    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
	}{
		{"search_knowledge", s.handleSearch, map[string]any{}},
		{"search_knowledge", s.handleSearch, map[string]any{"query": "   "}},
		{"retrieve_context", s.handleRetrieve, map[string]any{"query": 7}},
		{"store_knowledge", s.handleStore, map[string]any{"content": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			if res := call(t, s, tt.tool, tt.handler, tt.args); !res.IsError {
				t.Errorf("IsError = false, text = %q", text(res))
			}
		})
	}
}
