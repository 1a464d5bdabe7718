package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

// QueryTool handles process_user_query.
type QueryTool struct {
	processor contractx.QueryProcessor
}

func NewQueryTool(processor contractx.QueryProcessor) *QueryTool {
	return &QueryTool{processor: processor}
}

func (t *QueryTool) Definition() mcp.Tool {
	return mcp.NewTool("process_user_query",
		mcp.WithDescription(
			"Run a query through the coordinator: plan, recall memory, research, analyze and synthesize an answer. "+
				"Returns the full response including the execution trace.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The user query, e.g. 'Compare transformers and neural networks'"),
		),
	)
}

func (t *QueryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	return jsonResult(t.processor.ProcessUserQuery(ctx, query))
}

// SearchTool handles memory_search.
type SearchTool struct {
	store contractx.MemoryStore
}

func NewSearchTool(store contractx.MemoryStore) *SearchTool {
	return &SearchTool{store: store}
}

func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_search",
		mcp.WithDescription("Search stored memories by similarity, with optional topic and keyword filters."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
		mcp.WithString("memory_type",
			mcp.Description("conversation (default), knowledge or agent_state"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of hits (default: 5)"),
		),
		mcp.WithString("topic",
			mcp.Description("Only return memories with this topic"),
		),
		mcp.WithString("keywords",
			mcp.Description("Comma-separated keywords; hits must share at least one"),
		),
	)
}

func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	memType, err := contractx.ParseMemoryType(req.GetString("memory_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	hits, err := t.store.Search(ctx, contractx.SearchRequest{
		Query:    query,
		Type:     memType,
		Limit:    intArg(req, "limit", 5),
		Topic:    req.GetString("topic", ""),
		Keywords: splitList(req.GetString("keywords", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(contractx.NewMemoryContext(hits))
}

// StoreTool handles memory_store.
type StoreTool struct {
	store contractx.MemoryStore
}

func NewStoreTool(store contractx.MemoryStore) *StoreTool {
	return &StoreTool{store: store}
}

func (t *StoreTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_store",
		mcp.WithDescription("Persist a memory so later queries can reuse it."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Text to remember"),
		),
		mcp.WithString("memory_type",
			mcp.Description("conversation (default), knowledge or agent_state"),
		),
		mcp.WithString("topic",
			mcp.Description("Topic label used by topic filters"),
		),
		mcp.WithString("keywords",
			mcp.Description("Comma-separated keywords (default: extracted from content)"),
		),
		mcp.WithString("source",
			mcp.Description("Where the memory came from"),
		),
		mcp.WithNumber("confidence",
			mcp.Description("Confidence in [0,1] (default: 0.5)"),
		),
	)
}

func (t *StoreTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := strings.TrimSpace(req.GetString("content", ""))
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	memType, err := contractx.ParseMemoryType(req.GetString("memory_type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	storeReq := contractx.StoreRequest{
		Type:     memType,
		Content:  content,
		Sender:   "mcp",
		Topic:    req.GetString("topic", ""),
		Keywords: splitList(req.GetString("keywords", "")),
		Source:   req.GetString("source", ""),
	}
	if v, ok := req.GetArguments()["confidence"].(float64); ok {
		storeReq.Confidence = &v
	}

	id, err := t.store.Store(ctx, storeReq)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return jsonResult(map[string]any{"memory_id": id, "memory_type": memType})
}

// StatsTool handles memory_stats.
type StatsTool struct {
	store contractx.MemoryStore
}

func NewStatsTool(store contractx.MemoryStore) *StatsTool {
	return &StatsTool{store: store}
}

func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("memory_stats",
		mcp.WithDescription("Report record counts per memory partition and the storage backend."),
	)
}

func (t *StatsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.store.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}

// intArg reads a numeric argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok || v <= 0 {
		return defaultVal
	}
	return int(v)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
