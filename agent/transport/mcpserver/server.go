// Package mcpserver exposes the coordinator and its memory as MCP tools
// served over stdio.
package mcpserver

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

const serverName = "chative-coordinator"

// New registers every tool on a fresh MCP server.
func New(processor contractx.QueryProcessor, store contractx.MemoryStore, version string) (*server.MCPServer, error) {
	if processor == nil {
		return nil, errors.New("query processor is required")
	}
	if store == nil {
		return nil, errors.New("memory store is required")
	}

	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	queryTool := NewQueryTool(processor)
	s.AddTool(queryTool.Definition(), queryTool.Handle)

	searchTool := NewSearchTool(store)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	storeTool := NewStoreTool(store)
	s.AddTool(storeTool.Definition(), storeTool.Handle)

	statsTool := NewStatsTool(store)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	return s, nil
}

// ServeStdio blocks until stdin closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = "Ask process_user_query for answers about AI and machine learning topics. " +
	"The coordinator remembers every interaction; use memory_search to look back, " +
	"memory_store to add knowledge and memory_stats to inspect the store."
