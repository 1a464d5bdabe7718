package tool

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// NewExecutor returns the executor available to the analysis worker.
// Unknown tools resolve to an unavailable result rather than an error.
func NewExecutor(agentID string) Executor {
	fallback := DefaultExecutor(agentID)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		if err := ctx.Err(); err != nil {
			return contractx.ToolResult{}, err
		}
		switch tool {
		case ToolMathEvaluate:
			return executeMathTool(tool, args)
		default:
			return fallback(ctx, tool, args)
		}
	}
}

func DefaultExecutor(agentID string) Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", tool, agentID),
		}, nil
	}
}
