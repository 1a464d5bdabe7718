package coordinatornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanpawarit/chative-coordinator/agent/agents/memoryworker"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

// StoreInteraction persists the query and its answer as a conversation
// record so later queries can reuse it. Failures are logged only.
func StoreInteraction(
	ctx context.Context,
	in *GraphState,
	memoryWorker contractx.Worker,
	settings Settings,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	log := logx.Component("coordinator")

	// the record must land even when the query deadline has passed
	ctx = context.WithoutCancel(ctx)

	agentsUsed := make([]string, 0, len(in.Response.AgentResults))
	for _, r := range in.Results {
		if _, ok := in.Response.AgentResults[r.AgentID]; ok && !contains(agentsUsed, r.AgentID) {
			agentsUsed = append(agentsUsed, r.AgentID)
		}
	}

	msg, err := taskMessage(contractx.AgentMemory, "User asked: "+in.Query, map[string]any{
		contractx.MetaOperation: memoryworker.OpStore,
		"memory_type":           string(contractx.MemoryConversation),
		"source":                InteractionSource,
		"data": map[string]any{
			"query":       in.Query,
			"response":    in.Response.SynthesizedAnswer,
			"agents_used": agentsUsed,
			"confidence":  in.Response.Confidence,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("build interaction message")
		return in, nil
	}
	if res := InvokeWorker(ctx, memoryWorker, msg, settings.WorkerTimeout); !res.Success {
		log.Error().Str("error", res.Error).Msg("store interaction failed")
	} else {
		log.Debug().Msg("interaction stored")
	}

	if settings.RecordAgentState {
		recordAgentState(ctx, in, memoryWorker, settings)
	}
	return in, nil
}

func recordAgentState(ctx context.Context, in *GraphState, memoryWorker contractx.Worker, settings Settings) {
	steps := make([]string, 0, len(in.Plan.ExecutionOrder))
	for _, s := range in.Plan.ExecutionOrder {
		steps = append(steps, string(s))
	}
	note := fmt.Sprintf("plan=%s source=%s reused=%t", strings.Join(steps, ","), in.Plan.Source, in.Reuse)

	msg, err := taskMessage(contractx.AgentMemory, note, map[string]any{
		contractx.MetaOperation: memoryworker.OpStore,
		"memory_type":           string(contractx.MemoryAgentState),
		"agent":                 contractx.AgentCoordinator,
		"source":                InteractionSource,
		"data": map[string]any{
			"query":      in.Query,
			"complexity": string(in.Plan.Complexity),
			"success":    in.Response.Success,
		},
	})
	if err != nil {
		return
	}
	if res := InvokeWorker(ctx, memoryWorker, msg, settings.WorkerTimeout); !res.Success {
		log := logx.Component("coordinator")
		log.Warn().Str("error", res.Error).Msg("agent state note not stored")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
