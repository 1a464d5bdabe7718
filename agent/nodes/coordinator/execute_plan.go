package coordinatornode

import (
	"context"
	"fmt"

	"github.com/tanpawarit/chative-coordinator/agent/agents/memoryworker"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

const (
	memoryHitConfidence   = 0.6
	memoryEmptyConfidence = 0.3
	reusedEmptyConfidence = 0.5
)

// ShouldReuse decides whether stored memory replaces fresh research.
func ShouldReuse(mc contractx.MemoryContext, settings Settings) bool {
	if mc.BestDistance != nil && *mc.BestDistance <= settings.ReuseMaxDistance {
		return true
	}
	return settings.ReuseMinCount > 0 && mc.Count >= settings.ReuseMinCount
}

func ExecutePlan(
	ctx context.Context,
	in *GraphState,
	registry contractx.Registry,
	settings Settings,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	log := logx.Component("coordinator")

	in.Reuse = ShouldReuse(in.MemoryContext, settings)
	log.Info().
		Interface("best_distance", in.MemoryContext.BestDistance).
		Int("count", in.MemoryContext.Count).
		Bool("skip_research", in.Reuse).
		Msg("reuse decision")

	in.Results = append(in.Results, memoryResult(in))

	for _, step := range in.Plan.ExecutionOrder {
		if err := ctx.Err(); err != nil {
			in.Results = append(in.Results, contractx.FailedResult(step.Agent(), in.Now, err))
			break
		}

		var res contractx.TaskResult
		switch step {
		case contractx.StepResearch:
			if in.Reuse {
				res = reusedResearch(in)
			} else {
				res = dispatch(ctx, in, registry.Research(), contractx.AgentResearch, nil, settings)
			}
			if p, ok := res.Data.(contractx.ResearchPayload); ok && res.Success {
				research := p.ResearchResults
				in.Research = &research
			}
		case contractx.StepAnalysis:
			res = dispatch(ctx, in, registry.Analysis(), contractx.AgentAnalysis, nil, settings)
			if p, ok := res.Data.(contractx.AnalysisPayload); ok && res.Success {
				analysis := p.Analysis
				in.Analysis = &analysis
			}
		case contractx.StepMemoryRetrieval:
			res = dispatch(ctx, in, registry.Memory(), contractx.AgentMemory, map[string]any{
				contractx.MetaOperation: memoryworker.OpSearch,
				"limit":                 settings.MemoryContextLimit,
				"keywords":              in.Terms,
			}, settings)
		default:
			continue
		}

		log.Debug().
			Str("step", string(step)).
			Str("agent", res.AgentID).
			Bool("success", res.Success).
			Float64("execution_time", res.ExecutionTime).
			Msg("step finished")
		in.Results = append(in.Results, res)
	}
	return in, nil
}

func dispatch(
	ctx context.Context,
	in *GraphState,
	worker contractx.Worker,
	agentID string,
	extra map[string]any,
	settings Settings,
) contractx.TaskResult {
	md := in.runningContext()
	for k, v := range extra {
		md[k] = v
	}
	msg, err := taskMessage(agentID, in.Query, md)
	if err != nil {
		return contractx.FailedResult(agentID, in.Now, err)
	}
	return InvokeWorker(ctx, worker, msg, settings.WorkerTimeout)
}

// memoryResult records that memory was consulted, and whether it was used.
func memoryResult(in *GraphState) contractx.TaskResult {
	confidence := memoryEmptyConfidence
	if in.MemoryContext.Count > 0 {
		confidence = memoryHitConfidence
	}
	return contractx.TaskResult{
		AgentID: contractx.AgentMemory,
		Success: true,
		Data: contractx.MemoryPayload{
			Action:       contractx.MemoryActionContext,
			Query:        in.Query,
			Results:      in.MemoryContext.Results,
			Count:        in.MemoryContext.Count,
			BestDistance: in.MemoryContext.BestDistance,
			Used:         in.Reuse,
			Consulted:    true,
		},
		Confidence:    confidence,
		ExecutionTime: in.MemoryElapsed,
	}
}

// reusedResearch stands in for the research worker. Its zero execution
// time marks research as skipped.
func reusedResearch(in *GraphState) contractx.TaskResult {
	confidence := reusedEmptyConfidence
	if in.MemoryContext.Count > 0 {
		confidence = memoryHitConfidence
	}
	return contractx.TaskResult{
		AgentID: contractx.AgentResearch,
		Success: true,
		Data: contractx.ResearchPayload{
			ResearchResults: contractx.ResearchResults{
				Source:       contractx.ResearchSourceMemory,
				Hits:         in.MemoryContext.Results,
				BestDistance: in.MemoryContext.BestDistance,
				Reused:       true,
			},
			Query: in.Query,
		},
		Confidence:    confidence,
		ExecutionTime: 0,
	}
}
