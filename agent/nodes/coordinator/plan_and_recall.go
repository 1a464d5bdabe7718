package coordinatornode

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/tanpawarit/chative-coordinator/agent/agents/memoryworker"
	"github.com/tanpawarit/chative-coordinator/agent/agents/planner"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

// PlanAndRecall computes the plan and fetches the memory context
// concurrently; neither depends on the other.
func PlanAndRecall(
	ctx context.Context,
	in *GraphState,
	p contractx.Planner,
	memoryWorker contractx.Worker,
	settings Settings,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	log := logx.Component("coordinator")

	var (
		plan    contractx.Plan
		planErr error
		mc      contractx.MemoryContext
		elapsed float64
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		if p == nil {
			plan = planner.RulePlan(in.Query)
			return
		}
		plan, planErr = p.Plan(ctx, in.Query)
	})
	wg.Go(func() {
		mc, elapsed = fetchMemoryContext(ctx, in, memoryWorker, settings)
	})
	if recovered := wg.WaitAndRecover(); recovered != nil {
		planErr = fmt.Errorf("%w: panic: %v", contractx.ErrWorkerFailure, recovered.Value)
	}

	if planErr != nil || len(plan.ExecutionOrder) == 0 {
		log.Warn().Err(planErr).Msg("planner failed, using rule-based plan")
		plan = planner.RulePlan(in.Query)
	}

	in.Plan = plan
	in.MemoryContext = mc
	in.MemoryElapsed = elapsed
	return in, nil
}

// fetchMemoryContext searches the conversation partition with the query
// plus its extracted terms, filtering hits by keyword overlap.
func fetchMemoryContext(
	ctx context.Context,
	in *GraphState,
	memoryWorker contractx.Worker,
	settings Settings,
) (contractx.MemoryContext, float64) {
	started := time.Now()
	empty := contractx.NewMemoryContext(nil)

	content := in.Query
	if len(in.Terms) > 0 {
		content = in.Query + " " + strings.Join(in.Terms, " ")
	}
	msg, err := taskMessage(contractx.AgentMemory, content, map[string]any{
		contractx.MetaOperation: memoryworker.OpSearch,
		"memory_type":           string(contractx.MemoryConversation),
		"limit":                 settings.MemoryContextLimit,
		"keywords":              in.Terms,
	})
	if err != nil {
		return empty, contractx.Elapsed(started)
	}

	res := InvokeWorker(ctx, memoryWorker, msg, settings.WorkerTimeout)
	if !res.Success {
		log := logx.Component("coordinator")
		log.Warn().Str("error", res.Error).Msg("memory context unavailable")
		return empty, res.ExecutionTime
	}
	return contractx.NormalizeMemoryContext(res.Data), res.ExecutionTime
}
