// Package planner decides which workers answer a query and in what order.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

type plannerLLMOutput struct {
	Complexity     string   `json:"complexity"`
	AgentsNeeded   []string `json:"agents_needed"`
	ExecutionOrder []string `json:"execution_order"`
	Reasoning      string   `json:"reasoning"`
}

// LLMPlanner asks a chat model for a plan. Any failure to obtain or
// normalize the model output yields the rule-based plan instead.
type LLMPlanner struct {
	runner   compose.Runnable[string, contractx.Plan]
	fallback RulePlanner
	log      zerolog.Logger
}

var _ contractx.Planner = (*LLMPlanner)(nil)

func NewLLMPlanner(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*LLMPlanner, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: planner chat model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: planner prompt is empty", contractx.ErrPromptMissing)
	}
	runner, err := compilePlannerGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile planner graph: %v", contractx.ErrModelInvoke, err)
	}
	return &LLMPlanner{runner: runner, log: logx.Component("planner")}, nil
}

func (p *LLMPlanner) Plan(ctx context.Context, query string) (contractx.Plan, error) {
	plan, err := p.planWithModel(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return contractx.Plan{}, ctxErr
		}
		p.log.Warn().Err(fmt.Errorf("%w: %v", contractx.ErrPlanningFallback, err)).Msg("llm planning failed, using rules")
		return p.fallback.Plan(ctx, query)
	}
	return plan, nil
}

func (p *LLMPlanner) planWithModel(ctx context.Context, query string) (contractx.Plan, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return contractx.Plan{}, fmt.Errorf("%w: query is required", contractx.ErrValidation)
	}

	plan, err := p.runner.Invoke(ctx, query)
	if err != nil {
		return contractx.Plan{}, fmt.Errorf("%w: planner invoke: %w", contractx.ErrModelInvoke, err)
	}
	return plan, nil
}

// normalizeLLMPlan maps step or agent names onto steps, drops unknown and
// duplicate entries, places research before analysis and re-derives the
// complexity label.
func normalizeLLMPlan(out plannerLLMOutput) (contractx.Plan, error) {
	names := out.ExecutionOrder
	if len(names) == 0 {
		names = out.AgentsNeeded
	}

	var steps []contractx.Step
	seen := make(map[contractx.Step]struct{}, len(names))
	for _, name := range names {
		step, ok := parseStep(name)
		if !ok {
			continue
		}
		if _, dup := seen[step]; dup {
			continue
		}
		seen[step] = struct{}{}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return contractx.Plan{}, fmt.Errorf("%w: plan has no known steps", contractx.ErrSchemaViolation)
	}

	plan := buildPlan(orderDependencies(steps), contractx.PlanSourceLLM)
	plan.Reasoning = strings.TrimSpace(out.Reasoning)
	if plan.Reasoning == "" {
		plan.Reasoning = fmt.Sprintf("Model plan: %d agents needed", len(plan.AgentsNeeded))
	}
	return plan, nil
}

func parseStep(name string) (contractx.Step, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(contractx.StepResearch), contractx.AgentResearch:
		return contractx.StepResearch, true
	case string(contractx.StepAnalysis), contractx.AgentAnalysis:
		return contractx.StepAnalysis, true
	case string(contractx.StepMemoryRetrieval), contractx.AgentMemory, "memory":
		return contractx.StepMemoryRetrieval, true
	default:
		return "", false
	}
}
