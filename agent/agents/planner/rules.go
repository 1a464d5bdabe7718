package planner

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/keyword"
)

var (
	researchWords = []string{"find", "search", "what", "types", "type", "information", "about", "research", "explain", "describe"}
	analysisWords = []string{"compare", "comparing", "comparison", "analyze", "analyse", "analysis", "evaluate", "effective", "effectiveness", "better", "best", "versus", "vs"}
	memoryWords   = []string{"remember", "earlier", "before", "what did", "previous", "previously"}
)

// RulePlanner classifies a query with whole-word keyword rules. It never
// fails and is the fallback for every other planner.
type RulePlanner struct{}

var _ contractx.Planner = RulePlanner{}

func (RulePlanner) Plan(_ context.Context, query string) (contractx.Plan, error) {
	return RulePlan(query), nil
}

func RulePlan(query string) contractx.Plan {
	var steps []contractx.Step

	if keyword.ContainsAny(query, researchWords...) {
		steps = append(steps, contractx.StepResearch)
	}
	if keyword.ContainsAny(query, analysisWords...) {
		steps = append(steps, contractx.StepAnalysis)
	}
	if keyword.ContainsAny(query, memoryWords...) {
		steps = append([]contractx.Step{contractx.StepMemoryRetrieval}, steps...)
	}
	if len(steps) == 0 {
		steps = []contractx.Step{contractx.StepResearch}
	}

	plan := buildPlan(orderDependencies(steps), contractx.PlanSourceRules)
	plan.Reasoning = fmt.Sprintf("Rule-based analysis: %d agents needed", len(plan.AgentsNeeded))
	return plan
}

// orderDependencies makes sure research runs before analysis, inserting
// it when missing.
func orderDependencies(steps []contractx.Step) []contractx.Step {
	analysisAt := -1
	researchAt := -1
	for i, s := range steps {
		switch s {
		case contractx.StepAnalysis:
			analysisAt = i
		case contractx.StepResearch:
			researchAt = i
		}
	}
	if analysisAt < 0 || (researchAt >= 0 && researchAt < analysisAt) {
		return steps
	}

	out := make([]contractx.Step, 0, len(steps)+1)
	for i, s := range steps {
		if s == contractx.StepResearch {
			continue
		}
		if i == analysisAt {
			out = append(out, contractx.StepResearch)
		}
		out = append(out, s)
	}
	return out
}

func buildPlan(steps []contractx.Step, source string) contractx.Plan {
	agents := make([]string, 0, len(steps))
	seen := make(map[string]struct{}, len(steps))
	for _, s := range steps {
		a := s.Agent()
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		agents = append(agents, a)
	}
	return contractx.Plan{
		Complexity:     contractx.ComplexityFor(len(agents)),
		AgentsNeeded:   agents,
		ExecutionOrder: steps,
		Source:         source,
	}
}
