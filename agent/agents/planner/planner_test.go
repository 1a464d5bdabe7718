package planner

import (
	"context"
	"errors"
	"reflect"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

type fakeChatModel struct {
	responses []*schema.Message
	err       error
	idx       int
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func steps(s ...contractx.Step) []contractx.Step { return s }

func TestRulePlan(t *testing.T) {
	t.Parallel()

	cases := []struct {
		query      string
		order      []contractx.Step
		complexity contractx.Complexity
	}{
		{"What types of neural networks exist?", steps(contractx.StepResearch), contractx.ComplexitySimple},
		{"Compare CNN and RNN", steps(contractx.StepResearch, contractx.StepAnalysis), contractx.ComplexityModerate},
		{"Which optimizer is best?", steps(contractx.StepResearch, contractx.StepAnalysis), contractx.ComplexityModerate},
		{"What did we discuss earlier about transformers? Compare them.", steps(contractx.StepMemoryRetrieval, contractx.StepResearch, contractx.StepAnalysis), contractx.ComplexityComplex},
		{"Research transformer architectures and summarize tradeoffs", steps(contractx.StepResearch), contractx.ComplexitySimple},
		{"hello there", steps(contractx.StepResearch), contractx.ComplexitySimple},
		{"do you remember me", steps(contractx.StepMemoryRetrieval), contractx.ComplexitySimple},
	}
	for _, tc := range cases {
		plan := RulePlan(tc.query)
		if !reflect.DeepEqual(plan.ExecutionOrder, tc.order) {
			t.Fatalf("%q: unexpected order %v", tc.query, plan.ExecutionOrder)
		}
		if plan.Complexity != tc.complexity {
			t.Fatalf("%q: unexpected complexity %s", tc.query, plan.Complexity)
		}
		if len(plan.AgentsNeeded) != len(tc.order) {
			t.Fatalf("%q: unexpected agents %v", tc.query, plan.AgentsNeeded)
		}
		if plan.Source != contractx.PlanSourceRules {
			t.Fatalf("%q: unexpected source %s", tc.query, plan.Source)
		}
	}
}

func TestRulePlanAnalysisWordsAreWholeWord(t *testing.T) {
	t.Parallel()

	// "bestseller" must not trigger analysis through "best"
	plan := RulePlan("list bestseller books")
	if plan.Has(contractx.StepAnalysis) {
		t.Fatalf("unexpected analysis step: %v", plan.ExecutionOrder)
	}
}

func TestOrderDependencies(t *testing.T) {
	t.Parallel()

	got := orderDependencies(steps(contractx.StepMemoryRetrieval, contractx.StepAnalysis, contractx.StepResearch))
	want := steps(contractx.StepMemoryRetrieval, contractx.StepResearch, contractx.StepAnalysis)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("orderDependencies() = %v, want %v", got, want)
	}
}

func TestLLMPlannerSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{responses: []*schema.Message{{
		Content: `{"complexity":"complex","agents_needed":["analysis_agent"],"execution_order":["analysis","analysis","teleport"],"reasoning":"needs comparison"}`,
	}}}
	p, err := NewLLMPlanner(context.Background(), fake, "planner prompt")
	if err != nil {
		t.Fatalf("NewLLMPlanner() error = %v", err)
	}

	plan, err := p.Plan(context.Background(), "compare CNN and RNN")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.Source != contractx.PlanSourceLLM {
		t.Fatalf("unexpected source: %s", plan.Source)
	}
	if !reflect.DeepEqual(plan.ExecutionOrder, steps(contractx.StepResearch, contractx.StepAnalysis)) {
		t.Fatalf("unexpected order: %v", plan.ExecutionOrder)
	}
	if plan.Complexity != contractx.ComplexityModerate {
		t.Fatalf("complexity must be re-derived, got %s", plan.Complexity)
	}
	if plan.Reasoning != "needs comparison" {
		t.Fatalf("unexpected reasoning: %q", plan.Reasoning)
	}
}

func TestLLMPlannerFallsBackSilently(t *testing.T) {
	t.Parallel()

	cases := map[string]*fakeChatModel{
		"model error":   {err: errors.New("boom")},
		"not json":      {responses: []*schema.Message{{Content: "I think you need research"}}},
		"unknown steps": {responses: []*schema.Message{{Content: `{"execution_order":["dance"]}`}}},
	}
	for name, fake := range cases {
		p, err := NewLLMPlanner(context.Background(), fake, "planner prompt")
		if err != nil {
			t.Fatalf("%s: NewLLMPlanner() error = %v", name, err)
		}
		plan, err := p.Plan(context.Background(), "Compare CNN and RNN")
		if err != nil {
			t.Fatalf("%s: fallback must not surface an error, got %v", name, err)
		}
		if plan.Source != contractx.PlanSourceRules {
			t.Fatalf("%s: expected rule plan, got %s", name, plan.Source)
		}
		if !reflect.DeepEqual(plan.ExecutionOrder, steps(contractx.StepResearch, contractx.StepAnalysis)) {
			t.Fatalf("%s: unexpected order %v", name, plan.ExecutionOrder)
		}
	}
}

func TestNewLLMPlannerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewLLMPlanner(context.Background(), nil, "p"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := NewLLMPlanner(context.Background(), &fakeChatModel{}, " "); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}
