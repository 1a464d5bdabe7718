package tool

import (
	"context"
	"testing"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

func TestDefaultExecutorUnavailableMessage(t *testing.T) {
	t.Parallel()

	executor := DefaultExecutor(contractx.AgentAnalysis)
	out, err := executor(context.Background(), "knowledge_base.search", map[string]any{"query": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tool != "knowledge_base.search" {
		t.Fatalf("unexpected tool: %s", out.Tool)
	}
	if out.Error == "" {
		t.Fatal("expected non-empty error message")
	}
}

func TestNewExecutorMathEvaluate(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(contractx.AgentAnalysis)
	out, err := executor(context.Background(), ToolMathEvaluate, map[string]any{
		"expression": "2 + 3 * (4 - 1)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error != "" {
		t.Fatalf("unexpected tool error: %s", out.Error)
	}
	result, ok := out.Result.(MathEvaluateOutput)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if result.Result != 11 {
		t.Fatalf("unexpected result: %v", result.Result)
	}
}

func TestNewExecutorMathEvaluateInvalidExpression(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(contractx.AgentAnalysis)
	out, err := executor(context.Background(), ToolMathEvaluate, map[string]any{
		"expression": "2 + abc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected validation error")
	}
}

func TestNewExecutorCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewExecutor(contractx.AgentAnalysis)(ctx, ToolMathEvaluate, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestExtractExpression(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"calculate 2 + 3 * 4 for me":          "2 + 3 * 4",
		"Calculate (10 - 4) / 2 please":       "(10 - 4) / 2",
		"calculate the efficiency of BERT":    "",
		"calculate 7":                         "7",
		"calculate 3^2 then tell me the cost": "3^2",
	}
	for in, want := range cases {
		if got := ExtractExpression(in); got != want {
			t.Fatalf("ExtractExpression(%q) = %q, want %q", in, got, want)
		}
	}
}
