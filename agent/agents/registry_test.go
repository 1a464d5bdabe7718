package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/tanpawarit/chative-coordinator/agent/agents/planner"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/knowledge"
	llmx "github.com/tanpawarit/chative-coordinator/agent/llm"
	"github.com/tanpawarit/chative-coordinator/agent/memory"
)

func TestNewRegistryWithoutModelUsesRules(t *testing.T) {
	t.Parallel()

	store, err := memory.Open(context.Background(), memory.Config{StoragePath: t.TempDir()})
	if err != nil {
		t.Fatalf("memory.Open() error = %v", err)
	}
	defer store.Close()

	reg, err := NewRegistry(context.Background(), llmx.Config{}, knowledge.Default(), store)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if _, ok := reg.Planner().(planner.RulePlanner); !ok {
		t.Fatalf("expected rule planner, got %T", reg.Planner())
	}
	ids := []string{reg.Research().ID(), reg.Analysis().ID(), reg.Memory().ID()}
	want := []string{contractx.AgentResearch, contractx.AgentAnalysis, contractx.AgentMemory}
	for i := range ids {
		if ids[i] != want[i] {
			t.Fatalf("unexpected worker ids: %v", ids)
		}
	}
}

func TestNewRegistryValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(context.Background(), llmx.Config{}, nil, nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := NewRegistry(context.Background(), llmx.Config{APIKey: "k"}, knowledge.Default(), nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing model, got %v", err)
	}
}
