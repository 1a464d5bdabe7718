// Package agents composes the planner and the workers the coordinator
// dispatches to.
package agents

import (
	"context"
	"fmt"

	"github.com/tanpawarit/chative-coordinator/agent/agents/analysis"
	"github.com/tanpawarit/chative-coordinator/agent/agents/memoryworker"
	"github.com/tanpawarit/chative-coordinator/agent/agents/planner"
	"github.com/tanpawarit/chative-coordinator/agent/agents/research"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	llmx "github.com/tanpawarit/chative-coordinator/agent/llm"
	promptx "github.com/tanpawarit/chative-coordinator/agent/prompt"
)

type registryImpl struct {
	planner  contractx.Planner
	research contractx.Worker
	analysis contractx.Worker
	memory   contractx.Worker
}

func (r *registryImpl) Planner() contractx.Planner {
	return r.planner
}

func (r *registryImpl) Research() contractx.Worker {
	return r.research
}

func (r *registryImpl) Analysis() contractx.Worker {
	return r.analysis
}

func (r *registryImpl) Memory() contractx.Worker {
	return r.memory
}

// NewRegistry builds the default workers over kb and store. The planner
// talks to a chat model when cfg carries an api key and uses keyword rules
// otherwise.
func NewRegistry(
	ctx context.Context,
	cfg llmx.Config,
	kb contractx.KnowledgeSource,
	store contractx.MemoryStore,
) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if kb == nil {
		return nil, fmt.Errorf("%w: knowledge source is required", contractx.ErrValidation)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: memory store is required", contractx.ErrValidation)
	}

	var p contractx.Planner = planner.RulePlanner{}
	if cfg.Enabled() {
		prompts := promptx.LoadPromptSet()
		if err := prompts.Validate(); err != nil {
			return nil, err
		}
		modelCfg := cfg.OpenRouterFor(contractx.AgentCoordinator)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create planner model: %v", contractx.ErrModelInvoke, err)
		}
		p, err = planner.NewLLMPlanner(ctx, chatModel, prompts.Planner)
		if err != nil {
			return nil, err
		}
	}

	return NewStaticRegistry(
		p,
		research.New(kb),
		analysis.New(),
		memoryworker.New(store),
	), nil
}

// NewStaticRegistry wires already constructed components.
func NewStaticRegistry(p contractx.Planner, researchW, analysisW, memoryW contractx.Worker) contractx.Registry {
	return &registryImpl{
		planner:  p,
		research: researchW,
		analysis: analysisW,
		memory:   memoryW,
	}
}
