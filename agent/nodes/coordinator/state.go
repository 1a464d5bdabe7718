// Package coordinatornode holds the node functions of the coordinator
// graph. Each node takes and returns the shared *GraphState.
package coordinatornode

import (
	"time"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

const (
	FallbackAnswer    = "I processed your query but couldn't find specific information to answer it."
	InteractionSource = "coordinator"
)

// Settings are the tunables the nodes read.
type Settings struct {
	ReuseMaxDistance   float64
	ReuseMinCount      int
	MemoryContextLimit int
	MemoryTermLimit    int
	WorkerTimeout      time.Duration
	RecordAgentState   bool
}

func DefaultSettings() Settings {
	return Settings{
		ReuseMaxDistance:   0.8,
		ReuseMinCount:      2,
		MemoryContextLimit: 5,
		MemoryTermLimit:    10,
		WorkerTimeout:      10 * time.Second,
		RecordAgentState:   true,
	}
}

type GraphInput struct {
	Query string
}

type GraphOutput struct {
	Response contractx.Response
}

type GraphState struct {
	Query string
	Terms []string
	Now   time.Time

	Plan          contractx.Plan
	MemoryContext contractx.MemoryContext
	MemoryElapsed float64
	Reuse         bool

	// Results in execution order; the synthetic memory result comes first.
	Results  []contractx.TaskResult
	Research *contractx.ResearchResults
	Analysis *contractx.Analysis

	Response contractx.Response
}

// runningContext is the metadata handed to downstream workers.
func (s *GraphState) runningContext() map[string]any {
	md := map[string]any{
		contractx.MetaMemoryContext: s.MemoryContext,
	}
	if s.Research != nil {
		md[contractx.MetaResearchResults] = *s.Research
	}
	if s.Analysis != nil {
		md[contractx.MetaAnalysisResults] = *s.Analysis
	}
	return md
}
