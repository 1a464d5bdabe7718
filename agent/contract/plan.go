package contract

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// ComplexityFor derives the informational complexity label from the number
// of workers a plan needs.
func ComplexityFor(agents int) Complexity {
	switch {
	case agents <= 1:
		return ComplexitySimple
	case agents == 2:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

type Step string

const (
	StepResearch        Step = "research"
	StepAnalysis        Step = "analysis"
	StepMemoryRetrieval Step = "memory_retrieval"
)

func (s Step) Agent() string {
	switch s {
	case StepResearch:
		return AgentResearch
	case StepAnalysis:
		return AgentAnalysis
	case StepMemoryRetrieval:
		return AgentMemory
	default:
		return ""
	}
}

const (
	PlanSourceRules = "rules"
	PlanSourceLLM   = "llm"
)

type Plan struct {
	Complexity     Complexity `json:"complexity"`
	AgentsNeeded   []string   `json:"agents_needed"`
	ExecutionOrder []Step     `json:"execution_order"`
	Reasoning      string     `json:"reasoning"`
	Source         string     `json:"source"`
}

func (p Plan) Has(step Step) bool {
	for _, s := range p.ExecutionOrder {
		if s == step {
			return true
		}
	}
	return false
}
