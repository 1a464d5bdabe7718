package contract

type AgentResult struct {
	Data          Payload `json:"data"`
	Confidence    float64 `json:"confidence"`
	ExecutionTime float64 `json:"execution_time"`
}

// TraceEntry records one executed result. ExecutionTime is set for
// successful results and Error for failed ones.
type TraceEntry struct {
	Agent         string   `json:"agent"`
	Success       bool     `json:"success"`
	ExecutionTime *float64 `json:"execution_time,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type Response struct {
	Query             string                 `json:"query"`
	Success           bool                   `json:"success"`
	AgentResults      map[string]AgentResult `json:"agent_results"`
	SynthesizedAnswer string                 `json:"synthesized_answer"`
	Confidence        float64                `json:"confidence"`
	ExecutionTrace    []TraceEntry           `json:"execution_trace"`
	Plan              *Plan                  `json:"plan,omitempty"`
}

func (r Response) TraceFor(agent string) (TraceEntry, bool) {
	for _, e := range r.ExecutionTrace {
		if e.Agent == agent {
			return e, true
		}
	}
	return TraceEntry{}, false
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
