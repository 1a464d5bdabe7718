package contract

import (
	"encoding/json"
	"sort"
	"strings"
)

type PayloadKind string

const (
	PayloadEmpty    PayloadKind = "empty"
	PayloadResearch PayloadKind = "research"
	PayloadAnalysis PayloadKind = "analysis"
	PayloadMemory   PayloadKind = "memory"
)

// Payload is the per-worker variant carried in TaskResult.Data.
// Consumers switch on the concrete type.
type Payload interface {
	Kind() PayloadKind
}

type EmptyPayload struct {
	Extra map[string]any `json:"extra,omitempty"`
}

func (EmptyPayload) Kind() PayloadKind { return PayloadEmpty }

// TopicFacts holds list-valued facets, nested maps and free-text
// descriptions of one knowledge topic.
type TopicFacts map[string]any

// Text is the lower-cased JSON rendering used for substring matching.
func (f TopicFacts) Text() string {
	raw, err := json.Marshal(map[string]any(f))
	if err != nil {
		return ""
	}
	return strings.ToLower(string(raw))
}

const (
	ResearchSourceKnowledge = "knowledge"
	ResearchSourceMemory    = "memory"
)

type KnowledgeLimitation struct {
	Message         string   `json:"message"`
	SuggestedTopics []string `json:"suggested_topics"`
}

type ResearchResults struct {
	Source       string                `json:"source"`
	Topics       map[string]TopicFacts `json:"topics,omitempty"`
	Limitation   *KnowledgeLimitation  `json:"knowledge_limitation,omitempty"`
	Hits         []MemoryHit           `json:"hits,omitempty"`
	BestDistance *float64              `json:"best_distance,omitempty"`
	Reused       bool                  `json:"reused,omitempty"`
}

func (r ResearchResults) FromMemory() bool {
	return r.Source == ResearchSourceMemory
}

// Items returns item name -> lower-cased serialized text. Knowledge results
// are keyed by topic, reused memory results by record id.
func (r ResearchResults) Items() map[string]string {
	out := make(map[string]string, len(r.Topics)+len(r.Hits))
	if r.FromMemory() {
		for _, h := range r.Hits {
			out[h.ID] = strings.ToLower(h.Content)
		}
		return out
	}
	for name, facts := range r.Topics {
		out[name] = facts.Text()
	}
	return out
}

func (r ResearchResults) ItemNames() []string {
	items := r.Items()
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type ResearchPayload struct {
	ResearchResults ResearchResults `json:"research_results"`
	Query           string          `json:"query"`
	Extra           map[string]any  `json:"extra,omitempty"`
}

func (ResearchPayload) Kind() PayloadKind { return PayloadResearch }

type AnalysisKind string

const (
	AnalysisComparison    AnalysisKind = "comparison"
	AnalysisEffectiveness AnalysisKind = "effectiveness_analysis"
	AnalysisCalculation   AnalysisKind = "calculation"
	AnalysisGeneral       AnalysisKind = "general"
)

type Analysis struct {
	Type AnalysisKind `json:"analysis_type"`

	ItemsCompared     []string `json:"items_compared,omitempty"`
	ComparisonSummary string   `json:"comparison_summary,omitempty"`
	KeyDifferences    []string `json:"key_differences,omitempty"`
	Recommendation    string   `json:"recommendation,omitempty"`
	Comparison        string   `json:"comparison,omitempty"`

	Findings string         `json:"findings,omitempty"`
	Metrics  map[string]any `json:"metrics,omitempty"`
	Insights []string       `json:"insights,omitempty"`

	Calculation string   `json:"calculation,omitempty"`
	Expression  string   `json:"expression,omitempty"`
	Value       *float64 `json:"value,omitempty"`

	Summary  string `json:"summary,omitempty"`
	Overview string `json:"overview,omitempty"`
}

// Stub reports whether the analysis carries only a "no data" marker.
func (a Analysis) Stub() bool {
	return a.Comparison != "" && len(a.ItemsCompared) == 0
}

type AnalysisPayload struct {
	Analysis  Analysis       `json:"analysis"`
	InputKeys []string       `json:"input_keys,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

func (AnalysisPayload) Kind() PayloadKind { return PayloadAnalysis }

type MemoryAction string

const (
	MemoryActionStored    MemoryAction = "stored"
	MemoryActionRetrieved MemoryAction = "retrieved"
	MemoryActionSearched  MemoryAction = "searched"
	MemoryActionStatus    MemoryAction = "status"
	MemoryActionContext   MemoryAction = "context"
)

type MemoryStatus struct {
	ConversationMemories int      `json:"conversation_memories"`
	KnowledgeMemories    int      `json:"knowledge_memories"`
	AvailableActions     []string `json:"available_actions"`
}

type MemoryPayload struct {
	Action        MemoryAction   `json:"action"`
	Query         string         `json:"query,omitempty"`
	MemoryID      string         `json:"memory_id,omitempty"`
	MemoryType    MemoryType     `json:"memory_type,omitempty"`
	ContentLength int            `json:"content_length,omitempty"`
	Record        *MemoryRecord  `json:"memory,omitempty"`
	Records       []MemoryRecord `json:"memories,omitempty"`
	Results       []MemoryHit    `json:"results,omitempty"`
	Count         int            `json:"count"`
	BestDistance  *float64       `json:"best_distance,omitempty"`
	Used          bool           `json:"used,omitempty"`
	Consulted     bool           `json:"consulted,omitempty"`
	NotFound      bool           `json:"not_found,omitempty"`
	Status        *MemoryStatus  `json:"status,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

func (MemoryPayload) Kind() PayloadKind { return PayloadMemory }
