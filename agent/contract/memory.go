package contract

import (
	"fmt"
	"time"
)

type MemoryType string

const (
	MemoryConversation MemoryType = "conversation"
	MemoryKnowledge    MemoryType = "knowledge"
	MemoryAgentState   MemoryType = "agent_state"
)

func ParseMemoryType(raw string) (MemoryType, error) {
	switch MemoryType(raw) {
	case "":
		return MemoryConversation, nil
	case MemoryConversation, MemoryKnowledge, MemoryAgentState:
		return MemoryType(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown memory type %q", ErrValidation, raw)
	}
}

type RecordMetadata struct {
	Type       MemoryType `json:"type"`
	Timestamp  time.Time  `json:"timestamp"`
	Sender     string     `json:"sender,omitempty"`
	Agent      string     `json:"agent,omitempty"`
	Topic      string     `json:"topic,omitempty"`
	Keywords   []string   `json:"keywords,omitempty"`
	Source     string     `json:"source,omitempty"`
	Confidence float64    `json:"confidence"`
}

// MemoryRecord is one persisted unit. Document is the text handed to the
// vector index: the content followed by the JSON encoding of Data.
type MemoryRecord struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Document string         `json:"document"`
	Data     map[string]any `json:"data,omitempty"`
	Metadata RecordMetadata `json:"metadata"`
}

type StoreRequest struct {
	Type       MemoryType
	Content    string
	Data       map[string]any
	Sender     string
	Agent      string
	Topic      string
	Keywords   []string
	Source     string
	Confidence *float64
}

type RetrieveRequest struct {
	ID    string
	Type  MemoryType
	Limit int
}

type SearchRequest struct {
	Query    string
	Type     MemoryType
	Limit    int
	Topic    string
	Keywords []string
}

// MemoryHit is one search result. Distance is nil for hits produced by
// the non-vector search tiers.
type MemoryHit struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata RecordMetadata `json:"metadata"`
	Distance *float64       `json:"distance"`
	Tier     string         `json:"tier,omitempty"`
}

type MemoryStats struct {
	ConversationCount int      `json:"conversation_count"`
	KnowledgeCount    int      `json:"knowledge_count"`
	AgentStateCount   int      `json:"agent_state_count"`
	StoragePath       string   `json:"storage_path"`
	Collections       []string `json:"collections"`
	Backend           string   `json:"backend"`
}

// MemoryContext is the canonical shape of memory output inside the coordinator.
type MemoryContext struct {
	Results      []MemoryHit `json:"results"`
	Count        int         `json:"count"`
	BestDistance *float64    `json:"best_distance"`
}

// NormalizeMemoryContext collapses every memory worker output shape
// (search hits, a record list, a single record) into MemoryContext.
// Unrecognized or empty payloads normalize to the zero context.
func NormalizeMemoryContext(p Payload) MemoryContext {
	var mp *MemoryPayload
	switch v := p.(type) {
	case MemoryPayload:
		mp = &v
	case *MemoryPayload:
		mp = v
	}
	if mp == nil {
		return MemoryContext{Results: []MemoryHit{}}
	}

	var hits []MemoryHit
	switch {
	case len(mp.Results) > 0:
		hits = append(hits, mp.Results...)
	case len(mp.Records) > 0:
		for _, r := range mp.Records {
			hits = append(hits, hitFromRecord(r))
		}
	case mp.Record != nil:
		hits = append(hits, hitFromRecord(*mp.Record))
	}
	return NewMemoryContext(hits)
}

func NewMemoryContext(hits []MemoryHit) MemoryContext {
	if hits == nil {
		hits = []MemoryHit{}
	}
	var best *float64
	for _, h := range hits {
		if h.Distance == nil {
			continue
		}
		if best == nil || *h.Distance < *best {
			d := *h.Distance
			best = &d
		}
	}
	return MemoryContext{
		Results:      hits,
		Count:        len(hits),
		BestDistance: best,
	}
}

func hitFromRecord(r MemoryRecord) MemoryHit {
	content := r.Document
	if content == "" {
		content = r.Content
	}
	return MemoryHit{
		ID:       r.ID,
		Content:  content,
		Metadata: r.Metadata,
		Tier:     "record",
	}
}
