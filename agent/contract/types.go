package contract

import (
	"fmt"
	"maps"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AgentCoordinator = "coordinator"
	AgentResearch    = "research_agent"
	AgentAnalysis    = "analysis_agent"
	AgentMemory      = "memory_agent"
)

// Metadata keys carried on task messages.
const (
	MetaMemoryContext   = "memory_context"
	MetaResearchResults = "research_results"
	MetaAnalysisResults = "analysis_results"
	MetaOperation       = "operation"
)

type MessageKind string

const (
	MessageQuery  MessageKind = "query"
	MessageTask   MessageKind = "task"
	MessageResult MessageKind = "result"
	MessageError  MessageKind = "error"
)

func (k MessageKind) valid() bool {
	switch k {
	case MessageQuery, MessageTask, MessageResult, MessageError:
		return true
	default:
		return false
	}
}

// Message is one unit of inter-component communication. Build it with
// NewMessage and treat it as a value: the metadata map is copied on
// construction and must not be mutated by receivers.
type Message struct {
	ID         string         `json:"id"`
	Kind       MessageKind    `json:"type"`
	Sender     string         `json:"sender"`
	Recipient  string         `json:"recipient"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	Timestamp  time.Time      `json:"timestamp"`
	Confidence *float64       `json:"confidence,omitempty"`
}

type MessageOption func(*Message)

func WithConfidence(c float64) MessageOption {
	return func(m *Message) {
		m.Confidence = &c
	}
}

func WithTimestamp(ts time.Time) MessageOption {
	return func(m *Message) {
		m.Timestamp = ts
	}
}

func NewMessage(
	kind MessageKind,
	sender string,
	recipient string,
	content string,
	metadata map[string]any,
	opts ...MessageOption,
) (Message, error) {
	if !kind.valid() {
		return Message{}, fmt.Errorf("%w: unknown message kind %q", ErrValidation, kind)
	}
	if strings.TrimSpace(sender) == "" {
		return Message{}, fmt.Errorf("%w: message sender is required", ErrValidation)
	}
	if strings.TrimSpace(recipient) == "" {
		return Message{}, fmt.Errorf("%w: message recipient is required", ErrValidation)
	}

	md := maps.Clone(metadata)
	if md == nil {
		md = map[string]any{}
	}

	msg := Message{
		ID:        uuid.New().String(),
		Kind:      kind,
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		Metadata:  md,
		Timestamp: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&msg)
	}

	if msg.Confidence != nil {
		if err := validateConfidence(*msg.Confidence); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}

// MetaString returns metadata[key] when it holds a non-empty string.
func (m Message) MetaString(key string) string {
	v, _ := m.Metadata[key].(string)
	return strings.TrimSpace(v)
}

func (m Message) MetaInt(key string, fallback int) int {
	switch v := m.Metadata[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func (m Message) MetaStrings(key string) []string {
	switch v := m.Metadata[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// TaskResult is the structured outcome of one worker invocation.
// ExecutionTime is measured in seconds.
type TaskResult struct {
	AgentID       string  `json:"agent_id"`
	Success       bool    `json:"success"`
	Data          Payload `json:"data"`
	Confidence    float64 `json:"confidence"`
	ExecutionTime float64 `json:"execution_time"`
	Error         string  `json:"error,omitempty"`
}

func NewTaskResult(
	agentID string,
	success bool,
	data Payload,
	confidence float64,
	executionTime float64,
	errText string,
) (TaskResult, error) {
	if strings.TrimSpace(agentID) == "" {
		return TaskResult{}, fmt.Errorf("%w: result agent id is required", ErrValidation)
	}
	if err := validateConfidence(confidence); err != nil {
		return TaskResult{}, err
	}
	if math.IsNaN(executionTime) || executionTime < 0 {
		return TaskResult{}, fmt.Errorf("%w: execution time must be >= 0, got %v", ErrValidation, executionTime)
	}
	if data == nil {
		data = EmptyPayload{}
	}
	return TaskResult{
		AgentID:       agentID,
		Success:       success,
		Data:          data,
		Confidence:    confidence,
		ExecutionTime: executionTime,
		Error:         errText,
	}, nil
}

// FailedResult builds the failure shape every worker reports instead of
// returning an error.
func FailedResult(agentID string, started time.Time, err error) TaskResult {
	elapsed := 0.0
	if !started.IsZero() {
		elapsed = Elapsed(started)
	}
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	return TaskResult{
		AgentID:       agentID,
		Success:       false,
		Data:          EmptyPayload{},
		Confidence:    0,
		ExecutionTime: elapsed,
		Error:         msg,
	}
}

func validateConfidence(c float64) error {
	if math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("%w: confidence must be within [0,1], got %v", ErrValidation, c)
	}
	return nil
}

// minElapsed keeps measured invocations distinguishable from reused
// results, which report exactly zero.
const minElapsed = 1e-6

// Elapsed returns the seconds since started, never less than minElapsed.
func Elapsed(started time.Time) float64 {
	if s := time.Since(started).Seconds(); s > minElapsed {
		return s
	}
	return minElapsed
}
