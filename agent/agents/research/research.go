// Package research implements the retrieval worker: it maps a free-text
// query onto topics of a static knowledge source.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/keyword"
	"github.com/tanpawarit/chative-coordinator/agent/knowledge"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

const (
	exactMatchWeight   = 0.3
	fuzzyMatchWeight   = 0.2
	fuzzyMinRatio      = 0.3
	limitationScore    = 0.9
	LimitationTemplate = "I focus on AI and machine learning topics and don't have information about that. Try asking about %s."
)

// domainWords are compared by stem, so plural forms match too.
var domainWords = []string{
	"ai", "artificial", "intelligence", "machine", "learning", "ml", "deep",
	"neural", "network", "model", "algorithm", "training", "transformer",
	"attention", "embedding", "bert", "gpt", "t5", "bart", "cnn", "rnn",
	"lstm", "gru", "nlp", "optimization", "gradient", "classifier",
	"supervised", "unsupervised", "reinforcement", "dataset", "llm",
}

type Worker struct {
	kb  contractx.KnowledgeSource
	log zerolog.Logger
}

var _ contractx.Worker = (*Worker)(nil)

func New(kb contractx.KnowledgeSource) *Worker {
	return &Worker{kb: kb, log: logx.Component(contractx.AgentResearch)}
}

func (w *Worker) ID() string { return contractx.AgentResearch }

func (w *Worker) Capabilities() []string { return []string{"search", "retrieve", "find"} }

func (w *Worker) ProcessTask(ctx context.Context, msg contractx.Message) (result contractx.TaskResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = contractx.FailedResult(w.ID(), started, fmt.Errorf("%w: panic: %v", contractx.ErrWorkerFailure, r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return contractx.FailedResult(w.ID(), started, err)
	}
	query := strings.ToLower(strings.TrimSpace(msg.Content))
	if query == "" {
		return contractx.FailedResult(w.ID(), started, fmt.Errorf("%w: research query is empty", contractx.ErrValidation))
	}

	research, confidence := w.lookup(query)
	if len(research.Topics) == 0 && research.Limitation == nil {
		res := contractx.FailedResult(w.ID(), started, fmt.Errorf("%w: no knowledge found for query", contractx.ErrWorkerFailure))
		res.Data = contractx.ResearchPayload{ResearchResults: research, Query: query}
		return res
	}

	w.log.Debug().
		Int("topics", len(research.Topics)).
		Bool("limitation", research.Limitation != nil).
		Float64("confidence", confidence).
		Msg("research complete")

	res, err := contractx.NewTaskResult(
		w.ID(),
		true,
		contractx.ResearchPayload{ResearchResults: research, Query: query},
		confidence,
		contractx.Elapsed(started),
		"",
	)
	if err != nil {
		return contractx.FailedResult(w.ID(), started, err)
	}
	return res
}

// lookup runs exact, fuzzy and domain-limitation matching in that order;
// the first step that produces something wins.
func (w *Worker) lookup(query string) (contractx.ResearchResults, float64) {
	research := contractx.ResearchResults{
		Source: contractx.ResearchSourceKnowledge,
		Topics: map[string]contractx.TopicFacts{},
	}

	tokens := keyword.Tokenize(query)
	for _, topic := range w.kb.Topics() {
		if matchesTopicWord(tokens, topic) {
			facts, _ := w.kb.Lookup(topic)
			research.Topics[topic] = facts
		}
	}
	if len(research.Topics) > 0 {
		return research, matchConfidence(len(research.Topics), exactMatchWeight)
	}

	terms := keyword.Terms(query, 0)
	if len(terms) > 0 {
		for _, topic := range w.kb.Topics() {
			facts, _ := w.kb.Lookup(topic)
			if fuzzyRatio(terms, facts.Text()) >= fuzzyMinRatio {
				research.Topics[topic] = facts
			}
		}
	}
	if len(research.Topics) > 0 {
		return research, matchConfidence(len(research.Topics), fuzzyMatchWeight)
	}

	if !InDomain(query) {
		research.Limitation = w.limitation()
		return research, limitationScore
	}
	return research, 0
}

func (w *Worker) limitation() *contractx.KnowledgeLimitation {
	topics := w.kb.Topics()
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, knowledge.DisplayName(t))
	}
	return &contractx.KnowledgeLimitation{
		Message:         fmt.Sprintf(LimitationTemplate, strings.Join(names, ", ")),
		SuggestedTopics: names,
	}
}

// matchConfidence is n matches times weight, capped at 1.
func matchConfidence(n int, weight float64) float64 {
	if n <= 0 || weight <= 0 {
		return 0
	}
	c := float64(n) * weight
	if c > 1 {
		return 1
	}
	return c
}

func matchesTopicWord(tokens []string, topic string) bool {
	for _, word := range knowledge.Words(topic) {
		stem := keyword.Stem(word)
		for _, tok := range tokens {
			if keyword.Stem(tok) == stem {
				return true
			}
		}
	}
	return false
}

func fuzzyRatio(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	hits := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}

// InDomain reports whether the query mentions any AI/ML vocabulary.
func InDomain(query string) bool {
	return keyword.Overlap(keyword.Tokenize(query), domainWords)
}
