// Package coordinator runs the per-query pipeline: plan, recall memory,
// execute with adaptive reuse, synthesize and store the interaction.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	nodex "github.com/tanpawarit/chative-coordinator/agent/nodes/coordinator"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

const degradedAnswerPrefix = "I couldn't process your query: "

// HistoryEntry is a compact record of one processed query.
type HistoryEntry struct {
	Query      string    `json:"query"`
	Success    bool      `json:"success"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

type Coordinator struct {
	registry contractx.Registry
	stats    statsSource
	cfg      Config

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	mu      sync.Mutex
	history []HistoryEntry

	now func() time.Time
	log zerolog.Logger
}

type statsSource interface {
	Stats(ctx context.Context) (contractx.MemoryStats, error)
}

var _ contractx.QueryProcessor = (*Coordinator)(nil)

type Option func(*Coordinator)

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithStats exposes memory statistics through MemoryStats.
func WithStats(s statsSource) Option {
	return func(c *Coordinator) { c.stats = s }
}

func New(registry contractx.Registry, cfg Config, opts ...Option) (*Coordinator, error) {
	if registry == nil {
		return nil, errors.New("worker registry is required")
	}
	if registry.Memory() == nil {
		return nil, errors.New("memory worker is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		registry: registry,
		cfg:      cfg,
		now:      time.Now,
		log:      logx.Component("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}

	graphRunner, err := c.compileProcessQueryGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner
	return c, nil
}

// ProcessUserQuery never fails: errors come back as a degraded response
// with zero confidence and the error text in the answer.
//
// Degraded responses are persisted here because the graph never reached its
// store_interaction node.
func (c *Coordinator) ProcessUserQuery(ctx context.Context, query string) (resp contractx.Response) {
	persisted := false
	defer func() {
		if r := recover(); r != nil {
			resp = degraded(query, fmt.Errorf("%w: panic: %v", contractx.ErrWorkerFailure, r))
		}
		if !persisted {
			c.storeDegraded(ctx, resp)
		}
		c.remember(resp)
	}()

	if c.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.QueryTimeout)
		defer cancel()
	}

	out, err := c.graphRunner.Invoke(ctx, nodex.GraphInput{Query: query})
	if err != nil {
		c.log.Error().Err(err).Msg("process user query")
		return degraded(query, err)
	}
	c.log.Info().
		Bool("success", out.Response.Success).
		Float64("confidence", out.Response.Confidence).
		Int("steps", len(out.Response.ExecutionTrace)).
		Msg("query processed")
	persisted = true
	return out.Response
}

func (c *Coordinator) storeDegraded(ctx context.Context, resp contractx.Response) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("store degraded interaction")
		}
	}()
	state := &nodex.GraphState{Query: resp.Query, Response: resp}
	if _, err := nodex.StoreInteraction(ctx, state, c.registry.Memory(), c.cfg.settings()); err != nil {
		c.log.Error().Err(err).Msg("store degraded interaction")
	}
}

func degraded(query string, err error) contractx.Response {
	return contractx.Response{
		Query:             query,
		Success:           false,
		AgentResults:      map[string]contractx.AgentResult{},
		SynthesizedAnswer: degradedAnswerPrefix + err.Error(),
		Confidence:        0,
		ExecutionTrace:    []contractx.TraceEntry{},
	}
}

func (c *Coordinator) remember(resp contractx.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, HistoryEntry{
		Query:      resp.Query,
		Success:    resp.Success,
		Confidence: resp.Confidence,
		At:         c.now().UTC(),
	})
	if limit := c.cfg.HistoryLimit; limit > 0 && len(c.history) > limit {
		c.history = append([]HistoryEntry(nil), c.history[len(c.history)-limit:]...)
	}
}

func (c *Coordinator) History() []HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]HistoryEntry(nil), c.history...)
}

func (c *Coordinator) MemoryStats(ctx context.Context) (contractx.MemoryStats, error) {
	if c.stats == nil {
		return contractx.MemoryStats{}, fmt.Errorf("%w: memory stats are not available", contractx.ErrPersistence)
	}
	return c.stats.Stats(ctx)
}
