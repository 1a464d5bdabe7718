// Package memoryworker exposes the memory store through the worker
// interface. Requests are routed by an explicit "operation" metadata entry
// or, failing that, by whole-word keywords in the message content.
package memoryworker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/keyword"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

const (
	OpStore    = "store"
	OpRetrieve = "retrieve"
	OpSearch   = "search"
	OpStatus   = "status"

	successConfidence  = 0.9
	defaultSearchLimit = 3
	defaultRecentLimit = 5
)

var (
	storeWords    = []string{"store", "save"}
	retrieveWords = []string{"retrieve", "get"}
	searchWords   = []string{"search", "find"}
	recallWords   = []string{"what did", "earlier", "before"}
	rememberWords = []string{"remember"}
)

type Worker struct {
	store contractx.MemoryStore
	log   zerolog.Logger
}

var _ contractx.Worker = (*Worker)(nil)

func New(store contractx.MemoryStore) *Worker {
	return &Worker{store: store, log: logx.Component(contractx.AgentMemory)}
}

func (w *Worker) ID() string { return contractx.AgentMemory }

func (w *Worker) Capabilities() []string {
	return []string{"store", "retrieve", "search", "remember"}
}

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

	op := Route(msg)
	w.log.Debug().Str("operation", op).Str("sender", msg.Sender).Msg("memory task")

	var (
		payload contractx.MemoryPayload
		err     error
	)
	switch op {
	case OpStore:
		payload, err = w.storeMemory(ctx, msg)
	case OpRetrieve:
		payload, err = w.retrieveMemory(ctx, msg)
	case OpSearch:
		payload, err = w.searchMemory(ctx, msg)
	default:
		payload, err = w.status(ctx)
	}
	if err != nil {
		return contractx.FailedResult(w.ID(), started, err)
	}

	res, err := contractx.NewTaskResult(w.ID(), true, payload, successConfidence, contractx.Elapsed(started), "")
	if err != nil {
		return contractx.FailedResult(w.ID(), started, err)
	}
	return res
}

// Route picks the operation for msg. An explicit operation wins over
// keyword routing.
func Route(msg contractx.Message) string {
	switch op := strings.ToLower(msg.MetaString(contractx.MetaOperation)); op {
	case OpStore, OpRetrieve, OpSearch, OpStatus:
		return op
	}

	content := msg.Content
	switch {
	case keyword.ContainsAny(content, storeWords...):
		return OpStore
	case keyword.ContainsAny(content, retrieveWords...):
		return OpRetrieve
	case keyword.ContainsAny(content, searchWords...):
		return OpSearch
	case keyword.ContainsAny(content, recallWords...):
		return OpSearch
	case keyword.ContainsAny(content, rememberWords...):
		return OpStore
	default:
		return OpStatus
	}
}

func memoryType(msg contractx.Message) (contractx.MemoryType, error) {
	return contractx.ParseMemoryType(msg.MetaString("memory_type"))
}

func (w *Worker) storeMemory(ctx context.Context, msg contractx.Message) (contractx.MemoryPayload, error) {
	t, err := memoryType(msg)
	if err != nil {
		return contractx.MemoryPayload{}, err
	}

	data, _ := msg.Metadata["data"].(map[string]any)
	req := contractx.StoreRequest{
		Type:     t,
		Content:  msg.Content,
		Data:     data,
		Sender:   msg.Sender,
		Agent:    msg.MetaString("agent"),
		Topic:    msg.MetaString("topic"),
		Keywords: msg.MetaStrings("keywords"),
		Source:   msg.MetaString("source"),
	}
	if c, ok := msg.Metadata["confidence"].(float64); ok {
		req.Confidence = &c
	}
	if t == contractx.MemoryKnowledge && req.Source == "" {
		req.Source = "unknown"
	}

	id, err := w.store.Store(ctx, req)
	if err != nil {
		return contractx.MemoryPayload{}, err
	}

	payload := contractx.MemoryPayload{
		Action:     contractx.MemoryActionStored,
		MemoryID:   id,
		MemoryType: t,
		Count:      1,
	}
	if recs, err := w.store.Retrieve(ctx, contractx.RetrieveRequest{ID: id}); err == nil && len(recs) == 1 {
		payload.ContentLength = len(recs[0].Document)
	}
	return payload, nil
}

func (w *Worker) retrieveMemory(ctx context.Context, msg contractx.Message) (contractx.MemoryPayload, error) {
	t, err := memoryType(msg)
	if err != nil {
		return contractx.MemoryPayload{}, err
	}

	id := msg.MetaString("memory_id")
	recs, err := w.store.Retrieve(ctx, contractx.RetrieveRequest{
		ID:    id,
		Type:  t,
		Limit: msg.MetaInt("limit", defaultRecentLimit),
	})
	if errors.Is(err, contractx.ErrMemoryNotFound) {
		return contractx.MemoryPayload{Action: contractx.MemoryActionRetrieved, MemoryID: id, NotFound: true}, nil
	}
	if err != nil {
		return contractx.MemoryPayload{}, err
	}

	if id != "" {
		return contractx.MemoryPayload{
			Action:     contractx.MemoryActionRetrieved,
			MemoryID:   id,
			MemoryType: recs[0].Metadata.Type,
			Record:     &recs[0],
			Count:      1,
		}, nil
	}
	return contractx.MemoryPayload{
		Action:     contractx.MemoryActionRetrieved,
		MemoryType: t,
		Records:    recs,
		Count:      len(recs),
	}, nil
}

func (w *Worker) searchMemory(ctx context.Context, msg contractx.Message) (contractx.MemoryPayload, error) {
	t, err := memoryType(msg)
	if err != nil {
		return contractx.MemoryPayload{}, err
	}

	hits, err := w.store.Search(ctx, contractx.SearchRequest{
		Query:    msg.Content,
		Type:     t,
		Limit:    msg.MetaInt("limit", defaultSearchLimit),
		Topic:    msg.MetaString("topic"),
		Keywords: msg.MetaStrings("keywords"),
	})
	if err != nil {
		return contractx.MemoryPayload{}, err
	}

	mc := contractx.NewMemoryContext(hits)
	return contractx.MemoryPayload{
		Action:       contractx.MemoryActionSearched,
		Query:        msg.Content,
		MemoryType:   t,
		Results:      mc.Results,
		Count:        mc.Count,
		BestDistance: mc.BestDistance,
	}, nil
}

func (w *Worker) status(ctx context.Context) (contractx.MemoryPayload, error) {
	stats, err := w.store.Stats(ctx)
	if err != nil {
		return contractx.MemoryPayload{}, err
	}
	return contractx.MemoryPayload{
		Action: contractx.MemoryActionStatus,
		Status: &contractx.MemoryStatus{
			ConversationMemories: stats.ConversationCount,
			KnowledgeMemories:    stats.KnowledgeCount,
			AvailableActions:     []string{OpStore, OpRetrieve, OpSearch},
		},
	}, nil
}
