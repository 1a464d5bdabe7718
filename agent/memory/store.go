// Package memory is the durable store behind the memory worker. Every
// record lives in a vector index for similarity search and in a JSON
// metadata mirror for exact lookup and enumeration.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/keyword"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

const (
	DefaultRetrieveLimit = 5
	DefaultSearchLimit   = 5
	DefaultConfidence    = 0.5
	keywordLimit         = 10
)

type Option func(*Store)

func WithIndex(idx VectorIndex) Option {
	return func(s *Store) { s.index = idx }
}

func WithEmbedder(e Embedder) Option {
	return func(s *Store) { s.embedder = e }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	cfg      Config
	index    VectorIndex
	embedder Embedder
	mirror   *mirror
	now      func() time.Time
	log      zerolog.Logger

	// mu serializes append-and-flush of the mirror files.
	mu sync.RWMutex
}

var _ contractx.MemoryStore = (*Store)(nil)

func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.StoragePath, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create storage dir: %v", contractx.ErrPersistence, err)
	}

	s := &Store{
		cfg: cfg,
		now: time.Now,
		log: logx.Component("memory"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.embedder == nil {
		if cfg.Embedder == EmbedderOpenAI {
			return nil, fmt.Errorf("%w: openai embedder requires a configured client", contractx.ErrValidation)
		}
		s.embedder = NewHashEmbedder(cfg.EmbeddingDimensions)
	}

	m, err := loadMirror(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	s.mirror = m

	if s.index == nil {
		idx, err := openIndex(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrPersistence, err)
		}
		s.index = idx
	}

	s.log.Debug().
		Str("path", cfg.StoragePath).
		Str("backend", s.index.Name()).
		Str("embedder", s.embedder.Name()).
		Msg("memory store opened")
	return s, nil
}

func openIndex(ctx context.Context, cfg Config) (VectorIndex, error) {
	switch cfg.VectorBackend {
	case BackendPostgres:
		return OpenPostgresIndex(ctx, cfg.PostgresDSN)
	default:
		return OpenSQLiteIndex(cfg.StoragePath)
	}
}

func (s *Store) Close() error {
	return s.index.Close()
}

func (s *Store) Store(ctx context.Context, req contractx.StoreRequest) (string, error) {
	if req.Type == "" {
		req.Type = contractx.MemoryConversation
	}
	if _, err := contractx.ParseMemoryType(string(req.Type)); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Content) == "" {
		return "", fmt.Errorf("%w: memory content is required", contractx.ErrValidation)
	}

	rec, err := s.newRecord(req)
	if err != nil {
		return "", err
	}
	vecs, err := s.embedder.Embed(ctx, []string{rec.Document})
	if err != nil {
		return "", fmt.Errorf("%w: embed record: %v", contractx.ErrPersistence, err)
	}
	if len(vecs) != 1 {
		return "", fmt.Errorf("%w: embedder returned %d vectors", contractx.ErrPersistence, len(vecs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collection := collectionFor(rec.Metadata.Type)
	if err := s.index.Add(ctx, collection, IndexEntry{ID: rec.ID, Document: rec.Document, Embedding: vecs[0]}); err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrPersistence, err)
	}

	s.mirror.append(rec)
	if err := s.mirror.flush(rec.Metadata.Type); err != nil {
		s.mirror.dropLast(rec.Metadata.Type)
		if derr := s.index.Delete(context.WithoutCancel(ctx), collection, rec.ID); derr != nil {
			s.log.Error().Err(derr).Str("id", rec.ID).Msg("rollback vector insert failed")
		}
		s.log.Error().Err(err).Str("id", rec.ID).Msg("metadata flush failed")
		return "", fmt.Errorf("%w: %v", contractx.ErrPersistence, err)
	}

	s.log.Debug().Str("id", rec.ID).Str("type", string(rec.Metadata.Type)).Msg("memory stored")
	return rec.ID, nil
}

func (s *Store) newRecord(req contractx.StoreRequest) (contractx.MemoryRecord, error) {
	now := s.now().UTC()

	document := req.Content
	if len(req.Data) > 0 {
		raw, err := json.Marshal(req.Data)
		if err != nil {
			return contractx.MemoryRecord{}, fmt.Errorf("%w: encode memory data: %v", contractx.ErrValidation, err)
		}
		document = req.Content + " " + string(raw)
	}

	keywords := req.Keywords
	if len(keywords) == 0 {
		keywords = keyword.Keywords(req.Content, keywordLimit)
	}
	topic := req.Topic
	if topic == "" {
		if v, ok := req.Data["topic"].(string); ok {
			topic = v
		}
	}
	confidence := DefaultConfidence
	if req.Confidence != nil {
		if *req.Confidence < 0 || *req.Confidence > 1 {
			return contractx.MemoryRecord{}, fmt.Errorf("%w: confidence must be within [0,1]", contractx.ErrValidation)
		}
		confidence = *req.Confidence
	}

	return contractx.MemoryRecord{
		ID:       fmt.Sprintf("%s_%d_%s", req.Type, now.UnixMicro(), uuid.NewString()[:8]),
		Content:  req.Content,
		Document: document,
		Data:     req.Data,
		Metadata: contractx.RecordMetadata{
			Type:       req.Type,
			Timestamp:  now,
			Sender:     req.Sender,
			Agent:      req.Agent,
			Topic:      topic,
			Keywords:   keywords,
			Source:     req.Source,
			Confidence: confidence,
		},
	}, nil
}

// Retrieve returns the record with req.ID, or the req.Limit most recent
// records of req.Type newest first.
func (s *Store) Retrieve(_ context.Context, req contractx.RetrieveRequest) ([]contractx.MemoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id := strings.TrimSpace(req.ID); id != "" {
		rec, ok := s.mirror.find(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", contractx.ErrMemoryNotFound, id)
		}
		return []contractx.MemoryRecord{rec}, nil
	}

	t := req.Type
	if t == "" {
		t = contractx.MemoryConversation
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	all := s.mirror.all(t)
	out := make([]contractx.MemoryRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Metadata.Timestamp.After(out[j].Metadata.Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Search walks the strategy chain until one tier produces hits. Tier
// errors are logged and never returned.
func (s *Store) Search(ctx context.Context, req contractx.SearchRequest) ([]contractx.MemoryHit, error) {
	if req.Type == "" {
		req.Type = contractx.MemoryConversation
	}
	if req.Limit <= 0 {
		req.Limit = DefaultSearchLimit
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: search query is required", contractx.ErrValidation)
	}

	s.mu.RLock()
	records := append([]contractx.MemoryRecord(nil), s.mirror.all(req.Type)...)
	s.mu.RUnlock()

	for _, strategy := range s.searchChain() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hits, err := strategy.run(ctx, req, records)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			s.log.Warn().Err(err).Str("tier", strategy.tier).Msg("search tier failed, degrading")
			continue
		}
		if len(hits) > 0 {
			s.log.Debug().Str("tier", strategy.tier).Int("hits", len(hits)).Msg("memory search")
			return hits, nil
		}
	}
	return []contractx.MemoryHit{}, nil
}

func (s *Store) Stats(_ context.Context) (contractx.MemoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return contractx.MemoryStats{
		ConversationCount: s.mirror.count(contractx.MemoryConversation),
		KnowledgeCount:    s.mirror.count(contractx.MemoryKnowledge),
		AgentStateCount:   s.mirror.count(contractx.MemoryAgentState),
		StoragePath:       s.cfg.StoragePath,
		Collections:       append([]string(nil), Collections...),
		Backend:           s.index.Name(),
	}, nil
}
