package memory

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"

	EmbedderHash   = "hash"
	EmbedderOpenAI = "openai"
)

type Config struct {
	StoragePath         string `envconfig:"STORAGE_PATH" split_words:"true" default:"memory_storage"`
	VectorBackend       string `split_words:"true" default:"sqlite"`
	PostgresDSN         string `envconfig:"POSTGRES_DSN"`
	Embedder            string `default:"hash"`
	EmbeddingDimensions int    `split_words:"true" default:"256"`
	FallbackSampleSize  int    `split_words:"true" default:"500"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.StoragePath) == "" {
		return fmt.Errorf("%w: memory storage path is required", contractx.ErrValidation)
	}
	switch c.VectorBackend {
	case BackendSQLite:
	case BackendPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("%w: postgres backend requires a dsn", contractx.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown vector backend %q", contractx.ErrValidation, c.VectorBackend)
	}
	switch c.Embedder {
	case EmbedderHash, EmbedderOpenAI:
	default:
		return fmt.Errorf("%w: unknown embedder %q", contractx.ErrValidation, c.Embedder)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be > 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.VectorBackend == "" {
		c.VectorBackend = BackendSQLite
	}
	if c.Embedder == "" {
		c.Embedder = EmbedderHash
	}
	if c.EmbeddingDimensions <= 0 {
		c.EmbeddingDimensions = 256
	}
	if c.FallbackSampleSize <= 0 {
		c.FallbackSampleSize = 500
	}
	return c
}

// collectionFor maps a memory type to its vector index collection.
func collectionFor(t contractx.MemoryType) string {
	switch t {
	case contractx.MemoryKnowledge:
		return "knowledge"
	case contractx.MemoryAgentState:
		return "agent_states"
	default:
		return "conversations"
	}
}

var Collections = []string{"conversations", "knowledge", "agent_states"}
