package coordinator

import (
	"fmt"
	"time"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	nodex "github.com/tanpawarit/chative-coordinator/agent/nodes/coordinator"
)

type Config struct {
	ReuseMaxDistance   float64       `split_words:"true" default:"0.8"`
	ReuseMinCount      int           `split_words:"true" default:"2"`
	MemoryContextLimit int           `split_words:"true" default:"5"`
	MemoryTermLimit    int           `split_words:"true" default:"10"`
	WorkerTimeout      time.Duration `split_words:"true" default:"10s"`
	QueryTimeout       time.Duration `split_words:"true" default:"30s"`
	RecordAgentState   bool          `split_words:"true" default:"true"`
	HistoryLimit       int           `split_words:"true" default:"100"`
}

func DefaultConfig() Config {
	s := nodex.DefaultSettings()
	return Config{
		ReuseMaxDistance:   s.ReuseMaxDistance,
		ReuseMinCount:      s.ReuseMinCount,
		MemoryContextLimit: s.MemoryContextLimit,
		MemoryTermLimit:    s.MemoryTermLimit,
		WorkerTimeout:      s.WorkerTimeout,
		QueryTimeout:       30 * time.Second,
		RecordAgentState:   s.RecordAgentState,
		HistoryLimit:       100,
	}
}

func (c Config) Validate() error {
	if c.ReuseMaxDistance < 0 {
		return fmt.Errorf("%w: reuse max distance must be >= 0", contractx.ErrValidation)
	}
	if c.ReuseMinCount < 0 {
		return fmt.Errorf("%w: reuse min count must be >= 0", contractx.ErrValidation)
	}
	if c.MemoryContextLimit <= 0 {
		return fmt.Errorf("%w: memory context limit must be > 0", contractx.ErrValidation)
	}
	if c.WorkerTimeout < 0 || c.QueryTimeout < 0 {
		return fmt.Errorf("%w: timeouts must be >= 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) settings() nodex.Settings {
	return nodex.Settings{
		ReuseMaxDistance:   c.ReuseMaxDistance,
		ReuseMinCount:      c.ReuseMinCount,
		MemoryContextLimit: c.MemoryContextLimit,
		MemoryTermLimit:    c.MemoryTermLimit,
		WorkerTimeout:      c.WorkerTimeout,
		RecordAgentState:   c.RecordAgentState,
	}
}
