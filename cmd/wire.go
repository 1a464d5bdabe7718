package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/tanpawarit/chative-coordinator/agent/agents"
	"github.com/tanpawarit/chative-coordinator/agent/agents/coordinator"
	"github.com/tanpawarit/chative-coordinator/agent/knowledge"
	llmx "github.com/tanpawarit/chative-coordinator/agent/llm"
	"github.com/tanpawarit/chative-coordinator/agent/memory"
	"github.com/tanpawarit/chative-coordinator/agent/transport/wsserver"
	configx "github.com/tanpawarit/chative-coordinator/pkg/config"
)

type app struct {
	store       *memory.Store
	coordinator *coordinator.Coordinator
	server      wsserver.Config
}

func (a *app) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

// wireStore opens only the memory store; the memory subcommands need
// nothing else.
func wireStore(ctx context.Context) (*memory.Store, llmx.Config, error) {
	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return nil, llmx.Config{}, err
	}
	memCfg, err := configx.New[memory.Config]("MEMORY")
	if err != nil {
		return nil, llmx.Config{}, err
	}

	var opts []memory.Option
	if memCfg.Embedder == memory.EmbedderOpenAI {
		client := llmCfg.OpenAIClient()
		if client == nil {
			return nil, llmx.Config{}, errors.New("MEMORY_EMBEDDER=openai requires OPENROUTER_API_KEY")
		}
		embedder, err := memory.NewOpenAIEmbedder(client, llmCfg.EmbeddingModel)
		if err != nil {
			return nil, llmx.Config{}, err
		}
		opts = append(opts, memory.WithEmbedder(embedder))
	}

	store, err := memory.Open(ctx, *memCfg, opts...)
	if err != nil {
		return nil, llmx.Config{}, fmt.Errorf("open memory store: %w", err)
	}
	return store, *llmCfg, nil
}

func wireApp(ctx context.Context) (*app, error) {
	store, llmCfg, err := wireStore(ctx)
	if err != nil {
		return nil, err
	}
	a := &app{store: store}

	fail := func(err error) (*app, error) {
		_ = a.Close()
		return nil, err
	}

	kbCfg, err := configx.New[knowledge.Config]("KNOWLEDGE")
	if err != nil {
		return fail(err)
	}
	kb, err := knowledge.Load(*kbCfg)
	if err != nil {
		return fail(err)
	}

	coordCfg, err := configx.New[coordinator.Config]("COORDINATOR")
	if err != nil {
		return fail(err)
	}
	serverCfg, err := configx.New[wsserver.Config]("SERVER")
	if err != nil {
		return fail(err)
	}
	a.server = *serverCfg

	registry, err := agents.NewRegistry(ctx, llmCfg, kb, store)
	if err != nil {
		return fail(fmt.Errorf("wire workers: %w", err))
	}
	c, err := coordinator.New(registry, *coordCfg, coordinator.WithStats(store))
	if err != nil {
		return fail(fmt.Errorf("wire coordinator: %w", err))
	}
	a.coordinator = c
	return a, nil
}
