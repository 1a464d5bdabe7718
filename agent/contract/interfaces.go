package contract

import "context"

// Worker is implemented by every specialized component. ProcessTask never
// returns an error: failures are reported as an unsuccessful TaskResult.
type Worker interface {
	ID() string
	Capabilities() []string
	ProcessTask(ctx context.Context, msg Message) TaskResult
}

type Planner interface {
	Plan(ctx context.Context, query string) (Plan, error)
}

type Registry interface {
	Planner() Planner
	Research() Worker
	Analysis() Worker
	Memory() Worker
}

type MemoryStore interface {
	Store(ctx context.Context, req StoreRequest) (string, error)
	Retrieve(ctx context.Context, req RetrieveRequest) ([]MemoryRecord, error)
	Search(ctx context.Context, req SearchRequest) ([]MemoryHit, error)
	Stats(ctx context.Context) (MemoryStats, error)
}

type KnowledgeSource interface {
	Topics() []string
	Lookup(topic string) (TopicFacts, bool)
}

type QueryProcessor interface {
	ProcessUserQuery(ctx context.Context, query string) Response
}
