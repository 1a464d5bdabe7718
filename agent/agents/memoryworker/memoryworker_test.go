package memoryworker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/memory"
)

func newWorker(t *testing.T) *Worker {
	t.Helper()
	store, err := memory.Open(context.Background(), memory.Config{StoragePath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store)
}

func message(t *testing.T, content string, md map[string]any) contractx.Message {
	t.Helper()
	msg, err := contractx.NewMessage(contractx.MessageTask, "tester", contractx.AgentMemory, content, md)
	require.NoError(t, err)
	return msg
}

func payloadOf(t *testing.T, res contractx.TaskResult) contractx.MemoryPayload {
	t.Helper()
	require.True(t, res.Success, res.Error)
	p, ok := res.Data.(contractx.MemoryPayload)
	require.True(t, ok, "unexpected payload %T", res.Data)
	return p
}

func TestRouteWholeWord(t *testing.T) {
	cases := map[string]string{
		"store: previous finding":              OpStore,
		"please save this":                     OpStore,
		"restore the old settings":             OpStatus,
		"get my notes":                         OpRetrieve,
		"forget it":                            OpStatus,
		"find transformer notes":               OpSearch,
		"What did we discuss about CNNs?":      OpSearch,
		"we talked about this earlier":         OpSearch,
		"remember that I prefer short answers": OpStore,
		"how is the memory doing":              OpStatus,
	}
	for content, want := range cases {
		assert.Equal(t, want, Route(message(t, content, nil)), content)
	}

	msg := message(t, "store everything", map[string]any{contractx.MetaOperation: "search"})
	assert.Equal(t, OpSearch, Route(msg))
}

func TestStoreThenRetrieveByID(t *testing.T) {
	w := newWorker(t)
	ctx := context.Background()

	stored := payloadOf(t, w.ProcessTask(ctx, message(t, "store: previous finding about transformers efficiency tradeoffs", map[string]any{
		"data": map[string]any{"topic": "transformers"},
	})))
	assert.Equal(t, contractx.MemoryActionStored, stored.Action)
	assert.Equal(t, contractx.MemoryConversation, stored.MemoryType)
	assert.Greater(t, stored.ContentLength, len("store: previous finding about transformers efficiency tradeoffs"))

	res := w.ProcessTask(ctx, message(t, "retrieve it", map[string]any{"memory_id": stored.MemoryID}))
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	got := payloadOf(t, res)
	require.NotNil(t, got.Record)
	assert.Equal(t, "store: previous finding about transformers efficiency tradeoffs", got.Record.Content)
	assert.Equal(t, "transformers", got.Record.Metadata.Topic)

	missing := payloadOf(t, w.ProcessTask(ctx, message(t, "get", map[string]any{"memory_id": "nope"})))
	assert.True(t, missing.NotFound)
}

func TestKnowledgeStoreDefaults(t *testing.T) {
	w := newWorker(t)
	ctx := context.Background()

	stored := payloadOf(t, w.ProcessTask(ctx, message(t, "save: BERT is bidirectional", map[string]any{
		"memory_type": "knowledge",
	})))
	assert.Equal(t, contractx.MemoryKnowledge, stored.MemoryType)

	got := payloadOf(t, w.ProcessTask(ctx, message(t, "get", map[string]any{"memory_id": stored.MemoryID})))
	require.NotNil(t, got.Record)
	assert.Equal(t, "unknown", got.Record.Metadata.Source)
	assert.Equal(t, 0.5, got.Record.Metadata.Confidence)
}

func TestSearchAndStatus(t *testing.T) {
	w := newWorker(t)
	ctx := context.Background()

	for _, c := range []string{"store: transformers are costly", "store: CNNs excel at images"} {
		payloadOf(t, w.ProcessTask(ctx, message(t, c, nil)))
	}

	found := payloadOf(t, w.ProcessTask(ctx, message(t, "transformers", map[string]any{
		contractx.MetaOperation: OpSearch,
		"keywords":              []string{"transformers"},
		"limit":                 5,
	})))
	assert.Equal(t, contractx.MemoryActionSearched, found.Action)
	require.Equal(t, 1, found.Count)
	assert.NotNil(t, found.BestDistance)
	assert.Equal(t, 1, contractx.NormalizeMemoryContext(found).Count)

	status := payloadOf(t, w.ProcessTask(ctx, message(t, "how is it going", nil)))
	require.NotNil(t, status.Status)
	assert.Equal(t, 2, status.Status.ConversationMemories)
	assert.Equal(t, []string{"store", "retrieve", "search"}, status.Status.AvailableActions)
}

func TestBadMemoryTypeFails(t *testing.T) {
	w := newWorker(t)
	res := w.ProcessTask(context.Background(), message(t, "store this", map[string]any{"memory_type": "dreams"}))
	assert.False(t, res.Success)
	assert.Zero(t, res.Confidence)
	assert.Contains(t, res.Error, "unknown memory type")
}
