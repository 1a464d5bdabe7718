package research

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/knowledge"
)

func task(t *testing.T, content string) contractx.Message {
	t.Helper()
	msg, err := contractx.NewMessage(contractx.MessageTask, contractx.AgentCoordinator, contractx.AgentResearch, content, nil)
	require.NoError(t, err)
	return msg
}

func researchOf(t *testing.T, res contractx.TaskResult) contractx.ResearchResults {
	t.Helper()
	p, ok := res.Data.(contractx.ResearchPayload)
	require.True(t, ok, "unexpected payload %T", res.Data)
	return p.ResearchResults
}

func TestExactTopicMatch(t *testing.T) {
	w := New(knowledge.Default())
	res := w.ProcessTask(context.Background(), task(t, "What types of neural networks exist?"))

	require.True(t, res.Success)
	r := researchOf(t, res)
	assert.Equal(t, []string{"neural_networks"}, r.ItemNames())
	assert.InDelta(t, 0.3, res.Confidence, 1e-9)
	assert.Greater(t, res.ExecutionTime, 0.0)
	assert.Equal(t, contractx.ResearchSourceKnowledge, r.Source)
}

func TestExactMatchIsWholeWordAndStemmed(t *testing.T) {
	w := New(knowledge.Default())
	res := w.ProcessTask(context.Background(), task(t, "Research transformer architectures and summarize tradeoffs"))

	require.True(t, res.Success)
	assert.Equal(t, []string{"transformers"}, researchOf(t, res).ItemNames())
	assert.InDelta(t, 0.3, res.Confidence, 1e-9)

	res = w.ProcessTask(context.Background(), task(t, "compare machine learning and neural networks"))
	require.True(t, res.Success)
	assert.Equal(t, []string{"machine_learning", "neural_networks"}, researchOf(t, res).ItemNames())
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)
}

func TestFuzzyFallback(t *testing.T) {
	w := New(knowledge.Default())
	res := w.ProcessTask(context.Background(), task(t, "explain gradient boosting"))

	require.True(t, res.Success)
	assert.Equal(t, []string{"machine_learning"}, researchOf(t, res).ItemNames())
	assert.InDelta(t, 0.2, res.Confidence, 1e-9)
}

func TestDomainLimitation(t *testing.T) {
	w := New(knowledge.Default())
	res := w.ProcessTask(context.Background(), task(t, "What's the weather in Paris?"))

	require.True(t, res.Success)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	r := researchOf(t, res)
	require.NotNil(t, r.Limitation)
	assert.Empty(t, r.Topics)
	assert.Contains(t, r.Limitation.Message, "AI and machine learning")
	assert.Equal(t, []string{"machine learning", "neural networks", "transformers"}, r.Limitation.SuggestedTopics)
}

func TestInDomainWithoutKnowledgeFails(t *testing.T) {
	w := New(knowledge.Default())
	res := w.ProcessTask(context.Background(), task(t, "tell me about attention heads"))

	assert.False(t, res.Success)
	assert.Zero(t, res.Confidence)
	assert.NotEmpty(t, res.Error)
}

func TestCancelledContextFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(knowledge.Default()).ProcessTask(ctx, task(t, "neural networks"))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "canceled")
}

func TestMatchConfidenceCaps(t *testing.T) {
	assert.Equal(t, 0.0, matchConfidence(0, exactMatchWeight))
	assert.InDelta(t, 0.9, matchConfidence(3, exactMatchWeight), 1e-9)
	assert.Equal(t, 1.0, matchConfidence(4, exactMatchWeight))
	assert.Equal(t, 1.0, matchConfidence(9, fuzzyMatchWeight))
}

func TestInDomain(t *testing.T) {
	assert.True(t, InDomain("how do GPT models work"))
	assert.True(t, InDomain("neural nets and transformers"))
	assert.False(t, InDomain("best pizza in naples"))
}
