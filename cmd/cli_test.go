package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

func executeCLI(t *testing.T, storage string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("MEMORY_STORAGE_PATH", storage)
	t.Setenv("OPENROUTER_API_KEY", "")

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", stdout)
}

func TestMemoryStoreGetAndStats(t *testing.T) {
	storage := t.TempDir()

	stdout, _, err := executeCLI(t, storage,
		"memory", "store", "BERT is an encoder-only transformer",
		"--type", "knowledge",
		"--topic", "transformers",
		"--source", "cli-test",
		"--confidence", "0.8",
	)
	require.NoError(t, err)
	id := strings.TrimSpace(stdout)
	assert.True(t, strings.HasPrefix(id, "knowledge_"), id)

	stdout, _, err = executeCLI(t, storage, "memory", "get", id, "--json")
	require.NoError(t, err)
	var records []contractx.MemoryRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "BERT is an encoder-only transformer", records[0].Content)
	assert.Equal(t, "cli-test", records[0].Metadata.Source)
	assert.InDelta(t, 0.8, records[0].Metadata.Confidence, 1e-9)

	stdout, _, err = executeCLI(t, storage, "memory", "stats", "--json")
	require.NoError(t, err)
	var stats contractx.MemoryStats
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 1, stats.KnowledgeCount)
	assert.Equal(t, 0, stats.ConversationCount)
}

func TestMemorySearchJSON(t *testing.T) {
	storage := t.TempDir()

	_, _, err := executeCLI(t, storage, "memory", "store", "transformers trade accuracy for compute")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, storage, "memory", "search", "transformers", "compute", "--json")
	require.NoError(t, err)
	var mc contractx.MemoryContext
	require.NoError(t, json.Unmarshal([]byte(stdout), &mc))
	assert.Equal(t, 1, mc.Count)
}

func TestMemoryStoreRejectsUnknownType(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "memory", "store", "x", "--type", "diary")
	require.Error(t, err)
	assert.ErrorIs(t, err, contractx.ErrValidation)
}

func TestAskJSONStoresInteraction(t *testing.T) {
	storage := t.TempDir()

	stdout, _, err := executeCLI(t, storage, "ask", "--json", "Compare", "transformers", "and", "neural", "networks")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"synthesized_answer"`)
	assert.Contains(t, stdout, `"research_agent"`)

	stdout, _, err = executeCLI(t, storage, "memory", "stats", "--json")
	require.NoError(t, err)
	var stats contractx.MemoryStats
	require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
	assert.Equal(t, 1, stats.ConversationCount)
}

func TestAskRendersAnswer(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "ask", "What's the weather in Paris?")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Answer")
	assert.Contains(t, stdout, "Trace")
	assert.Contains(t, stdout, "AI and machine learning")
	assert.Contains(t, stdout, "memory_agent")
}

func TestAskRequiresQuery(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "ask")
	require.Error(t, err)
}
