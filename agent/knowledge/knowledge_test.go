package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

func TestDefaultTopics(t *testing.T) {
	b := Default()
	assert.Equal(t, []string{"machine_learning", "neural_networks", "transformers"}, b.Topics())

	facts, ok := b.Lookup("transformers")
	require.True(t, ok)
	assert.Equal(t, "computational cost vs performance", facts["tradeoffs"])
	assert.Contains(t, facts.Text(), "efficiency")
	assert.Contains(t, facts.Text(), "high memory")

	nn, ok := b.Lookup("neural_networks")
	require.True(t, ok)
	assert.NotContains(t, nn.Text(), "efficiency")
}

func TestLoadExternalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[topics.Reinforcement_Learning]
methods = ["q-learning", "policy gradient"]
`), 0o600))

	b, err := Load(Config{File: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"reinforcement_learning"}, b.Topics())
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("title = 'nothing'"))
	require.ErrorIs(t, err, contractx.ErrValidation)

	_, err = Parse([]byte("[topics"))
	require.ErrorIs(t, err, contractx.ErrValidation)
}

func TestWordsAndDisplayName(t *testing.T) {
	assert.Equal(t, []string{"neural", "networks"}, Words("neural_networks"))
	assert.Equal(t, "machine learning", DisplayName("machine_learning"))
	assert.Equal(t, []string{"transformers"}, Words("transformers"))
}
