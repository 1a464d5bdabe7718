package memory

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderSharedVocabularyIsCloser(t *testing.T) {
	e := NewHashEmbedder(256)
	vecs, err := e.Embed(context.Background(), []string{
		"transformer architectures tradeoffs",
		"tradeoffs of transformers",
		"sunny weather in paris",
	})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	near := squaredL2(vecs[0], vecs[1])
	far := squaredL2(vecs[0], vecs[2])
	assert.Less(t, near, far)
}

func TestVectorBlobRoundTrip(t *testing.T) {
	in := []float32{0.25, -1, 3.5}
	out, err := decodeVector(encodeVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeVector([]byte{1, 2, 3})
	require.Error(t, err)
}

func exerciseIndex(t *testing.T, idx VectorIndex) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "knowledge", IndexEntry{ID: "a", Document: "alpha", Embedding: []float32{1, 0}}))
	require.NoError(t, idx.Add(ctx, "knowledge", IndexEntry{ID: "b", Document: "beta", Embedding: []float32{0, 1}}))
	require.NoError(t, idx.Add(ctx, "conversations", IndexEntry{ID: "c", Document: "gamma", Embedding: []float32{1, 0}}))

	matches, err := idx.Query(ctx, "knowledge", []float32{0.9, 0.1}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "alpha", matches[0].Document)
	assert.InDelta(t, 0.02, matches[0].Distance, 1e-6)

	n, err := idx.Count(ctx, "knowledge")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, idx.Delete(ctx, "knowledge", "a"))
	matches, err = idx.Query(ctx, "knowledge", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].ID)
}

func TestSQLiteIndex(t *testing.T) {
	idx, err := OpenSQLiteIndex(t.TempDir())
	require.NoError(t, err)
	defer idx.Close()
	exerciseIndex(t, idx)
}

func TestPostgresIndex(t *testing.T) {
	dsn := os.Getenv("MEMORY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MEMORY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	idx, err := OpenPostgresIndex(ctx, dsn)
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.db.NewTruncateTable().Model((*pgVectorRow)(nil)).Exec(ctx)
	require.NoError(t, err)
	exerciseIndex(t, idx)
}
