package memory

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/tanpawarit/chative-coordinator/agent/keyword"
)

type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// HashEmbedder is a local bag-of-terms embedder: every stemmed term is
// hashed into one of Dims signed buckets and the vector is L2-normalized.
// Texts sharing vocabulary land close together under squared L2 distance.
type HashEmbedder struct {
	Dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashEmbedder{Dims: dims}
}

func (e *HashEmbedder) Name() string { return EmbedderHash }

func (e *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, e.embedOne(text))
	}
	return out, nil
}

func (e *HashEmbedder) embedOne(text string) []float32 {
	vec := make([]float32, e.Dims)
	for _, term := range keyword.Terms(text, 0) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(keyword.Stem(term)))
		sum := h.Sum32()
		idx := int(sum % uint32(e.Dims))
		if sum&(1<<31) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	normalize(vec)
	return vec
}

func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// squaredL2 is the distance reported on vector hits. Vectors of different
// length are compared over their common prefix with the tail counted.
func squaredL2(a []float32, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = float64(a[i])
		}
		if i < len(b) {
			y = float64(b[i])
		}
		d := x - y
		sum += d * d
	}
	return sum
}
