package memory

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

type IndexEntry struct {
	ID        string
	Document  string
	Embedding []float32
}

type IndexMatch struct {
	ID       string
	Document string
	Distance float64
}

// VectorIndex stores embeddings per collection and answers nearest
// neighbour queries ordered by ascending squared L2 distance.
type VectorIndex interface {
	Name() string
	Add(ctx context.Context, collection string, entry IndexEntry) error
	Delete(ctx context.Context, collection string, id string) error
	Query(ctx context.Context, collection string, vec []float32, n int) ([]IndexMatch, error)
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("vector blob has %d bytes, not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec, nil
}

// rankMatches keeps the n closest candidates, stable on insertion order
// for equal distances.
func rankMatches(candidates []IndexMatch, n int) []IndexMatch {
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && candidates[j].Distance < candidates[j-1].Distance; j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
