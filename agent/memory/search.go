package memory

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/keyword"
)

const (
	TierVector    = "vector"
	TierSubstring = "substring"
	TierLiteral   = "literal"
)

// searchStrategy returns hits or nothing; an error or an empty result
// hands the request to the next strategy in the chain.
type searchStrategy struct {
	tier string
	run  func(ctx context.Context, req contractx.SearchRequest, records []contractx.MemoryRecord) ([]contractx.MemoryHit, error)
}

func (s *Store) searchChain() []searchStrategy {
	return []searchStrategy{
		{tier: TierVector, run: s.vectorSearch},
		{tier: TierSubstring, run: s.substringSearch},
		{tier: TierLiteral, run: s.literalSearch},
	}
}

func (s *Store) vectorSearch(ctx context.Context, req contractx.SearchRequest, records []contractx.MemoryRecord) ([]contractx.MemoryHit, error) {
	if len(records) == 0 {
		return nil, nil
	}
	vecs, err := s.embedder.Embed(ctx, []string{req.Query})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, nil
	}

	n := req.Limit
	if req.Topic != "" || len(req.Keywords) > 0 {
		// filters run after ranking; over-fetch so they have something to cut
		n = req.Limit * 4
	}
	matches, err := s.index.Query(ctx, collectionFor(req.Type), vecs[0], n)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]contractx.MemoryRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}
	hits := make([]contractx.MemoryHit, 0, len(matches))
	for _, m := range matches {
		rec, ok := byID[m.ID]
		if !ok || !passesFilters(rec, req) {
			continue
		}
		d := m.Distance
		hits = append(hits, contractx.MemoryHit{
			ID:       rec.ID,
			Content:  m.Document,
			Metadata: rec.Metadata,
			Distance: &d,
			Tier:     TierVector,
		})
		if len(hits) >= req.Limit {
			break
		}
	}
	return hits, nil
}

func (s *Store) substringSearch(_ context.Context, req contractx.SearchRequest, records []contractx.MemoryRecord) ([]contractx.MemoryHit, error) {
	terms := keyword.Terms(req.Query, 0)
	if len(terms) == 0 {
		return nil, nil
	}
	return scanRecords(s.sample(records), req, TierSubstring, func(doc string) bool {
		for _, t := range terms {
			if strings.Contains(doc, t) {
				return true
			}
		}
		return false
	}), nil
}

func (s *Store) literalSearch(_ context.Context, req contractx.SearchRequest, records []contractx.MemoryRecord) ([]contractx.MemoryHit, error) {
	needle := strings.ToLower(strings.TrimSpace(req.Query))
	if needle == "" {
		return nil, nil
	}
	return scanRecords(s.sample(records), req, TierLiteral, func(doc string) bool {
		return strings.Contains(doc, needle)
	}), nil
}

// sample bounds the linear scans to the most recent records.
func (s *Store) sample(records []contractx.MemoryRecord) []contractx.MemoryRecord {
	if n := s.cfg.FallbackSampleSize; n > 0 && len(records) > n {
		return records[len(records)-n:]
	}
	return records
}

func scanRecords(records []contractx.MemoryRecord, req contractx.SearchRequest, tier string, match func(doc string) bool) []contractx.MemoryHit {
	var hits []contractx.MemoryHit
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if !match(strings.ToLower(rec.Document)) || !passesFilters(rec, req) {
			continue
		}
		hits = append(hits, contractx.MemoryHit{
			ID:       rec.ID,
			Content:  rec.Document,
			Metadata: rec.Metadata,
			Tier:     tier,
		})
		if len(hits) >= req.Limit {
			break
		}
	}
	return hits
}

func passesFilters(rec contractx.MemoryRecord, req contractx.SearchRequest) bool {
	if req.Topic != "" && !strings.EqualFold(rec.Metadata.Topic, req.Topic) {
		return false
	}
	if len(req.Keywords) > 0 && !keyword.Overlap(req.Keywords, recordTerms(rec)) {
		return false
	}
	return true
}

// recordTerms is the stored keyword set plus every content token, so short
// terms such as "gpt" still match records whose keywords skipped them.
func recordTerms(rec contractx.MemoryRecord) []string {
	return append(append([]string(nil), rec.Metadata.Keywords...), keyword.Tokenize(rec.Content)...)
}
