package coordinatornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/keyword"
)

func ValidateQuery(in GraphInput, nowFn func() time.Time, termLimit int) (*GraphState, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", contractx.ErrValidation)
	}
	return &GraphState{
		Query: query,
		Terms: keyword.Terms(query, termLimit),
		Now:   nowFn().UTC(),
	}, nil
}
