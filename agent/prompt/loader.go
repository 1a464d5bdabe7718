package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

var (
	//go:embed template/planner.txt
	plannerRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Planner string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Planner: strings.TrimSpace(plannerRaw),
	}
}

// Validate rejects prompts the FString template would misread.
func (p PromptSet) Validate() error {
	if p.Planner == "" {
		return fmt.Errorf("%w: planner prompt is empty", contractx.ErrPromptMissing)
	}
	if strings.ContainsAny(p.Planner, "{}") {
		return fmt.Errorf("%w: planner prompt must not contain braces", contractx.ErrPromptMissing)
	}
	return nil
}
