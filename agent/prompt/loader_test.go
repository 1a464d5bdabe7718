package prompt

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if err := set.Validate(); err != nil {
		t.Fatalf("embedded prompt invalid: %v", err)
	}
}

func TestValidateRejectsBraces(t *testing.T) {
	t.Parallel()

	if err := (PromptSet{Planner: `reply with {"a":1}`}).Validate(); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
	if err := (PromptSet{}).Validate(); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing for empty prompt, got %v", err)
	}
}
