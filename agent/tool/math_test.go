package tool

import (
	"errors"
	"math"
	"testing"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"2 + 3 * 4":    14,
		"(2 + 3) * 4":  20,
		"2 ^ 3 ^ 2":    512,
		"-2 ^ 2":       -4,
		"2 * -3":       -6,
		"10 % 4":       2,
		"7 / 2":        3.5,
		"1.5\t+ 2.25":  3.75,
		"((1))":        1,
		"8 - 3 - 2":    3,
		"100 / 10 / 5": 2,
		"+4 - -4":      8,
		".5 * 4":       2,
	}
	for expr, want := range cases {
		got, err := Evaluate(expr)
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", expr, err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("Evaluate(%q) = %v, want %v", expr, got, want)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"", "2 +", "(1 + 2", "1 + 2)", "4 / 0", "3 % 0", "1..2", "2 x 3", "()", "1 2"} {
		if _, err := Evaluate(expr); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("Evaluate(%q) error = %v, want ErrValidation", expr, err)
		}
	}
}
