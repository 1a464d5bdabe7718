package tool

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

const ToolMathEvaluate = "math.evaluate"

// arithmetic runs inside free text: digits, operators, parentheses and blanks
var mathCandidatePattern = regexp.MustCompile(`[\d\s\+\-\*/%\^\(\)\.]+`)

type MathEvaluateOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

// ExtractExpression returns the longest arithmetic run embedded in free
// text that tokenizes cleanly, or "" when there is none.
func ExtractExpression(text string) string {
	best := ""
	for _, candidate := range mathCandidatePattern.FindAllString(text, -1) {
		candidate = strings.TrimSpace(candidate)
		if len(candidate) <= len(best) || !strings.ContainsAny(candidate, "0123456789") {
			continue
		}
		if _, err := tokenize(candidate); err != nil {
			continue
		}
		best = candidate
	}
	return best
}

func executeMathTool(tool string, args map[string]any) (contractx.ToolResult, error) {
	expression, ok := args["expression"].(string)
	if !ok {
		msg := "expression must be a string"
		if _, present := args["expression"]; !present {
			msg = "expression is required"
		}
		return contractx.ToolResult{Tool: tool, Error: msg}, nil
	}

	expression = strings.TrimSpace(expression)
	value, err := Evaluate(expression)
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
	}
	return contractx.ToolResult{
		Tool:   tool,
		Result: MathEvaluateOutput{Expression: expression, Result: value},
	}, nil
}

// Evaluate computes an arithmetic expression over + - * / % ^ and
// parentheses. ^ binds tightest and is right associative.
func Evaluate(expression string) (float64, error) {
	tokens, err := tokenize(expression)
	if err != nil {
		return 0, err
	}
	e := &evaluator{tokens: tokens}
	value, err := e.expr(0)
	if err != nil {
		return 0, err
	}
	if tok := e.peek(); tok.kind != tokEnd {
		return 0, fmt.Errorf("%w: unexpected %q at position %d", contractx.ErrValidation, tok.text, tok.pos)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, fmt.Errorf("%w: result is not a finite number", contractx.ErrValidation)
	}
	return value, nil
}

type tokenKind int

const (
	tokEnd tokenKind = iota
	tokNumber
	tokOp
	tokOpen
	tokClose
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

// tokenize also checks parenthesis balance so callers can use it as a
// cheap validity test.
func tokenize(expression string) ([]token, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("%w: expression is empty", contractx.ErrValidation)
	}

	var (
		tokens []token
		depth  int
	)
	for i := 0; i < len(expression); {
		ch := rune(expression[i])
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch >= '0' && ch <= '9' || ch == '.':
			start := i
			for i < len(expression) && (expression[i] >= '0' && expression[i] <= '9' || expression[i] == '.') {
				i++
			}
			raw := expression[start:i]
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || !strings.ContainsAny(raw, "0123456789") {
				return nil, fmt.Errorf("%w: invalid number %q at position %d", contractx.ErrValidation, raw, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: raw, value: v, pos: start})
		case strings.ContainsRune("+-*/%^", ch):
			tokens = append(tokens, token{kind: tokOp, text: string(ch), pos: i})
			i++
		case ch == '(':
			depth++
			tokens = append(tokens, token{kind: tokOpen, text: "(", pos: i})
			i++
		case ch == ')':
			depth--
			if depth < 0 {
				return nil, errUnbalanced
			}
			tokens = append(tokens, token{kind: tokClose, text: ")", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: invalid character %q at position %d", contractx.ErrValidation, ch, i)
		}
	}
	if depth != 0 {
		return nil, errUnbalanced
	}
	return append(tokens, token{kind: tokEnd, pos: len(expression)}), nil
}

var errUnbalanced = fmt.Errorf("%w: expression has unbalanced parentheses", contractx.ErrValidation)

var precedence = map[string]int{
	"+": 1, "-": 1,
	"*": 2, "/": 2, "%": 2,
	"^": 4,
}

type evaluator struct {
	tokens []token
	pos    int
}

func (e *evaluator) peek() token { return e.tokens[e.pos] }

func (e *evaluator) next() token {
	tok := e.tokens[e.pos]
	if tok.kind != tokEnd {
		e.pos++
	}
	return tok
}

// expr is precedence climbing over binary operators of at least minPrec.
func (e *evaluator) expr(minPrec int) (float64, error) {
	left, err := e.unary()
	if err != nil {
		return 0, err
	}
	for {
		tok := e.peek()
		prec, ok := precedence[tok.text]
		if tok.kind != tokOp || !ok || prec < minPrec {
			return left, nil
		}
		e.next()

		nextMin := prec + 1
		if tok.text == "^" {
			nextMin = prec
		}
		right, err := e.expr(nextMin)
		if err != nil {
			return 0, err
		}
		if left, err = apply(tok, left, right); err != nil {
			return 0, err
		}
	}
}

// unary binds looser than ^, so -2^2 is -4.
func (e *evaluator) unary() (float64, error) {
	if tok := e.peek(); tok.kind == tokOp && (tok.text == "-" || tok.text == "+") {
		e.next()
		v, err := e.expr(precedence["*"] + 1)
		if err != nil {
			return 0, err
		}
		if tok.text == "-" {
			return -v, nil
		}
		return v, nil
	}
	return e.primary()
}

func (e *evaluator) primary() (float64, error) {
	tok := e.next()
	switch tok.kind {
	case tokNumber:
		return tok.value, nil
	case tokOpen:
		v, err := e.expr(0)
		if err != nil {
			return 0, err
		}
		if closing := e.next(); closing.kind != tokClose {
			return 0, fmt.Errorf("%w: missing closing parenthesis at position %d", contractx.ErrValidation, closing.pos)
		}
		return v, nil
	case tokEnd:
		return 0, fmt.Errorf("%w: expression ends early", contractx.ErrValidation)
	default:
		return 0, fmt.Errorf("%w: expected number at position %d", contractx.ErrValidation, tok.pos)
	}
}

var errDivByZero = errors.New("division by zero")

func apply(op token, left, right float64) (float64, error) {
	switch op.text {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, fmt.Errorf("%w: %v", contractx.ErrValidation, errDivByZero)
		}
		return left / right, nil
	case "%":
		if right == 0 {
			return 0, fmt.Errorf("%w: modulo by zero", contractx.ErrValidation)
		}
		return math.Mod(left, right), nil
	case "^":
		return math.Pow(left, right), nil
	}
	return 0, fmt.Errorf("%w: unknown operator %q", contractx.ErrValidation, op.text)
}
