package coordinatornode

import (
	"fmt"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/knowledge"
)

const (
	previewRunes   = 100
	previewMaxHits = 3
)

func Synthesize(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	resp := contractx.Response{
		Query:          in.Query,
		Success:        true,
		AgentResults:   map[string]contractx.AgentResult{},
		ExecutionTrace: make([]contractx.TraceEntry, 0, len(in.Results)),
	}
	plan := in.Plan
	resp.Plan = &plan

	var (
		total     float64
		succeeded int
	)
	for _, r := range in.Results {
		resp.Success = resp.Success && r.Success
		resp.ExecutionTrace = append(resp.ExecutionTrace, traceEntry(r))
		if !r.Success {
			continue
		}
		total += r.Confidence
		succeeded++
		resp.AgentResults[r.AgentID] = contractx.AgentResult{
			Data:          r.Data,
			Confidence:    r.Confidence,
			ExecutionTime: r.ExecutionTime,
		}
	}
	if len(in.Results) == 0 {
		resp.Success = false
	}
	if succeeded > 0 {
		resp.Confidence = total / float64(succeeded)
	}

	resp.SynthesizedAnswer = composeAnswer(in)
	in.Response = resp
	return in, nil
}

func traceEntry(r contractx.TaskResult) contractx.TraceEntry {
	if !r.Success {
		return contractx.TraceEntry{Agent: r.AgentID, Success: false, Error: r.Error}
	}
	elapsed := r.ExecutionTime
	return contractx.TraceEntry{Agent: r.AgentID, Success: true, ExecutionTime: &elapsed}
}

// composeAnswer renders the research, analysis and memory sections in
// that order. A knowledge limitation replaces the whole answer.
func composeAnswer(in *GraphState) string {
	if in.Research != nil && in.Research.Limitation != nil {
		return in.Research.Limitation.Message
	}

	var sections []string
	if in.Research != nil {
		if s := researchSection(*in.Research); s != "" {
			sections = append(sections, s)
		}
	}
	if in.Analysis != nil {
		if s := analysisSection(*in.Analysis); s != "" {
			sections = append(sections, s)
		}
	}
	if in.MemoryContext.Count > 0 {
		sections = append(sections, fmt.Sprintf("I also drew on %d related item(s) from earlier conversations.", in.MemoryContext.Count))
	}

	if len(sections) == 0 {
		return FallbackAnswer
	}
	return strings.Join(sections, "\n\n")
}

func researchSection(r contractx.ResearchResults) string {
	if r.FromMemory() {
		if len(r.Hits) == 0 {
			return ""
		}
		var b strings.Builder
		b.WriteString("Based on what we discussed before:")
		for i, h := range r.Hits {
			if i >= previewMaxHits {
				break
			}
			b.WriteString("\n- ")
			b.WriteString(preview(h.Content, previewRunes))
		}
		return b.String()
	}

	if len(r.Topics) == 0 {
		return ""
	}
	names := make([]string, 0, len(r.Topics))
	for name := range r.Topics {
		names = append(names, name)
	}
	sort.Strings(names)

	blocks := make([]string, 0, len(names))
	for _, name := range names {
		var b strings.Builder
		b.WriteString(titleCase(knowledge.DisplayName(name)))
		b.WriteString(":")
		facts := r.Topics[name]
		facets := make([]string, 0, len(facts))
		for k := range facts {
			facets = append(facets, k)
		}
		sort.Strings(facets)
		for _, k := range facets {
			fmt.Fprintf(&b, "\n- %s: %s", strings.ReplaceAll(k, "_", " "), renderValue(facts[k]))
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func analysisSection(a contractx.Analysis) string {
	if a.Stub() {
		return ""
	}
	lines := []string{fmt.Sprintf("Analysis (%s):", strings.ReplaceAll(string(a.Type), "_", " "))}
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
		}
	}

	add("Summary", a.ComparisonSummary)
	if len(a.KeyDifferences) > 0 {
		add("Key differences", strings.Join(a.KeyDifferences, "; "))
	}
	add("Findings", a.Findings)
	if len(a.Insights) > 0 {
		add("Insights", strings.Join(a.Insights, "; "))
	}
	add("Recommendation", a.Recommendation)
	if len(a.Metrics) > 0 {
		add("Metrics", renderValue(a.Metrics))
	}
	add("Calculation", a.Calculation)
	add("Summary", a.Summary)
	add("Overview", a.Overview)

	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func renderValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, renderValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, renderValue(t[k])))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
