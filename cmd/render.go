package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	body    lipgloss.Style
	section lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	detail  lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		body:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section: lipgloss.NewStyle().MarginTop(1),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failed:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResponse(resp contractx.Response) string {
	s := newStyles()

	header := fmt.Sprintf("confidence: %.2f  success: %t", resp.Confidence, resp.Success)
	if resp.Plan != nil {
		steps := make([]string, 0, len(resp.Plan.ExecutionOrder))
		for _, step := range resp.Plan.ExecutionOrder {
			steps = append(steps, string(step))
		}
		header += fmt.Sprintf("  plan: %s (%s)", strings.Join(steps, " -> "), resp.Plan.Source)
	}

	lines := []string{
		s.title.Render("Answer"),
		s.header.Render(header),
		s.section.Render(s.body.Render(resp.SynthesizedAnswer)),
	}

	trace := []string{s.title.Render("Trace")}
	if len(resp.ExecutionTrace) == 0 {
		trace = append(trace, s.empty.Render("no steps executed"))
	}
	for _, e := range resp.ExecutionTrace {
		trace = append(trace, traceLine(e, s))
	}
	lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, trace...)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func traceLine(e contractx.TraceEntry, s styles) string {
	if !e.Success {
		return s.failed.Render("x "+e.Agent) + " " + s.detail.Render(e.Error)
	}
	elapsed := 0.0
	if e.ExecutionTime != nil {
		elapsed = *e.ExecutionTime
	}
	note := fmt.Sprintf("%.3fs", elapsed)
	if elapsed == 0 {
		note = "reused from memory"
	}
	return s.ok.Render("ok "+e.Agent) + " " + s.detail.Render(note)
}

func renderHits(hits []contractx.MemoryHit) string {
	s := newStyles()
	lines := []string{s.title.Render("Memories"), s.header.Render(fmt.Sprintf("hits: %d", len(hits)))}
	if len(hits) == 0 {
		lines = append(lines, s.empty.Render("No matching memories."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	for _, h := range hits {
		meta := string(h.Metadata.Type)
		if h.Distance != nil {
			meta += fmt.Sprintf("  distance: %.3f", *h.Distance)
		}
		if h.Tier != "" {
			meta += "  tier: " + h.Tier
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left,
			s.title.Render(h.ID),
			s.detail.Render(meta),
			s.body.Render(h.Content),
		)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStats(stats contractx.MemoryStats) string {
	s := newStyles()
	return lipgloss.JoinVertical(lipgloss.Left,
		s.title.Render("Memory"),
		s.header.Render(fmt.Sprintf("backend: %s  path: %s", stats.Backend, stats.StoragePath)),
		s.body.Render(fmt.Sprintf("conversations: %d", stats.ConversationCount)),
		s.body.Render(fmt.Sprintf("knowledge: %d", stats.KnowledgeCount)),
		s.body.Render(fmt.Sprintf("agent states: %d", stats.AgentStateCount)),
	)
}
