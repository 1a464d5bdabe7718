// Package analysis implements the analytical worker. It post-processes the
// running context handed over by the coordinator.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	"github.com/tanpawarit/chative-coordinator/agent/keyword"
	"github.com/tanpawarit/chative-coordinator/agent/tool"
	logx "github.com/tanpawarit/chative-coordinator/pkg/logger"
)

const (
	producedConfidence = 0.8
	stubConfidence     = 0.2
	efficiencyMarker   = "efficiency"
	NoDataToCompare    = "No data to compare"
)

var (
	compareWords       = []string{"compare", "compared", "comparing", "comparison", "versus", "vs"}
	effectivenessWords = []string{"analyze", "analyse", "analyzing", "analysis", "effectiveness", "effective", "evaluate"}
	calculateWords     = []string{"calculate", "calculation", "compute"}
)

type Worker struct {
	exec tool.Executor
	log  zerolog.Logger
}

var _ contractx.Worker = (*Worker)(nil)

func New() *Worker {
	return &Worker{
		exec: tool.NewExecutor(contractx.AgentAnalysis),
		log:  logx.Component(contractx.AgentAnalysis),
	}
}

func (w *Worker) ID() string { return contractx.AgentAnalysis }

func (w *Worker) Capabilities() []string {
	return []string{"analyze", "compare", "evaluate", "calculate"}
}

func (w *Worker) ProcessTask(ctx context.Context, msg contractx.Message) (result contractx.TaskResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = contractx.FailedResult(w.ID(), started, fmt.Errorf("%w: panic: %v", contractx.ErrWorkerFailure, r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return contractx.FailedResult(w.ID(), started, err)
	}

	content := msg.Content
	input := inputKeys(msg)
	research, hasResearch := researchFrom(msg)

	var a contractx.Analysis
	switch {
	case keyword.ContainsAny(content, compareWords...):
		a = compare(research, hasResearch)
	case keyword.ContainsAny(content, effectivenessWords...):
		a = effectiveness(len(input))
	case keyword.ContainsAny(content, calculateWords...):
		a = w.calculate(ctx, content)
	default:
		a = general(len(input))
	}

	confidence := producedConfidence
	if a.Stub() {
		confidence = stubConfidence
	}
	w.log.Debug().Str("analysis_type", string(a.Type)).Float64("confidence", confidence).Msg("analysis complete")

	res, err := contractx.NewTaskResult(
		w.ID(),
		true,
		contractx.AnalysisPayload{Analysis: a, InputKeys: input},
		confidence,
		contractx.Elapsed(started),
		"",
	)
	if err != nil {
		return contractx.FailedResult(w.ID(), started, err)
	}
	return res
}

func compare(research contractx.ResearchResults, ok bool) contractx.Analysis {
	items := research.Items()
	if !ok || len(items) == 0 {
		return contractx.Analysis{Type: contractx.AnalysisComparison, Comparison: NoDataToCompare}
	}

	names := research.ItemNames()
	a := contractx.Analysis{
		Type:              contractx.AnalysisComparison,
		ItemsCompared:     names,
		ComparisonSummary: fmt.Sprintf("Analyzed %d items", len(names)),
		KeyDifferences:    []string{},
		Recommendation:    "Further analysis needed",
	}
	if len(names) >= 2 {
		for _, name := range names {
			if strings.Contains(items[name], efficiencyMarker) {
				a.KeyDifferences = append(a.KeyDifferences, name+": efficiency considerations")
			}
		}
	}
	return a
}

func effectiveness(coverage int) contractx.Analysis {
	return contractx.Analysis{
		Type:     contractx.AnalysisEffectiveness,
		Findings: "Based on available data, multiple approaches show promise",
		Metrics:  map[string]any{"coverage": coverage, "depth": "moderate"},
		Insights: []string{"Each approach has unique strengths", "Context-dependent effectiveness"},
	}
}

func (w *Worker) calculate(ctx context.Context, content string) contractx.Analysis {
	a := contractx.Analysis{
		Type:        contractx.AnalysisCalculation,
		Calculation: "Simple metrics computed",
	}
	expr := tool.ExtractExpression(content)
	if expr == "" {
		return a
	}

	out, err := w.exec(ctx, tool.ToolMathEvaluate, map[string]any{"expression": expr})
	if err != nil || out.Error != "" {
		w.log.Debug().Err(err).Str("tool_error", out.Error).Str("expression", expr).Msg("calculation skipped")
		return a
	}
	if v, ok := out.Result.(tool.MathEvaluateOutput); ok {
		value := v.Result
		a.Expression = v.Expression
		a.Value = &value
		a.Calculation = fmt.Sprintf("%s = %g", v.Expression, v.Result)
	}
	return a
}

func general(points int) contractx.Analysis {
	return contractx.Analysis{
		Type:     contractx.AnalysisGeneral,
		Summary:  fmt.Sprintf("General analysis of %d data points", points),
		Overview: "Data processed and structured for insights",
	}
}

func researchFrom(msg contractx.Message) (contractx.ResearchResults, bool) {
	switch v := msg.Metadata[contractx.MetaResearchResults].(type) {
	case contractx.ResearchResults:
		return v, true
	case *contractx.ResearchResults:
		if v != nil {
			return *v, true
		}
	}
	return contractx.ResearchResults{}, false
}

// inputKeys lists the running-context entries present on the message.
func inputKeys(msg contractx.Message) []string {
	keys := make([]string, 0, 3)
	for _, k := range []string{contractx.MetaMemoryContext, contractx.MetaResearchResults, contractx.MetaAnalysisResults} {
		if v, ok := msg.Metadata[k]; ok && v != nil {
			keys = append(keys, k)
		}
	}
	return keys
}
