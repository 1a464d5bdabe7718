package planner

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
)

const plannerGraphName = "planner.model_graph"

// compilePlannerGraph wires query -> prompt -> model -> json -> plan. The
// last node rejects outputs that name no known step.
func compilePlannerGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[string, contractx.Plan], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("Query: {query}"),
	)
	parser := schema.NewMessageJSONParser[plannerLLMOutput](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[string, contractx.Plan]()

	toVars := func(_ context.Context, query string) (map[string]any, error) {
		return map[string]any{"query": query}, nil
	}
	normalize := func(_ context.Context, out plannerLLMOutput) (contractx.Plan, error) {
		return normalizeLLMPlan(out)
	}

	if err := graph.AddLambdaNode("query_vars", compose.InvokableLambda(toVars)); err != nil {
		return nil, fmt.Errorf("add query_vars node: %w", err)
	}
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add parse_json node: %w", err)
	}
	if err := graph.AddLambdaNode("normalize_plan", compose.InvokableLambda(normalize)); err != nil {
		return nil, fmt.Errorf("add normalize_plan node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "query_vars"},
		{"query_vars", "prompt"},
		{"prompt", "model"},
		{"model", "parse_json"},
		{"parse_json", "normalize_plan"},
		{"normalize_plan", compose.END},
	}
	for _, e := range edges {
		if err := graph.AddEdge(e[0], e[1]); err != nil {
			return nil, fmt.Errorf("add planner edge %s->%s: %w", e[0], e[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(plannerGraphName))
	if err != nil {
		return nil, fmt.Errorf("compile planner graph: %w", err)
	}
	return runner, nil
}
