package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/nodes/orchestrator"
)

const (
	nodeValidateRequest = "validate_request"
	nodeFinalizeReply   = "finalize_reply"
)

type turnStep struct {
	name string
	run  func(context.Context, *nodex.GraphState) (*nodex.GraphState, error)
}

// turnSteps lists the state-to-state nodes between request validation and
// the final reply, in execution order.
func (o *Orchestrator) turnSteps() []turnStep {
	return []turnStep{
		{"load_session", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadSession(ctx, in, o.sessions, o.schema)
		}},
		{"extract", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Extract(ctx, in, o.schema, o.strategies)
		}},
		{"apply_extraction", func(_ context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ApplyExtraction(in, o.schema)
		}},
		{"decide", func(_ context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Decide(in, o.policy)
		}},
		{"save_session", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SaveSession(ctx, in, o.sessions)
		}},
		{"submit", func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Submit(ctx, in, o.sink)
		}},
	}
}

func (o *Orchestrator) compileHandleTurnGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	validate := compose.InvokableLambda(func(_ context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
		return nodex.ValidateRequest(in, o.schema, o.now)
	})
	if err := graph.AddLambdaNode(nodeValidateRequest, validate); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	order := []string{compose.START, nodeValidateRequest}
	for _, step := range o.turnSteps() {
		if err := graph.AddLambdaNode(step.name, compose.InvokableLambda(step.run)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", step.name, err)
		}
		order = append(order, step.name)
	}

	finalize := compose.InvokableLambda(func(_ context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
		return nodex.FinalizeReply(in, o.schema)
	})
	if err := graph.AddLambdaNode(nodeFinalizeReply, finalize); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalizeReply, err)
	}
	order = append(order, nodeFinalizeReply, compose.END)

	for i := 1; i < len(order); i++ {
		if err := graph.AddEdge(order[i-1], order[i]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", order[i-1], order[i], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_turn."+o.schema.Domain()))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
