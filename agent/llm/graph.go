package llm

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

// graphBackend asks for JSON in the message content and parses it with the
// eino JSON message parser.
type graphBackend struct {
	runner compose.Runnable[map[string]any, *schema.Message]
	parser schema.MessageParser[pipelineOutput]
}

func newGraphBackend(ctx context.Context, chatModel einomodel.BaseChatModel, system string) (*graphBackend, error) {
	runner, err := compileExtractionGraph(ctx, chatModel, system)
	if err != nil {
		return nil, fmt.Errorf("%w: compile extraction graph: %v", contractx.ErrModelInvoke, err)
	}
	return &graphBackend{
		runner: runner,
		parser: schema.NewMessageJSONParser[pipelineOutput](&schema.MessageJSONParseConfig{
			ParseFrom: schema.MessageParseFromContent,
		}),
	}, nil
}

// compileExtractionGraph renders system as a Go template over the call's
// prompt variables inside the prompt node.
func compileExtractionGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	system string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(system),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{{.input}}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add extraction prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add extraction model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add extraction edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add extraction edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add extraction edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("llm.extraction_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile extraction graph: %w", err)
	}
	return runner, nil
}

func (b *graphBackend) generate(ctx context.Context, c call) (pipelineOutput, error) {
	vars := make(map[string]any, len(c.Vars)+2)
	for k, v := range c.Vars {
		vars[k] = v
	}
	vars["history"] = toSchemaMessages(c.History)
	vars["input"] = c.Input

	msg, err := b.runner.Invoke(ctx, vars)
	if err != nil {
		return pipelineOutput{}, fmt.Errorf("%w: extraction graph invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return pipelineOutput{}, fmt.Errorf("%w: empty model reply", contractx.ErrSchemaViolation)
	}

	content, err := extractJSONObject(msg.Content)
	if err != nil {
		return pipelineOutput{}, err
	}
	out, err := b.parser.Parse(ctx, &schema.Message{Role: msg.Role, Content: content})
	if err != nil {
		return pipelineOutput{}, fmt.Errorf("%w: parse model reply: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}

func toSchemaMessages(turns []statex.Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case statex.RoleAssistant:
			out = append(out, schema.AssistantMessage(t.Content, nil))
		default:
			out = append(out, schema.UserMessage(t.Content))
		}
	}
	return out
}
