package llm

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

// openAIBackend talks to the chat completions endpoint directly through the
// OpenAI SDK, without eino.
type openAIBackend struct {
	client      *openaisdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

func newOpenAIBackend(client *openaisdk.Client, model string, temperature float32, maxTokens int) *openAIBackend {
	return &openAIBackend{
		client:      client,
		model:       model,
		temperature: float64(temperature),
		maxTokens:   int64(maxTokens),
	}
}

func (b *openAIBackend) generate(ctx context.Context, c call) (pipelineOutput, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(c.History)+2)
	messages = append(messages, openaisdk.SystemMessage(c.System))
	for _, t := range c.History {
		if t.Role == statex.RoleAssistant {
			messages = append(messages, openaisdk.AssistantMessage(t.Content))
			continue
		}
		messages = append(messages, openaisdk.UserMessage(t.Content))
	}
	messages = append(messages, openaisdk.UserMessage(c.Input))

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(b.model),
		Messages:    messages,
		Temperature: openaisdk.Float(b.temperature),
	}
	if b.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(b.maxTokens)
	}

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return pipelineOutput{}, fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return pipelineOutput{}, fmt.Errorf("%w: chat completion has no choices", contractx.ErrSchemaViolation)
	}

	content, err := extractJSONObject(resp.Choices[0].Message.Content)
	if err != nil {
		return pipelineOutput{}, err
	}
	var out pipelineOutput
	if err := sonic.UnmarshalString(content, &out); err != nil {
		return pipelineOutput{}, fmt.Errorf("%w: decode chat completion: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}
