package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
)

const recordTurnTool = "record_turn"

// toolBackend forces a single tool call whose arguments carry the output.
type toolBackend struct {
	chatModel einomodel.ToolCallingChatModel
	toolInfo  *schema.ToolInfo
}

func newToolBackend(chatModel einomodel.ToolCallingChatModel) (*toolBackend, error) {
	toolInfo, err := utils.GoStruct2ToolInfo[pipelineOutput](
		recordTurnTool,
		"Record the slot values extracted from the latest user message and the next conversational move.",
	)
	if err != nil {
		return nil, fmt.Errorf("%w: convert tool info: %v", contractx.ErrModelInvoke, err)
	}
	return &toolBackend{chatModel: chatModel, toolInfo: toolInfo}, nil
}

func (b *toolBackend) generate(ctx context.Context, c call) (pipelineOutput, error) {
	messages := make([]*schema.Message, 0, len(c.History)+2)
	messages = append(messages, schema.SystemMessage(c.System))
	messages = append(messages, toSchemaMessages(c.History)...)
	messages = append(messages, schema.UserMessage(c.Input))

	resp, err := b.chatModel.Generate(ctx, messages,
		einomodel.WithTools([]*schema.ToolInfo{b.toolInfo}),
		einomodel.WithToolChoice(schema.ToolChoiceForced, b.toolInfo.Name),
	)
	if err != nil {
		return pipelineOutput{}, fmt.Errorf("%w: tool call generate: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.ToolCalls) == 0 {
		return pipelineOutput{}, fmt.Errorf("%w: no tool call in model reply", contractx.ErrSchemaViolation)
	}

	call := resp.ToolCalls[0]
	if name := strings.TrimSpace(call.Function.Name); name != b.toolInfo.Name {
		return pipelineOutput{}, fmt.Errorf("%w: unexpected tool=%q", contractx.ErrSchemaViolation, name)
	}

	var out pipelineOutput
	if err := sonic.UnmarshalString(call.Function.Arguments, &out); err != nil {
		return pipelineOutput{}, fmt.Errorf("%w: parse tool arguments: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}
