package orchestratornode

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

func FinalizeReply(in *GraphState, schema *slot.Schema) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if strings.TrimSpace(in.Decision.Message) == "" {
		return GraphOutput{}, fmt.Errorf("%w: decision has an empty message", contractx.ErrValidation)
	}

	log.Debug().
		Str("session", in.Key.String()).
		Bool("new_session", in.Created).
		Str("source", in.Extraction.Source).
		Str("action", string(in.Decision.Action)).
		Bool("overridden", in.Overridden).
		Strs("updated", in.Updated).
		Bool("submitted", in.Submitted).
		Msg("turn decided")

	state := schema.State(in.Merged)
	state.IsComplete = in.Validation.IsComplete

	return GraphOutput{
		SessionID: in.Key.ID,
		Decision:  in.Decision,
		Missing:   append([]string{}, in.Validation.Missing...),
		Slots:     state,
		Updated:   in.Updated,
		Source:    in.Extraction.Source,
		Submitted: in.Submitted,
	}, nil
}
