package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

// Extract asks each strategy in order and keeps the first OK outcome. Any
// other outcome is logged and the next strategy is tried.
func Extract(
	ctx context.Context,
	in *GraphState,
	schema *slot.Schema,
	strategies []contractx.Strategy,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	req := contractx.ExtractionRequest{
		Schema:     schema,
		Message:    in.Message,
		Transcript: in.Transcript,
		Current:    in.Base,
	}

	for _, strategy := range strategies {
		outcome := strategy.Extract(ctx, req)
		if outcome.OK() {
			log.Debug().
				Str("session", in.Key.String()).
				Str("strategy", outcome.Source).
				Bool("decided", outcome.Decision != nil).
				Msg("extraction served")
			in.Extraction = outcome
			return in, nil
		}

		log.Warn().
			Err(outcome.Err).
			Str("session", in.Key.String()).
			Str("strategy", strategy.Name()).
			Str("status", string(outcome.Status)).
			Msg("extraction strategy failed, falling back")
	}

	in.Extraction = contractx.Outcome{Status: contractx.OutcomeOK, Source: "none", Values: slot.Values{}}
	return in, nil
}
