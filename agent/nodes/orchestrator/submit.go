package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
)

// Submit hands a confirmed record to the sink. A sink failure is logged and
// never changes the reply.
func Submit(ctx context.Context, in *GraphState, sink contractx.SubmissionSink) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if sink == nil || in.Decision.Action != contractx.ActionSubmitRequest {
		return in, nil
	}

	err := sink.Submit(ctx, contractx.Submission{
		Domain:      in.Key.Domain,
		SessionID:   in.Key.ID,
		Values:      in.Merged.Clone(),
		SubmittedAt: in.Now,
	})
	if err != nil {
		log.Warn().Err(err).Str("session", in.Key.String()).Msg("submission sink failed")
		return in, nil
	}
	in.Submitted = true
	return in, nil
}
