package orchestratornode

import (
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	policyx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/policy"
)

// Decide uses the extraction's own decision when it has one, reconciled
// against the local rules, and the local policy otherwise.
func Decide(in *GraphState, policy *policyx.Policy) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	input := policyx.Input{
		Message: in.Message,
		Outcome: in.Validation,
		Updated: in.Updated,
		Values:  in.Merged,
	}

	if proposed := in.Extraction.Decision; proposed != nil {
		decision, overridden := policy.Reconcile(input, *proposed)
		if overridden {
			log.Debug().
				Str("session", in.Key.String()).
				Str("proposed", string(proposed.Action)).
				Str("action", string(decision.Action)).
				Msg("proposed decision overridden")
		}
		in.Decision = decision
		in.Overridden = overridden
		return in, nil
	}

	in.Decision = policy.Decide(input)
	return in, nil
}
