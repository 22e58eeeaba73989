package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

// LoadSession loads or creates the session, picks the transcript used as
// extraction context and merges the caller's slot update onto stored state.
func LoadSession(
	ctx context.Context,
	in *GraphState,
	sessions *statex.SessionStore,
	schema *slot.Schema,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, created, err := sessions.GetOrCreate(ctx, in.Key)
	if err != nil {
		return nil, err
	}
	in.Session = st
	in.Created = created

	if len(st.Transcript) > 0 {
		in.Transcript = st.Transcript
	} else {
		in.Transcript = in.History
	}

	supplied, dropped := schema.Screen(in.Supplied)
	if len(dropped) > 0 {
		log.Debug().
			Str("session", in.Key.String()).
			Strs("fields", dropped).
			Msg("caller slot values failed format check and were ignored")
	}
	in.Base = schema.Merge(st.Slots, supplied)

	return in, nil
}
