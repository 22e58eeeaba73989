package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

// SaveSession appends the turn to the transcript used this turn and replaces
// the stored session with it.
func SaveSession(ctx context.Context, in *GraphState, sessions *statex.SessionStore) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st := in.Session
	st.Transcript = append([]statex.Turn(nil), in.Transcript...)
	st.Append(in.Message, in.Decision.Message)
	st.Slots = in.Merged.Clone()
	st.AwaitingConfirmation = in.Decision.AwaitingConfirmation

	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	if err := sessions.Put(ctx, st); err != nil {
		return nil, err
	}
	return in, nil
}
