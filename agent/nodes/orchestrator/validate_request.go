package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

var (
	ErrInvalidMessage = fmt.Errorf("%w: message is empty", contractx.ErrValidation)
	ErrInvalidSession = fmt.Errorf("%w: session id is empty", contractx.ErrValidation)
)

type GraphInput struct {
	SessionID string
	Message   string
	// History is the caller's transcript, used only when the session has none.
	History []statex.Turn
	// Slots is the caller's slot update; non-string and unknown fields are
	// already dropped by the transport layer.
	Slots slot.Values
}

type GraphOutput struct {
	SessionID string
	Decision  contractx.Decision
	Missing   []string
	Slots     slot.State
	Updated   []string
	Source    string
	Submitted bool
}

// GraphState is threaded through every node of one turn.
type GraphState struct {
	Key      statex.Key
	Message  string
	History  []statex.Turn
	Supplied slot.Values
	Now      time.Time

	Session    *statex.Session
	Created    bool
	Transcript []statex.Turn
	Base       slot.Values

	Extraction contractx.Outcome
	Merged     slot.Values
	Validation slot.Outcome
	Updated    []string

	Decision   contractx.Decision
	Overridden bool
	Submitted  bool
}

func ValidateRequest(in GraphInput, schema *slot.Schema, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Key:      statex.Key{Domain: schema.Domain(), ID: sessionID},
		Message:  message,
		History:  in.History,
		Supplied: in.Slots,
		Now:      nowFn().UTC(),
	}, nil
}
