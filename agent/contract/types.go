package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
)

type Action string

const (
	ActionRequestMoreInfo     Action = "request_more_info"
	ActionRequestConfirmation Action = "request_confirmation"
	ActionSubmitRequest       Action = "submit_request"
)

func ParseAction(raw string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(raw))); a {
	case ActionRequestMoreInfo, ActionRequestConfirmation, ActionSubmitRequest:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown action=%q", ErrSchemaViolation, raw)
	}
}

// Decision is the final artifact of a turn before persistence.
type Decision struct {
	Action               Action `json:"action"`
	Message              string `json:"message"`
	AwaitingConfirmation bool   `json:"awaiting_confirmation"`
}

type OutcomeStatus string

const (
	OutcomeOK          OutcomeStatus = "ok"
	OutcomeUnavailable OutcomeStatus = "unavailable"
	OutcomeInvalid     OutcomeStatus = "invalid"
)

// Outcome is what an extraction strategy produced for one turn. Only an OK
// outcome carries usable Values; Decision is optional even then.
type Outcome struct {
	Status OutcomeStatus
	Source string

	Values   slot.Values
	Decision *Decision

	Err error
}

func (o Outcome) OK() bool { return o.Status == OutcomeOK }

func Unavailable(source string, err error) Outcome {
	return Outcome{Status: OutcomeUnavailable, Source: source, Err: err}
}

func Invalid(source string, err error) Outcome {
	return Outcome{Status: OutcomeInvalid, Source: source, Err: err}
}

// ExtractionRequest carries everything a strategy may look at for one turn.
type ExtractionRequest struct {
	Schema     *slot.Schema
	Message    string
	Transcript []statex.Turn
	Current    slot.Values
}

// Submission is the record handed to a SubmissionSink once the user confirms.
type Submission struct {
	Domain      string      `json:"domain"`
	SessionID   string      `json:"session_id"`
	Values      slot.Values `json:"values"`
	SubmittedAt time.Time   `json:"submitted_at"`
}
