// Package policy decides the next conversational move from a validated slot
// state and composes the reply text.
package policy

import (
	"strings"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

const submitMessage = "Great! I will submit your request now."

// Input is everything one decision looks at.
type Input struct {
	Message string
	Outcome slot.Outcome
	// Updated lists fields that received a usable value this turn, in schema order.
	Updated []string
	Values  slot.Values
}

type Policy struct {
	schema        *slot.Schema
	confirmations PhraseSet
	greetings     PhraseSet
}

func New(schema *slot.Schema) *Policy {
	return &Policy{
		schema:        schema,
		confirmations: DefaultConfirmations,
		greetings:     DefaultGreetings,
	}
}

// ConfirmationPhrases is handed to remote services so they apply the same rule.
func (p *Policy) ConfirmationPhrases() []string { return p.confirmations.Phrases() }

func (p *Policy) Confirmed(message string) bool { return p.confirmations.Match(message) }

func (p *Policy) Greeting(message string) bool { return p.greetings.Match(message) }

// Expected returns the only action the invariants allow for in:
//  1. any format violation -> request_more_info
//  2. complete and confirmed -> submit_request
//  3. complete -> request_confirmation
//  4. otherwise -> request_more_info
func (p *Policy) Expected(in Input) contractx.Action {
	switch {
	case len(in.Outcome.FormatViolations) > 0:
		return contractx.ActionRequestMoreInfo
	case in.Outcome.IsComplete && p.Confirmed(in.Message):
		return contractx.ActionSubmitRequest
	case in.Outcome.IsComplete:
		return contractx.ActionRequestConfirmation
	default:
		return contractx.ActionRequestMoreInfo
	}
}

// Decide runs the local decision rules and composes the reply.
func (p *Policy) Decide(in Input) contractx.Decision {
	action := p.Expected(in)

	var msg string
	switch {
	case len(in.Outcome.FormatViolations) > 0:
		msg = p.violationMessage(in.Outcome.FormatViolations)
	case action == contractx.ActionSubmitRequest:
		msg = submitMessage
	case action == contractx.ActionRequestConfirmation:
		msg = p.confirmationMessage(in.Updated, in.Values)
	default:
		msg = p.missingMessage(in.Message, in.Updated, in.Outcome.Missing)
	}
	return decision(action, msg)
}

// Reconcile enforces the decision invariants on a proposed decision. A
// proposal whose action matches the expected one keeps its own message; any
// other proposal is replaced by the local decision. The second return value
// reports whether the proposal was overridden.
func (p *Policy) Reconcile(in Input, proposed contractx.Decision) (contractx.Decision, bool) {
	if len(in.Outcome.FormatViolations) > 0 {
		return p.Decide(in), true
	}
	expected := p.Expected(in)
	msg := strings.TrimSpace(proposed.Message)
	if proposed.Action != expected || msg == "" {
		return p.Decide(in), true
	}
	return decision(expected, msg), false
}

func decision(action contractx.Action, msg string) contractx.Decision {
	return contractx.Decision{
		Action:               action,
		Message:              msg,
		AwaitingConfirmation: action == contractx.ActionRequestConfirmation,
	}
}
