package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

// ApplyExtraction drops extracted values that fail their format check,
// merges the rest onto the base state and validates the result. Dropped
// fields are reported as format violations and never count as updated.
func ApplyExtraction(in *GraphState, schema *slot.Schema) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	extracted := schema.Merge(nil, in.Extraction.Values)
	accepted, violations := schema.Screen(extracted)

	in.Merged = schema.Merge(in.Base, accepted)
	in.Validation = schema.Validate(in.Merged)
	in.Validation.FormatViolations = violations
	in.Updated = schema.Present(accepted)

	return in, nil
}
