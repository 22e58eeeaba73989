package llm

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

// pipelineOutput is the JSON shape every backend must produce.
type pipelineOutput struct {
	Extraction   map[string]any       `json:"extraction" jsonschema:"required,description=Field name to the value stated in the latest user message or null"`
	Validation   pipelineValidation   `json:"validation" jsonschema:"description=Advisory completeness check after applying the extraction"`
	Confirmation pipelineConfirmation `json:"confirmation" jsonschema:"required,description=The next conversational move"`
}

type pipelineValidation struct {
	MissingFields []string `json:"missing_fields" jsonschema:"description=Required fields still missing"`
	IsComplete    bool     `json:"is_complete"`
	IsEmailValid  *bool    `json:"is_email_valid,omitempty"`
}

type pipelineConfirmation struct {
	Action               string `json:"action" jsonschema:"required,enum=request_more_info,enum=request_confirmation,enum=submit_request"`
	Message              string `json:"message" jsonschema:"required,description=Reply shown to the user"`
	AwaitingConfirmation bool   `json:"awaiting_confirmation"`
}

// toOutcome keeps string values of known fields only. The remote validation
// block is advisory and ignored; a confirmation block with neither action nor
// message means the service extracted without deciding.
func toOutcome(source string, schema *slot.Schema, out pipelineOutput) contractx.Outcome {
	values := slot.Values{}
	for name, raw := range out.Extraction {
		if !schema.Has(name) {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if v, ok := slot.Clean(s); ok {
			values[name] = v
		}
	}

	outcome := contractx.Outcome{
		Status: contractx.OutcomeOK,
		Source: source,
		Values: values,
	}

	rawAction := strings.TrimSpace(out.Confirmation.Action)
	msg := strings.TrimSpace(out.Confirmation.Message)
	if rawAction == "" && msg == "" {
		return outcome
	}

	action, err := contractx.ParseAction(rawAction)
	if err != nil {
		return contractx.Invalid(source, err)
	}
	if msg == "" {
		return contractx.Invalid(source, fmt.Errorf("%w: confirmation message is empty", contractx.ErrSchemaViolation))
	}
	outcome.Decision = &contractx.Decision{
		Action:               action,
		Message:              msg,
		AwaitingConfirmation: out.Confirmation.AwaitingConfirmation,
	}
	return outcome
}

// extractJSONObject cuts the outermost {...} out of a model reply so code
// fences or stray prose around it do not break decoding.
func extractJSONObject(content string) (string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("%w: no json object in model reply", contractx.ErrSchemaViolation)
	}
	return content[start : end+1], nil
}
