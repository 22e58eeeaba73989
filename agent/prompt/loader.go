package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

var (
	//go:embed template/extraction.txt
	extractionRaw string

	//go:embed template/json_guard.txt
	jsonGuardRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Extraction string
	JSONGuard  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Extraction: strings.TrimSpace(extractionRaw),
		JSONGuard:  strings.TrimSpace(jsonGuardRaw),
	}
}

// ExtractionTemplate returns the extraction prompt followed by the JSON
// output guard as one Go template over ExtractionVars.
func (p PromptSet) ExtractionTemplate() (string, error) {
	if p.Extraction == "" || p.JSONGuard == "" {
		return "", fmt.Errorf("%w: extraction", contractx.ErrPromptMissing)
	}
	return p.Extraction + "\n\n" + p.JSONGuard, nil
}

// ExtractionVars are the template variables of ExtractionTemplate for one schema.
func ExtractionVars(schema *slot.Schema, confirmations []string) map[string]any {
	return map[string]any{
		"Topic":         schema.Topic(),
		"Fields":        schema.Fields(),
		"Confirmations": strings.Join(confirmations, ", "),
	}
}

// RenderExtraction renders the system prompt for one schema.
func (p PromptSet) RenderExtraction(schema *slot.Schema, confirmations []string) (string, error) {
	text, err := p.ExtractionTemplate()
	if err != nil {
		return "", err
	}
	tmpl, err := template.New("extraction").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: parse extraction template: %v", contractx.ErrPromptMissing, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, ExtractionVars(schema, confirmations)); err != nil {
		return "", fmt.Errorf("render extraction prompt: %w", err)
	}
	return b.String(), nil
}
