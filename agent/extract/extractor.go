// Package extract pulls slot values out of a single free-text message with
// ordered phrase patterns. It makes no external calls and never fails.
package extract

import (
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

type Extractor struct {
	schema *slot.Schema
	rules  map[string][]Rule
}

func New(schema *slot.Schema) *Extractor {
	builtin := builtinRules[schema.Domain()]
	rules := make(map[string][]Rule, len(schema.RequiredFields()))
	for _, f := range schema.Fields() {
		if rs, ok := builtin[f.Name]; ok {
			rules[f.Name] = rs
			continue
		}
		rules[f.Name] = deriveRules(f)
	}
	return &Extractor{schema: schema, rules: rules}
}

func (e *Extractor) Schema() *slot.Schema { return e.schema }

// Extract tries the field's rules from most explicit to the generic fallback.
// The first matching rule wins.
func (e *Extractor) Extract(message, field string) (string, bool) {
	for _, r := range e.rules[field] {
		if v, ok := r.Match(message); ok {
			return v, true
		}
	}
	return "", false
}

// ExtractAll runs Extract for every schema field. Fields without a match are
// absent from the result.
func (e *Extractor) ExtractAll(message string) slot.Values {
	out := slot.Values{}
	for _, name := range e.schema.RequiredFields() {
		if v, ok := e.Extract(message, name); ok {
			out[name] = v
		}
	}
	return out
}
