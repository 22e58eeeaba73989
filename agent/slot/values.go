package slot

import (
	"regexp"
	"strings"
)

// Values maps field name to a trimmed, non-blank value. An absent key means
// the field is unknown.
type Values map[string]string

// State is the slot state returned to callers. IsComplete is always derived
// from Values by Schema.State and never read back from input.
type State struct {
	Values     Values `json:"values"`
	IsComplete bool   `json:"is_complete"`
}

// Outcome is the result of validating values against a schema.
type Outcome struct {
	Missing          []string `json:"missing"`
	IsComplete       bool     `json:"is_complete"`
	FormatViolations []string `json:"format_violations,omitempty"`
}

var validators = map[Format]func(string) bool{
	FormatText:  func(v string) bool { return strings.TrimSpace(v) != "" },
	FormatEmail: IsValidEmail,
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// IsValidEmail checks address syntax: local part of [A-Za-z0-9._%+-], one @,
// a domain with at least one dot and an alphabetic TLD of length >= 2.
func IsValidEmail(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return emailPattern.MatchString(v)
}

func Clean(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (v Values) Get(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	return Clean(v[name])
}

func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge combines base with updates for every schema field: a non-blank update
// wins, else a non-blank base value is kept, else the field stays absent.
// Blank updates carry no information and never clear a field.
func (s *Schema) Merge(base, updates Values) Values {
	out := make(Values, len(s.fields))
	for _, f := range s.fields {
		if v, ok := updates.Get(f.Name); ok {
			out[f.Name] = v
			continue
		}
		if v, ok := base.Get(f.Name); ok {
			out[f.Name] = v
		}
	}
	return out
}

// Screen drops values that fail their field's format validator and returns
// the names of the dropped fields in schema order.
func (s *Schema) Screen(values Values) (Values, []string) {
	out := make(Values, len(values))
	var violations []string
	for _, f := range s.fields {
		v, ok := values.Get(f.Name)
		if !ok {
			continue
		}
		if !validators[f.Format](v) {
			violations = append(violations, f.Name)
			continue
		}
		out[f.Name] = v
	}
	return out, violations
}

// Validate lists missing fields in schema order and present-but-invalid
// fields. A format violation is not counted as missing.
func (s *Schema) Validate(values Values) Outcome {
	out := Outcome{Missing: []string{}}
	for _, f := range s.fields {
		v, ok := values.Get(f.Name)
		if !ok {
			out.Missing = append(out.Missing, f.Name)
			continue
		}
		if !validators[f.Format](v) {
			out.FormatViolations = append(out.FormatViolations, f.Name)
		}
	}
	out.IsComplete = len(out.Missing) == 0
	return out
}

func (s *Schema) State(values Values) State {
	merged := s.Merge(nil, values)
	return State{
		Values:     merged,
		IsComplete: s.Validate(merged).IsComplete,
	}
}

// Present returns the schema fields that carry a non-blank value, in schema order.
func (s *Schema) Present(values Values) []string {
	var out []string
	for _, f := range s.fields {
		if _, ok := values.Get(f.Name); ok {
			out = append(out, f.Name)
		}
	}
	return out
}
