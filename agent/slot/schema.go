// Package slot holds the per-domain slot schemas and the pure functions that
// merge and validate slot values against them.
package slot

import (
	"errors"
	"fmt"
	"strings"
)

type Format string

const (
	FormatText  Format = "text"
	FormatEmail Format = "email"
)

var (
	ErrEmptyDomain    = errors.New("schema domain is empty")
	ErrNoFields       = errors.New("schema has no fields")
	ErrDuplicateField = errors.New("duplicate schema field")
	ErrUnknownFormat  = errors.New("unknown field format")
)

// Field describes one required slot of a domain.
type Field struct {
	Name         string `yaml:"name"`
	Label        string `yaml:"label"`         // used in running text: "May I have ... email address?"
	SummaryLabel string `yaml:"summary_label"` // used in the bullet summary: "Email address: ..."
	Format       Format `yaml:"format"`
	Example      string `yaml:"example,omitempty"`
}

// Schema is the immutable definition of one domain: ordered required fields,
// their labels, and their format validators.
type Schema struct {
	domain string
	topic  string
	fields []Field
	index  map[string]int
}

func NewSchema(domain, topic string, fields []Field) (*Schema, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return nil, ErrEmptyDomain
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: domain=%s", ErrNoFields, domain)
	}

	s := &Schema{
		domain: domain,
		topic:  strings.TrimSpace(topic),
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	if s.topic == "" {
		s.topic = domain
	}

	for _, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, fmt.Errorf("%w: domain=%s has a field without name", ErrNoFields, domain)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, domain, f.Name)
		}
		if f.Format == "" {
			f.Format = FormatText
		}
		if _, ok := validators[f.Format]; !ok {
			return nil, fmt.Errorf("%w: %s.%s format=%q", ErrUnknownFormat, domain, f.Name, f.Format)
		}
		if strings.TrimSpace(f.Label) == "" {
			f.Label = strings.ReplaceAll(f.Name, "_", " ")
		}
		if strings.TrimSpace(f.SummaryLabel) == "" {
			f.SummaryLabel = capitalize(f.Label)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

func MustSchema(domain, topic string, fields []Field) *Schema {
	s, err := NewSchema(domain, topic, fields)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Domain() string { return s.domain }

// Topic is the noun used in prompts, e.g. "profile" or "sorting input".
func (s *Schema) Topic() string { return s.topic }

// RequiredFields returns field names in schema order.
func (s *Schema) RequiredFields() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Label renders a field name for running text. Unknown names fall back to
// the name with underscores replaced.
func (s *Schema) Label(name string) string {
	if f, ok := s.Field(name); ok {
		return f.Label
	}
	return strings.ReplaceAll(name, "_", " ")
}

func (s *Schema) Labels(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = s.Label(n)
	}
	return out
}

func (s *Schema) SummaryLabel(name string) string {
	if f, ok := s.Field(name); ok {
		return f.SummaryLabel
	}
	return capitalize(strings.ReplaceAll(name, "_", " "))
}

// Accepts reports whether value passes the field's format validator.
func (s *Schema) Accepts(name, value string) bool {
	f, ok := s.Field(name)
	if !ok {
		return false
	}
	return validators[f.Format](value)
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
