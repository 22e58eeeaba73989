package policy

import (
	"fmt"
	"strings"

	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

func (p *Policy) acknowledge(message string) string {
	if p.Greeting(message) {
		return "Hello!"
	}
	return "Thanks for the note."
}

func (p *Policy) updateNote(updated []string) string {
	if len(updated) == 0 {
		return ""
	}
	return fmt.Sprintf("I updated your %s. ", strings.Join(p.schema.Labels(updated), ", "))
}

func (p *Policy) missingMessage(message string, updated, missing []string) string {
	return fmt.Sprintf("%s %sI can help with your %s. May I have the following details: %s?",
		p.acknowledge(message),
		p.updateNote(updated),
		p.schema.Topic(),
		strings.Join(p.schema.Labels(missing), ", "),
	)
}

func (p *Policy) confirmationMessage(updated []string, values slot.Values) string {
	var b strings.Builder
	b.WriteString(p.updateNote(updated))
	b.WriteString("Here is what I have:\n")
	b.WriteString(p.Summary(values))
	b.WriteString("\n\nEverything looks complete. Would you like me to submit your request?")
	return b.String()
}

func (p *Policy) violationMessage(fields []string) string {
	if len(fields) == 1 {
		f, _ := p.schema.Field(fields[0])
		label := p.schema.Label(fields[0])
		if f.Example != "" {
			return fmt.Sprintf("Thanks! That %s doesn't look quite right. Could you share a valid one (for example, %s)?", label, f.Example)
		}
		return fmt.Sprintf("Thanks! That %s doesn't look quite right. Could you share a valid one?", label)
	}
	return fmt.Sprintf("Thanks! A few details don't look quite right: %s. Could you share valid ones?",
		strings.Join(p.schema.Labels(fields), ", "))
}

// Summary renders present values as bullet lines in schema order.
func (p *Policy) Summary(values slot.Values) string {
	present := p.schema.Present(values)
	if len(present) == 0 {
		return "No details yet."
	}
	lines := make([]string, 0, len(present))
	for _, name := range present {
		v, _ := values.Get(name)
		lines = append(lines, fmt.Sprintf("• %s: %s", p.schema.SummaryLabel(name), v))
	}
	return strings.Join(lines, "\n")
}
