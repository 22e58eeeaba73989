package extract

import (
	"regexp"
	"strings"

	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

// Rule is one phrase pattern for one field. The pattern has exactly one
// capture group holding the value.
type Rule struct {
	re    *regexp.Regexp
	clean func(string) string
	// guard sees the raw capture and the text after it and may reject the match.
	guard func(raw, rest string) bool
}

func rule(pattern string, clean func(string) string) Rule {
	return Rule{re: regexp.MustCompile(pattern), clean: clean}
}

// emailTokenRule captures whatever token follows an explicit email phrasing,
// unless the token reads as part of a question rather than a value.
func emailTokenRule(pattern string) Rule {
	r := rule(pattern+rawToken, stripTrailingPunct)
	r.guard = plausibleEmailToken
	return r
}

// Match returns the cleaned capture of the first match, or false when the
// pattern does not match, the guard rejects it, or the capture cleans down
// to nothing.
func (r Rule) Match(message string) (string, bool) {
	m := r.re.FindStringSubmatchIndex(message)
	if len(m) < 4 || m[2] < 0 {
		return "", false
	}
	v := message[m[2]:m[3]]
	if r.guard != nil && !r.guard(v, message[m[3]:]) {
		return "", false
	}
	if r.clean != nil {
		v = r.clean(v)
	}
	return slot.Clean(v)
}

const (
	addressSyntax = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`
	idToken       = `([A-Za-z0-9][A-Za-z0-9-]*)`
	rawToken      = `(\S+)`
	nameWords     = `(\p{L}[\p{L}\s'-]{0,60})`
	restOfLine    = `([^\n]+)`
)

// notEmailWords are tokens that follow "email is" or "email:" in questions
// and small talk but are never an address someone meant to give.
var notEmailWords = map[string]struct{}{
	"what": {}, "which": {}, "who": {}, "where": {}, "when": {}, "why": {}, "how": {},
	"is": {}, "are": {}, "was": {}, "a": {}, "an": {}, "the": {}, "my": {}, "your": {},
	"it": {}, "this": {}, "that": {}, "there": {}, "here": {}, "and": {}, "or": {},
	"required": {}, "needed": {}, "optional": {}, "missing": {}, "correct": {}, "wrong": {},
	"work": {}, "personal": {}, "fine": {}, "ok": {}, "okay": {}, "please": {}, "same": {},
}

func plausibleEmailToken(raw, rest string) bool {
	if strings.HasSuffix(raw, "?") {
		return false
	}
	if i := strings.IndexAny(rest, ".!?\n"); i >= 0 && rest[i] == '?' {
		return false
	}
	_, common := notEmailWords[strings.ToLower(stripTrailingPunct(raw))]
	return !common
}

var (
	nameStop     = regexp.MustCompile(`(?i)(?:[.,;!?\n]|\s+(?:and|but|my|email|bio|here)\b)`)
	sentenceStop = regexp.MustCompile(`[.;!?](?:\s|$)`)
)

func stripTrailingPunct(v string) string {
	return strings.TrimRight(strings.TrimSpace(v), `.,;:!?)"'`)
}

func cutName(v string) string {
	if loc := nameStop.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	return strings.TrimSpace(v)
}

func cutSentence(v string) string {
	if loc := sentenceStop.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	return strings.TrimSpace(v)
}

// builtinRules holds the hand-tuned rule sets of the shipped domains. Fields
// not listed here get rules derived from their label.
var builtinRules = map[string]map[string][]Rule{
	slot.DomainProfile: {
		"full_name": {
			rule(`(?i)\b(?:set|update|change)\s+(?:my\s+)?(?:full\s+)?name\s+to\s+`+nameWords, cutName),
			rule(`(?i)\bmy\s+(?:full\s+)?name\s+is\s+`+nameWords, cutName),
			rule(`(?i)\b(?:full\s+)?name\s+is\s+`+nameWords, cutName),
			rule(`(?i)\b(?:full\s+)?name\s*[:=]\s*`+nameWords, cutName),
			rule(`(?i)\bcall\s+me\s+`+nameWords, cutName),
			// case-sensitive: "I am tired" must not become a name
			rule(`\bI(?:'m|\s+am)\s+(\p{Lu}[\p{L}'-]+(?:\s+\p{Lu}[\p{L}'-]+){0,3})`, nil),
		},
		"email": {
			emailTokenRule(`(?i)\b(?:set|update|change)\s+(?:my\s+)?e-?mail(?:\s+address)?\s+to\s+`),
			emailTokenRule(`(?i)\be-?mail(?:\s+address)?\s+is\s+`),
			emailTokenRule(`(?i)\be-?mail(?:\s+address)?\s*[:=]\s*`),
			rule(`(?i)\breach\s+me\s+at\s+(`+addressSyntax+`)`, nil),
			rule(`(`+addressSyntax+`)`, nil),
		},
		"bio": {
			rule(`(?i)\b(?:set|update|change)\s+(?:my\s+)?bio\s+to\s+`+restOfLine, nil),
			rule(`(?i)\b(?:my\s+)?bio\s+is\s+`+restOfLine, nil),
			rule(`(?i)\bbio\s*[:=]\s*`+restOfLine, nil),
		},
	},
	slot.DomainSorting: {
		"sorter_id": {
			rule(`(?i)\b(?:set|update|change)\s+(?:the\s+)?sorter\s*id\s+to\s+`+idToken, nil),
			rule(`(?i)\bsorter\s*id\s+is\s+`+idToken, nil),
			rule(`(?i)\bsorter\s*id\s*[:=]\s*`+idToken, nil),
		},
		"tag_serial_no": {
			rule(`(?i)\b(?:set|update|change)\s+(?:the\s+)?tag\s+serial\s*(?:no\.?|number)?\s+to\s+`+idToken, nil),
			rule(`(?i)\btag\s+serial\s*(?:no\.?|number)?\s+is\s+`+idToken, nil),
			rule(`(?i)\btag\s+serial\s*(?:no\.?|number)?\s*[:=]\s*`+idToken, nil),
		},
	},
}

// deriveRules builds label-based rules for a field without a hand-tuned set:
// "set <label> to X", "<label> is X", "<label>: X". Email fields capture the
// raw token and fall back to any address in the message; other fields take
// the rest of the sentence and have no fallback.
func deriveRules(f slot.Field) []Rule {
	label := labelPattern(f.Label)
	if f.Format == slot.FormatEmail {
		return []Rule{
			emailTokenRule(`(?i)\b(?:set|update|change)\s+(?:my\s+|the\s+)?` + label + `\s+to\s+`),
			emailTokenRule(`(?i)\b` + label + `\s+is\s+`),
			emailTokenRule(`(?i)\b` + label + `\s*[:=]\s*`),
			rule(`(`+addressSyntax+`)`, nil),
		}
	}
	return []Rule{
		rule(`(?i)\b(?:set|update|change)\s+(?:my\s+|the\s+)?`+label+`\s+to\s+`+restOfLine, cutSentence),
		rule(`(?i)\b`+label+`\s+is\s+`+restOfLine, cutSentence),
		rule(`(?i)\b`+label+`\s*[:=]\s*`+restOfLine, cutSentence),
	}
}

// labelPattern turns "Tag Serial No." into `tag\s+serial\s+no\.?`.
func labelPattern(label string) string {
	words := strings.Fields(strings.ToLower(label))
	for i, w := range words {
		dotted := strings.HasSuffix(w, ".")
		words[i] = regexp.QuoteMeta(strings.TrimRight(w, "."))
		if dotted {
			words[i] += `\.?`
		}
	}
	return strings.Join(words, `\s+`)
}
