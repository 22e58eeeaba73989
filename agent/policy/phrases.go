package policy

import (
	"sort"
	"strings"
)

// PhraseSet matches a whole message against a fixed set of phrases after
// lower-casing, trimming and collapsing inner whitespace.
type PhraseSet struct {
	phrases map[string]struct{}
}

func NewPhraseSet(phrases ...string) PhraseSet {
	set := PhraseSet{phrases: make(map[string]struct{}, len(phrases))}
	for _, p := range phrases {
		if n := normalize(p); n != "" {
			set.phrases[n] = struct{}{}
		}
	}
	return set
}

func (p PhraseSet) Match(message string) bool {
	_, ok := p.phrases[normalize(message)]
	return ok
}

// Phrases lists the normalized phrases in sorted order.
func (p PhraseSet) Phrases() []string {
	out := make([]string, 0, len(p.phrases))
	for phrase := range p.phrases {
		out = append(out, phrase)
	}
	sort.Strings(out)
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

var (
	DefaultConfirmations = NewPhraseSet(
		"yes", "yep", "yeah", "sure",
		"please submit", "submit", "submit now",
		"go ahead", "confirm",
	)
	DefaultGreetings = NewPhraseSet("hi", "hello", "hey", "hiya", "yo")
)
