package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
)

func TestRenderExtractionMentionsEveryField(t *testing.T) {
	t.Parallel()

	out, err := LoadPromptSet().RenderExtraction(slot.Profile(), []string{"yes", "confirm"})
	if err != nil {
		t.Fatalf("RenderExtraction() error = %v", err)
	}
	for _, want := range []string{
		"collects profile details",
		"- full_name: the user's name",
		"- email: the user's email address (must look like name@domain.tld), for example name@example.com",
		"- bio: the user's short bio",
		"exactly one of: yes, confirm.",
		`"confirmation":{"action"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestRenderExtractionMissingPrompt(t *testing.T) {
	t.Parallel()

	_, err := PromptSet{}.RenderExtraction(slot.Sorting(), nil)
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}
