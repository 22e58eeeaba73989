package slot

import (
	"reflect"
	"testing"
)

func TestMergeKeepsBaseWhenUpdateBlank(t *testing.T) {
	t.Parallel()

	s := Profile()
	base := Values{"full_name": "Taylor", "email": "taylor@example.com"}
	updates := Values{"full_name": "   ", "bio": "  DevOps engineer  "}

	got := s.Merge(base, updates)
	want := Values{
		"full_name": "Taylor",
		"email":     "taylor@example.com",
		"bio":       "DevOps engineer",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge() = %#v, want %#v", got, want)
	}
}

func TestMergeUpdateWins(t *testing.T) {
	t.Parallel()

	got := Sorting().Merge(Values{"sorter_id": "S-1"}, Values{"sorter_id": "S-2"})
	if got["sorter_id"] != "S-2" {
		t.Fatalf("sorter_id = %q, want S-2", got["sorter_id"])
	}
}

func TestMergeDropsUnknownFields(t *testing.T) {
	t.Parallel()

	got := Sorting().Merge(Values{"color": "red"}, Values{"size": "xl"})
	if len(got) != 0 {
		t.Fatalf("expected empty merge, got %#v", got)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()

	s := Profile()
	cases := []struct {
		base    Values
		updates Values
	}{
		{nil, nil},
		{Values{}, Values{"full_name": "Ana"}},
		{Values{"full_name": "Ana"}, Values{"full_name": " "}},
		{Values{"email": "a@b.co"}, Values{"email": "c@d.io", "bio": "x"}},
		{Values{"full_name": " Ana ", "bio": ""}, Values{"bio": "\t"}},
	}
	for _, tc := range cases {
		once := s.Merge(tc.base, tc.updates)
		twice := s.Merge(once, tc.updates)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("merge not idempotent: once=%#v twice=%#v", once, twice)
		}
	}
}

func TestMergeBlankUpdatesNeverRemoveValues(t *testing.T) {
	t.Parallel()

	s := Profile()
	state := Values{"full_name": "Taylor", "email": "taylor@example.com", "bio": "ops"}
	blanks := []Values{
		{"full_name": ""},
		{"email": "   "},
		{"bio": "\n"},
		{},
		nil,
	}
	for _, u := range blanks {
		state = s.Merge(state, u)
	}
	if !s.Validate(state).IsComplete {
		t.Fatalf("blank updates removed a value: %#v", state)
	}
}

func TestValidateReportsMissingInSchemaOrder(t *testing.T) {
	t.Parallel()

	out := Profile().Validate(Values{"email": "taylor@example.com"})
	if !reflect.DeepEqual(out.Missing, []string{"full_name", "bio"}) {
		t.Fatalf("Missing = %#v", out.Missing)
	}
	if out.IsComplete {
		t.Fatal("expected incomplete")
	}
}

func TestValidateFormatViolationIsNotMissing(t *testing.T) {
	t.Parallel()

	out := Profile().Validate(Values{"full_name": "T", "email": "not-an-address", "bio": "b"})
	if len(out.Missing) != 0 {
		t.Fatalf("Missing = %#v, want empty", out.Missing)
	}
	if !reflect.DeepEqual(out.FormatViolations, []string{"email"}) {
		t.Fatalf("FormatViolations = %#v", out.FormatViolations)
	}
}

func TestScreenDropsInvalidValues(t *testing.T) {
	t.Parallel()

	clean, violations := Profile().Screen(Values{"full_name": "T", "email": "bad@"})
	if _, ok := clean["email"]; ok {
		t.Fatalf("invalid email kept: %#v", clean)
	}
	if clean["full_name"] != "T" {
		t.Fatalf("valid value dropped: %#v", clean)
	}
	if !reflect.DeepEqual(violations, []string{"email"}) {
		t.Fatalf("violations = %#v", violations)
	}
}

func TestStateRecomputesCompleteness(t *testing.T) {
	t.Parallel()

	st := Sorting().State(Values{"sorter_id": "S-100", "tag_serial_no": " TAG-204 "})
	if !st.IsComplete {
		t.Fatal("expected complete state")
	}
	if st.Values["tag_serial_no"] != "TAG-204" {
		t.Fatalf("value not trimmed: %q", st.Values["tag_serial_no"])
	}
}

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"taylor@example.com", "a.b+c@sub.domain.io", " x_y%z@host.org "}
	invalid := []string{"", "not-an-address", "a@b", "a@b.c", "a@b.c0m", "@example.com", "a b@example.com"}

	for _, v := range valid {
		if !IsValidEmail(v) {
			t.Fatalf("IsValidEmail(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if IsValidEmail(v) {
			t.Fatalf("IsValidEmail(%q) = true, want false", v)
		}
	}
}
