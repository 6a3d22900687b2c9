package confusable

import (
	"strings"
	"testing"
)

func TestCorrectReplacesWrongParty(t *testing.T) {
	r := DefaultRegistry()
	reference := "Mohan Charan Majhi of the Bharatiya Janata Party became Chief Minister in June 2024."
	output := "ମୋହନ ଚରଣ ମାଝୀ ବିଜୁ ଜନତା ଦଳ ର ନେତା ଅଟନ୍ତି।"

	got, changed := r.Correct(output, reference)
	if !changed {
		t.Fatal("expected a correction")
	}
	if strings.Contains(got, "ବିଜୁ ଜନତା ଦଳ") {
		t.Errorf("wrong party survived correction: %q", got)
	}
	if !strings.Contains(got, "ଭାରତୀୟ ଜନତା ପାର୍ଟି") {
		t.Errorf("expected Odia BJP form in %q", got)
	}
}

func TestCorrectIdempotent(t *testing.T) {
	r := DefaultRegistry()
	reference := "The BJD governed Odisha until 2024."
	output := "The BJP governed Odisha until 2024."

	once, changed := r.Correct(output, reference)
	if !changed {
		t.Fatal("expected a correction")
	}
	twice, changed := r.Correct(once, reference)
	if changed {
		t.Error("second pass reported a change")
	}
	if once != twice {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestCorrectReplacesCaseVariants(t *testing.T) {
	r := DefaultRegistry()
	reference := "Mohan Charan Majhi of the BJP was sworn in as Chief Minister in June 2024."

	tests := []struct {
		output  string
		survive string
	}{
		{"Majhi leads the bjd government in Odisha.", "bjd"},
		{"Majhi leads the Bjd government in Odisha.", "Bjd"},
		{"Bijad formed the government after the election.", "Bijad"},
		{"The BIJU JANATA DAL formed the government.", "BIJU JANATA DAL"},
	}
	for _, tt := range tests {
		got, changed := r.Correct(tt.output, reference)
		if !changed {
			t.Errorf("Correct(%q) reported no change", tt.output)
			continue
		}
		if strings.Contains(strings.ToLower(got), strings.ToLower(tt.survive)) {
			t.Errorf("wrong party survived correction: %q", got)
		}
		if !r.Contains(got, "BJP") {
			t.Errorf("corrected output does not mention BJP: %q", got)
		}
	}
}

func TestCorrectReportsChangeOnlyWhenRewritten(t *testing.T) {
	r := DefaultRegistry()
	reference := "The BJP formed the government."
	output := "Majhi leads the bjd government in Odisha."

	got, changed := r.Correct(output, reference)
	if got == output {
		t.Fatalf("output unchanged: %q", got)
	}
	if !changed {
		t.Error("rewrite happened but changed is false")
	}
}

func TestCorrectNoOpWhenReferenceAmbiguous(t *testing.T) {
	r := DefaultRegistry()
	reference := "Both BJP and BJD contested the election."
	output := "The BJD won a majority."

	got, changed := r.Correct(output, reference)
	if changed || got != output {
		t.Errorf("correction fired on ambiguous reference: %q", got)
	}
}

func TestCorrectNoOpWhenOutputAgrees(t *testing.T) {
	r := DefaultRegistry()
	reference := "The BJP formed the government."
	output := "ବିଜେପି ସରକାର ଗଠନ କଲା।"

	if _, changed := r.Correct(output, reference); changed {
		t.Error("correction fired although output already matched")
	}
}

func TestDetect(t *testing.T) {
	r := DefaultRegistry()
	found := r.Detect("bjd and kaangress traded seats")
	set := make(map[string]bool, len(found))
	for _, c := range found {
		set[c] = true
	}
	if !set["BJD"] || !set["INC"] {
		t.Errorf("Detect = %v, want BJD and INC", found)
	}
	if set["BJP"] {
		t.Errorf("Detect = %v, BJP not mentioned", found)
	}
}

func TestContainsWordBoundary(t *testing.T) {
	r := DefaultRegistry()
	if r.Contains("the state has grown since 2019", "INC") {
		t.Error("INC matched inside 'since'")
	}
	if !r.Contains("the INC lost ground", "INC") {
		t.Error("standalone INC not matched")
	}
}
