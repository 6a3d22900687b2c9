package synthesis

import (
	"fmt"
	"strings"

	"github.com/sweetpotato0/odialingua/confusable"
	"github.com/sweetpotato0/odialingua/evidence"
)

// Attributed is one value of a disputed attribute together with the source
// that asserted it.
type Attributed struct {
	Value  string          `json:"value"`
	Source evidence.Source `json:"source"`
}

// Conflict records that evidence sources disagree on one attribute. Both
// values are kept; the pipeline never silently picks a winner.
type Conflict struct {
	Kind   ClaimKind    `json:"kind"`
	Values []Attributed `json:"values"`
}

// containmentViolations returns every claim in text whose value does not
// appear anywhere in the bundle. Party claims match through the registry so
// that an Odia party form in the text is covered by a Latin form in the
// evidence.
func containmentViolations(text string, bundle *evidence.Bundle, registry *confusable.Registry) []Claim {
	combined := strings.ToLower(bundle.Combined())
	var violations []Claim
	for _, claim := range ScanClaims(text, registry) {
		if claim.Kind == ClaimParty {
			if registry != nil && !registry.Contains(bundle.Combined(), claim.Value) {
				violations = append(violations, claim)
			}
			continue
		}
		if !strings.Contains(combined, strings.ToLower(claim.Value)) {
			violations = append(violations, claim)
		}
	}
	return violations
}

// detectConflicts finds attributes on which the present sources disagree.
// A source counts as asserting a value only when it mentions exactly one
// value of that kind; a snippet that compares both parties is not a vote for
// either. Party and full-date claims are checked, the two attributes that
// actually flip answers in this domain.
func detectConflicts(bundle *evidence.Bundle, registry *confusable.Registry) []Conflict {
	var conflicts []Conflict
	for _, kind := range []ClaimKind{ClaimParty, ClaimDate} {
		votes := singleValueClaims(bundle, kind, registry)
		if len(distinctValues(votes)) > 1 {
			conflicts = append(conflicts, Conflict{Kind: kind, Values: votes})
		}
	}
	return conflicts
}

func singleValueClaims(bundle *evidence.Bundle, kind ClaimKind, registry *confusable.Registry) []Attributed {
	var votes []Attributed
	for _, snippet := range bundle.Present() {
		values := distinctClaimValues(snippet.Text, kind, registry)
		if len(values) == 1 {
			votes = append(votes, Attributed{Value: values[0], Source: snippet.Source})
		}
	}
	return votes
}

func distinctClaimValues(text string, kind ClaimKind, registry *confusable.Registry) []string {
	var values []string
	seen := make(map[string]bool)
	for _, claim := range ScanClaims(text, registry) {
		if claim.Kind == kind && !seen[claim.Value] {
			seen[claim.Value] = true
			values = append(values, claim.Value)
		}
	}
	return values
}

func distinctValues(votes []Attributed) []string {
	var values []string
	seen := make(map[string]bool)
	for _, v := range votes {
		if !seen[v.Value] {
			seen[v.Value] = true
			values = append(values, v.Value)
		}
	}
	return values
}

// ensureConflicts appends an explicit disagreement sentence for every
// conflict whose values are not all already present in text.
func ensureConflicts(text string, conflicts []Conflict) string {
	for _, conflict := range conflicts {
		if conflictSurfaced(text, conflict) {
			continue
		}
		text = strings.TrimRight(text, " \n") + " " + conflictSentence(conflict)
	}
	return text
}

func conflictSurfaced(text string, conflict Conflict) bool {
	lowered := strings.ToLower(text)
	for _, v := range conflict.Values {
		if !strings.Contains(lowered, strings.ToLower(v.Value)) {
			return false
		}
	}
	return true
}

func conflictSentence(conflict Conflict) string {
	noun := "this point"
	switch conflict.Kind {
	case ClaimParty:
		noun = "the party"
	case ClaimDate:
		noun = "the date"
	}
	parts := make([]string, 0, len(conflict.Values))
	for _, v := range conflict.Values {
		parts = append(parts, fmt.Sprintf("%s per the %s source", v.Value, v.Source))
	}
	return fmt.Sprintf("Sources disagree on %s: %s.", noun, strings.Join(parts, ", "))
}

// gapNotes lists aspects the question asks about that no source covers:
// a year or party named in the question but absent from all evidence.
func gapNotes(question string, bundle *evidence.Bundle, registry *confusable.Registry) []string {
	combined := strings.ToLower(bundle.Combined())
	var notes []string
	for _, claim := range ScanClaims(question, registry) {
		switch claim.Kind {
		case ClaimYear:
			if !strings.Contains(combined, claim.Value) {
				notes = append(notes, fmt.Sprintf("no source mentions %s", claim.Value))
			}
		case ClaimParty:
			if registry != nil && !registry.Contains(bundle.Combined(), claim.Value) {
				notes = append(notes, fmt.Sprintf("no source mentions %s", claim.Value))
			}
		}
	}
	return notes
}
