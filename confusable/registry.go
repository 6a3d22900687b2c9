// Package confusable holds the static registry of confusable entities:
// labels that look alike but must never be substituted for one another.
// The canonical case is the BJP/BJD party pair, one character apart in Latin
// script and a notorious hallucination vector. The registry is deliberately
// narrow; open-ended correction risks introducing new errors.
package confusable

import "strings"

// Entity is one canonical term plus every surface form it takes across the
// scripts the assistant emits (Latin, Odia, romanized).
type Entity struct {
	Canonical string
	Forms     []string
}

// Pair registers two entities whose surface forms must never be swapped.
type Pair struct {
	A string
	B string
}

// Registry is a process-wide constant lookup table. It has no lifecycle and
// never mutates after construction.
type Registry struct {
	entities map[string]Entity
	pairs    []Pair
}

// NewRegistry builds a registry from entities and confusable pairs. Pairs
// referencing unknown canonicals are dropped.
func NewRegistry(entities []Entity, pairs []Pair) *Registry {
	r := &Registry{entities: make(map[string]Entity, len(entities))}
	for _, e := range entities {
		r.entities[e.Canonical] = e
	}
	for _, p := range pairs {
		if _, ok := r.entities[p.A]; !ok {
			continue
		}
		if _, ok := r.entities[p.B]; !ok {
			continue
		}
		r.pairs = append(r.pairs, p)
	}
	return r
}

// DefaultRegistry returns the built-in table for Indian political parties in
// the Odia locale.
func DefaultRegistry() *Registry {
	return NewRegistry(
		[]Entity{
			{
				Canonical: "BJP",
				Forms: []string{
					"Bharatiya Janata Party", "ଭାରତୀୟ ଜନତା ପାର୍ଟି",
					"ବିଜେପି", "bhajapa", "BJP",
				},
			},
			{
				Canonical: "BJD",
				Forms: []string{
					"Biju Janata Dal", "ବିଜୁ ଜନତା ଦଳ",
					"ବିଜଦ", "bijad", "BJD",
				},
			},
			{
				Canonical: "INC",
				Forms: []string{
					"Indian National Congress", "ଇଣ୍ଡିଆନ୍ ନ୍ୟାସନାଲ କଙ୍ଗ୍ରେସ୍",
					"କଂଗ୍ରେସ", "kaangress", "Congress", "INC",
				},
			},
		},
		[]Pair{{A: "BJP", B: "BJD"}},
	)
}

// Forms returns every registered surface form for a canonical term.
func (r *Registry) Forms(canonical string) []string {
	return r.entities[canonical].Forms
}

// Pairs returns the registered confusable pairs.
func (r *Registry) Pairs() []Pair {
	return r.pairs
}

// Contains reports whether text mentions any surface form of the canonical.
// Short acronym forms only match on word boundaries so that "INC" does not
// fire inside "since".
func (r *Registry) Contains(text, canonical string) bool {
	lowered := strings.ToLower(text)
	for _, form := range r.entities[canonical].Forms {
		if matchForm(lowered, strings.ToLower(form)) {
			return true
		}
	}
	return false
}

func matchForm(text, form string) bool {
	if len(form) > 5 || !isASCII(form) {
		return strings.Contains(text, form)
	}
	for start := 0; ; {
		i := strings.Index(text[start:], form)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isWordByte(text[i-1])
		afterIdx := i + len(form)
		after := afterIdx >= len(text) || !isWordByte(text[afterIdx])
		if before && after {
			return true
		}
		start = i + 1
	}
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Detect lists the canonical entities mentioned in text.
func (r *Registry) Detect(text string) []string {
	var found []string
	for canonical := range r.entities {
		if r.Contains(text, canonical) {
			found = append(found, canonical)
		}
	}
	return found
}

// Correct rewrites output so that when the reference text asserts entity A of
// a registered pair and the output asserts B instead, every surface form of B
// is replaced by the corresponding form of A. The substitution maps long
// forms to long forms and short forms to short forms, keeping the output
// natural in either script. Applying Correct twice yields the same result as
// applying it once.
func (r *Registry) Correct(output, reference string) (string, bool) {
	corrected := output
	changed := false
	for _, pair := range r.pairs {
		if canonical, wrong, ok := r.violation(reference, corrected, pair); ok {
			var replaced bool
			corrected, replaced = r.substitute(corrected, wrong, canonical)
			changed = changed || replaced
		}
	}
	return corrected, changed
}

// violation resolves the substitution direction for one pair: the reference
// must mention exactly one side, the output the other.
func (r *Registry) violation(reference, output string, pair Pair) (keep, drop string, ok bool) {
	refA := r.Contains(reference, pair.A)
	refB := r.Contains(reference, pair.B)
	switch {
	case refA && !refB && r.Contains(output, pair.B):
		return pair.A, pair.B, true
	case refB && !refA && r.Contains(output, pair.A):
		return pair.B, pair.A, true
	}
	return "", "", false
}

func (r *Registry) substitute(text, wrong, right string) (string, bool) {
	wrongForms := r.entities[wrong].Forms
	rightForms := r.entities[right].Forms
	replaced := false
	for i, form := range wrongForms {
		replacement := r.entities[right].Canonical
		if i < len(rightForms) {
			replacement = rightForms[i]
		}
		var ok bool
		text, ok = replaceForm(text, form, replacement)
		replaced = replaced || ok
	}
	return text, replaced
}

// replaceForm replaces every occurrence of form in text with replacement,
// matching under the same case folding and word-boundary rules Contains
// applies. Whatever Contains detects, this must be able to rewrite.
func replaceForm(text, form, replacement string) (string, bool) {
	lowered := strings.ToLower(text)
	loweredForm := strings.ToLower(form)
	bounded := len(loweredForm) <= 5 && isASCII(loweredForm)

	var sb strings.Builder
	replaced := false
	last := 0
	for start := 0; ; {
		i := strings.Index(lowered[start:], loweredForm)
		if i < 0 {
			break
		}
		i += start
		end := i + len(loweredForm)
		if bounded {
			before := i == 0 || !isWordByte(lowered[i-1])
			after := end >= len(lowered) || !isWordByte(lowered[end])
			if !before || !after {
				start = i + 1
				continue
			}
		}
		sb.WriteString(text[last:i])
		sb.WriteString(replacement)
		replaced = true
		last = end
		start = end
	}
	if !replaced {
		return text, false
	}
	sb.WriteString(text[last:])
	return sb.String(), true
}
