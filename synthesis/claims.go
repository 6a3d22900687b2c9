package synthesis

import (
	"regexp"
	"strings"

	"github.com/sweetpotato0/odialingua/confusable"
)

// ClaimKind classifies a checkable fact found in synthesized text.
type ClaimKind string

const (
	ClaimName   ClaimKind = "name"
	ClaimYear   ClaimKind = "year"
	ClaimDate   ClaimKind = "date"
	ClaimNumber ClaimKind = "number"
	ClaimParty  ClaimKind = "party"
)

// Claim is one fact assertion extracted mechanically from text. Claims are
// string-matched against the evidence bundle; they carry no semantics beyond
// the surface value.
type Claim struct {
	Kind  ClaimKind
	Value string
}

var (
	yearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	dateRe = regexp.MustCompile(`\b\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+(?:19|20)\d{2}\b|\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+(?:19|20)\d{2}\b`)
	nameRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	numRe  = regexp.MustCompile(`\b\d{2,}(?:\.\d+)?%?\b`)
)

// leadWords are sentence openers that look like name components but are not.
var leadWords = map[string]bool{
	"The": true, "A": true, "An": true, "In": true, "On": true, "At": true,
	"According": true, "Sources": true, "However": true, "No": true,
	"As": true, "After": true, "Before": true, "Since": true, "Chief": true,
	"New": true, "Both": true,
}

// monthNames lets the name scanner skip capitalized month words so that
// "12 June 2024" does not also produce a bogus name claim.
var monthNames = map[string]bool{
	"January": true, "February": true, "March": true, "April": true,
	"May": true, "June": true, "July": true, "August": true,
	"September": true, "October": true, "November": true, "December": true,
}

// ScanClaims extracts every checkable fact from text: multi-word proper
// names, years, full dates, standalone numbers and party mentions. The scan
// is intentionally conservative in favor of flagging: a spurious claim costs
// one containment lookup, a missed claim lets a hallucination through.
func ScanClaims(text string, registry *confusable.Registry) []Claim {
	var claims []Claim
	seen := make(map[Claim]bool)
	add := func(kind ClaimKind, value string) {
		c := Claim{Kind: kind, Value: value}
		if !seen[c] {
			seen[c] = true
			claims = append(claims, c)
		}
	}

	for _, d := range dateRe.FindAllString(text, -1) {
		add(ClaimDate, d)
	}
	for _, y := range yearRe.FindAllString(text, -1) {
		add(ClaimYear, y)
	}
	for _, n := range nameRe.FindAllString(text, -1) {
		if name, ok := trimNameClaim(n); ok {
			add(ClaimName, name)
		}
	}
	for _, n := range numRe.FindAllString(text, -1) {
		if !yearRe.MatchString(n) {
			add(ClaimNumber, n)
		}
	}
	if registry != nil {
		for _, party := range registry.Detect(text) {
			add(ClaimParty, party)
		}
	}
	return claims
}

// trimNameClaim drops leading filler words and month names from a candidate
// capitalized run, keeping it only if at least two words survive.
func trimNameClaim(candidate string) (string, bool) {
	words := strings.Fields(candidate)
	for len(words) > 0 && (leadWords[words[0]] || monthNames[words[0]]) {
		words = words[1:]
	}
	for len(words) > 0 && monthNames[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	if len(words) < 2 {
		return "", false
	}
	return strings.Join(words, " "), true
}
