package route

import "strings"

// Concept names one equivalence class of tokens that mean the same thing
// across the scripts and transliteration schemes the assistant accepts
// (Odia script, romanized Odia, Hinglish, English).
type Concept string

const (
	ConceptCurrent       Concept = "current"
	ConceptWho           Concept = "who"
	ConceptOfficeHolder  Concept = "office_holder"
	ConceptRecentYear    Concept = "recent_year"
	ConceptWeather       Concept = "weather"
	ConceptInterrogative Concept = "interrogative"
	ConceptParty         Concept = "party"
	ConceptLocaleMarker  Concept = "locale_marker"
)

// Lexicon is an immutable keyword table loaded once at process start. Route
// decisions are pure functions of (input, lexicon), which keeps the override
// deterministic and testable without live model calls.
//
// Equivalence is defined by membership in per-concept sets, not by script
// normalization: "ବର୍ତ୍ତମାନ", "bartaman" and "current" are three members of the
// same set, never transliterations of each other.
type Lexicon struct {
	concepts map[Concept][]string
}

// NewLexicon builds a lexicon from per-concept token sets. The input map is
// copied; the lexicon never mutates after construction.
func NewLexicon(concepts map[Concept][]string) *Lexicon {
	copied := make(map[Concept][]string, len(concepts))
	for concept, tokens := range concepts {
		set := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok != "" {
				set = append(set, tok)
			}
		}
		copied[concept] = set
	}
	return &Lexicon{concepts: copied}
}

// DefaultLexicon returns the built-in keyword table for the Odia locale.
func DefaultLexicon() *Lexicon {
	return NewLexicon(map[Concept][]string{
		ConceptCurrent: {
			"current", "latest", "now", "today",
			"ବର୍ତ୍ତମାନ", "bartaman", "ଏବେ", "ebe", "ekhani",
			"ଆଜି", "aaji", "aaj", "abhi", "ab tak",
		},
		ConceptWho: {
			"who", "କିଏ", "kie", "kaun", "kon",
		},
		ConceptOfficeHolder: {
			"chief minister", "mukhyamantri", "ମୁଖ୍ୟମନ୍ତ୍ରୀ", "ସିଏମ", "cm",
			"prime minister", "pradhanmantri", "ପ୍ରଧାନମନ୍ତ୍ରୀ", "pm",
			"president", "rashtrapati", "ରାଷ୍ଟ୍ରପତି",
			"minister", "mantri", "ମନ୍ତ୍ରୀ", "mla", "mp",
			"elected", "appointed", "sworn in",
		},
		ConceptRecentYear: {
			"2024", "2025", "2026",
		},
		ConceptWeather: {
			"weather", "ପାଗ", "paag", "paaga", "mausam",
			"rain", "barsha", "ବର୍ଷା", "barish",
			"hot", "garmi", "ଗରମ", "cold", "thanda", "ଥଣ୍ଡା",
			"sunny", "dhoop", "humidity", "temperature", "forecast",
		},
		ConceptInterrogative: {
			"what", "କଣ", "kana", "kya",
			"where", "କେଉଁଠି", "keunthi", "kahan",
			"when", "କେବେ", "kebe", "kab",
			"how", "କିପରି", "kipari", "kaise",
		},
		ConceptParty: {
			"bjp", "ବିଜେପି", "bhajapa", "bharatiya janata party",
			"bjd", "ବିଜଦ", "bijad", "biju janata dal",
			"congress", "କଂଗ୍ରେସ", "kaangress", "inc",
		},
		ConceptLocaleMarker: {
			"odisha ra", "odisha ka", "odisha re", "odisha ke",
		},
	})
}

// Tokens returns the token set for one concept.
func (l *Lexicon) Tokens(concept Concept) []string {
	return l.concepts[concept]
}

// Matches reports whether text contains any token of the given concept.
func (l *Lexicon) Matches(text string, concept Concept) bool {
	lowered := strings.ToLower(text)
	for _, tok := range l.concepts[concept] {
		if containsToken(lowered, tok) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether text contains a token of any of the concepts.
func (l *Lexicon) MatchesAny(text string, concepts ...Concept) bool {
	for _, concept := range concepts {
		if l.Matches(text, concept) {
			return true
		}
	}
	return false
}

// HasVolatileFact reports whether text contains any token from the
// volatile-fact keyword set: temporal qualifiers, office-holder nouns,
// political-entity names, recent-year tokens and locale-specific phrases.
func (l *Lexicon) HasVolatileFact(text string) bool {
	return l.MatchesAny(text,
		ConceptCurrent, ConceptWho, ConceptOfficeHolder,
		ConceptRecentYear, ConceptParty, ConceptLocaleMarker,
	)
}

// HasWeather reports whether text contains any weather-keyword-set token.
func (l *Lexicon) HasWeather(text string) bool {
	return l.Matches(text, ConceptWeather)
}

// containsToken matches short Latin tokens on word boundaries so that "ab"
// never fires inside "Bhubaneswar"; multi-word phrases and non-ASCII tokens
// match as substrings.
func containsToken(lowered, tok string) bool {
	if strings.ContainsRune(tok, ' ') || !isASCII(tok) {
		return strings.Contains(lowered, tok)
	}
	idx := 0
	for {
		pos := strings.Index(lowered[idx:], tok)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(tok)
		if boundary(lowered, start-1) && boundary(lowered, end) {
			return true
		}
		idx = start + 1
		if idx >= len(lowered) {
			return false
		}
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
