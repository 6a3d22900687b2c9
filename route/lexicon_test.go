package route

import "testing"

func TestLexiconMatchesAcrossScripts(t *testing.T) {
	lex := DefaultLexicon()

	cases := []struct {
		text    string
		concept Concept
		want    bool
	}{
		{"ଓଡ଼ିଶାର ବର୍ତ୍ତମାନର ମୁଖ୍ୟମନ୍ତ୍ରୀ କିଏ?", ConceptCurrent, true},
		{"Odisha ra bartaman mukhyamantri kie?", ConceptCurrent, true},
		{"Odisha ka CM kaun hai?", ConceptWho, true},
		{"Who is the current CM of Odisha?", ConceptOfficeHolder, true},
		{"ଭୁବନେଶ୍ୱରରେ ପାଗ କେମିତି ଅଛି?", ConceptWeather, true},
		{"Bhubaneswar mein mausam kaisa hai?", ConceptWeather, true},
		{"Tell me a story about Konark", ConceptWeather, false},
		{"2024 election results", ConceptRecentYear, true},
	}

	for _, tc := range cases {
		got := lex.Matches(tc.text, tc.concept)
		if got != tc.want {
			t.Errorf("Matches(%q, %s) = %v, want %v", tc.text, tc.concept, got, tc.want)
		}
	}
}

func TestShortLatinTokensNeedWordBoundaries(t *testing.T) {
	lex := DefaultLexicon()

	// "cm" must not fire inside an unrelated word.
	if lex.Matches("The circumference is 10cm3x wide", ConceptOfficeHolder) {
		t.Error("token matched inside a larger word")
	}
	if !lex.Matches("odisha cm list", ConceptOfficeHolder) {
		t.Error("bounded token did not match")
	}
}

func TestHasVolatileFact(t *testing.T) {
	lex := DefaultLexicon()

	volatile := []string{
		"Who is the current Chief Minister of Odisha?",
		"Odisha ra CM kie?",
		"bartaman mukhyamantri",
		"2024 re kana hela?",
		"BJP ra sabhapati kie?",
	}
	for _, text := range volatile {
		if !lex.HasVolatileFact(text) {
			t.Errorf("HasVolatileFact(%q) = false, want true", text)
		}
	}

	stable := []string{
		"Tell me a galpa about the sea",
		"ମୋତେ ଏକ କବିତା ଲେଖି ଦିଅ",
	}
	for _, text := range stable {
		if lex.HasVolatileFact(text) {
			t.Errorf("HasVolatileFact(%q) = true, want false", text)
		}
	}
}

func TestLexiconCopiesInput(t *testing.T) {
	tokens := []string{"alpha"}
	lex := NewLexicon(map[Concept][]string{ConceptWeather: tokens})
	tokens[0] = "beta"

	if !lex.Matches("alpha rain", ConceptWeather) {
		t.Error("lexicon should keep its own copy of the token sets")
	}
}
