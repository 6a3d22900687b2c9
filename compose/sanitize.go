package compose

import "strings"

// strippedPhrases are process-narration fragments the model tends to leak
// into answers. Matching is case-insensitive and removes the phrase plus any
// immediately following comma or colon.
var strippedPhrases = []string{
	"according to the search results,",
	"according to the search results",
	"according to search results,",
	"according to search results",
	"based on the search results,",
	"based on the search results",
	"based on my search,",
	"based on my search",
	"the search results show that",
	"the search results show",
	"as an ai language model,",
	"as an ai language model",
	"as an ai,",
	"as an ai",
	"ସର୍ଚ୍ଚ ରିଜଲ୍ଟ ଅନୁଯାୟୀ,",
	"ସର୍ଚ୍ଚ ରିଜଲ୍ଟ ଅନୁଯାୟୀ",
	"ସନ୍ଧାନ ଫଳାଫଳ ଅନୁଯାୟୀ",
}

// terminalRunes are accepted sentence-final marks; anything else gets the
// Odia purna viram appended.
var terminalRunes = map[rune]bool{
	'।': true, '॥': true, '.': true, '!': true, '?': true,
	'"': true, '\'': true, ')': true,
}

// sanitize strips process narration and guarantees terminal punctuation.
func sanitize(text string) string {
	for _, phrase := range strippedPhrases {
		text = removePhrase(text, phrase)
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return text
	}
	runes := []rune(text)
	if !terminalRunes[runes[len(runes)-1]] {
		text += "।"
	}
	return text
}

func removePhrase(text, phrase string) string {
	for {
		idx := strings.Index(strings.ToLower(text), phrase)
		if idx < 0 {
			return text
		}
		text = text[:idx] + text[idx+len(phrase):]
	}
}
