package compose

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sweetpotato0/odialingua/message"
)

// historyEncoding is the tokenizer used to budget context. The exact
// vocabulary does not matter for budgeting, only that counts are stable.
const historyEncoding = "cl100k_base"

var (
	encOnce sync.Once
	encoder *tiktoken.Tiktoken
)

func countTokens(text string) int {
	encOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(historyEncoding)
		if err == nil {
			encoder = enc
		}
	})
	if encoder == nil {
		// Offline fallback when the BPE ranks cannot be loaded.
		return len(text) / 4
	}
	return len(encoder.Encode(text, nil, nil))
}

// windowHistory returns the most recent messages whose combined token count
// fits the budget, preserving order. The newest message is always kept even
// when it alone exceeds the budget.
func windowHistory(history []*message.Message, budget int) []*message.Message {
	if len(history) == 0 || budget <= 0 {
		return nil
	}
	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		cost := countTokens(history[i].Content)
		if total+cost > budget && start < len(history) {
			break
		}
		total += cost
		start = i
	}
	return history[start:]
}
