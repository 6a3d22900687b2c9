package session

import (
	"context"
	"strings"

	"github.com/sweetpotato0/odialingua/llm"
	"github.com/sweetpotato0/odialingua/message"
)

const titlerPrompt = `Generate a short title (3 to 5 words) for a conversation that starts with the given message. Write the title in the same language and script as the message. Plain text only, no quotes, no punctuation at the end.`

// maxTitleRunes bounds both model titles and the truncation fallback.
const maxTitleRunes = 40

// Titler names new conversations after their first user message. It never
// fails: when the model is unavailable the truncated message becomes the
// title.
type Titler struct {
	llm llm.Client
}

// NewTitler creates a titler. A nil client always uses truncation.
func NewTitler(client llm.Client) *Titler {
	return &Titler{llm: client}
}

// Title produces a conversation title for the first user message.
func (t *Titler) Title(ctx context.Context, firstMessage string) string {
	firstMessage = strings.TrimSpace(firstMessage)
	if firstMessage == "" {
		return "ନୂଆ କଥାବାର୍ତ୍ତା"
	}
	if t.llm != nil {
		resp, err := t.llm.Generate(ctx, []*message.Message{
			message.NewMessage(message.RoleSystem, titlerPrompt),
			message.NewMessage(message.RoleUser, firstMessage),
		})
		if err == nil {
			if title := clampTitle(resp.Content); title != "" {
				return title
			}
		}
	}
	return clampTitle(firstMessage)
}

func clampTitle(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	runes := []rune(s)
	if len(runes) > maxTitleRunes {
		s = string(runes[:maxTitleRunes]) + "..."
	}
	return s
}
