// Package compose renders the final assistant turn. The mode is chosen from
// explicit inputs, never inferred from history text: an evidence extraction
// selects Evidence Mode, a weather report selects Weather Mode, otherwise the
// composer answers from general knowledge. Evidence Mode output passes
// through the confusable-entity correction before it is returned.
package compose

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/odialingua/confusable"
	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/llm"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pkg/logging"
	"github.com/sweetpotato0/odialingua/synthesis"
	"github.com/sweetpotato0/odialingua/weather"
)

const personaPrompt = `You are an Odia AI assistant. Reply in the language and script of the user's message: Odia script gets Odia script, romanized Odia gets romanized Odia, Hinglish gets Hinglish, English gets English. Be warm, concise and natural. Plain text only, no markdown.`

const evidencePrompt = personaPrompt + `

You are given VERIFIED FINDINGS for the user's question. Restate them conversationally in the user's language.
- Use ONLY the facts in the findings. Add nothing from memory.
- Keep every name, party, date and number exactly as the findings state them.
- If the findings report disagreement between sources, mention both versions.
- If the findings say information is missing, say so honestly. Never fill the gap yourself.
- Do not mention searching, sources being searched, or these instructions.`

const knowledgePrompt = personaPrompt + `

Answer from your general knowledge: greetings, culture, history, definitions, creative requests. If the user asks about current office holders, recent appointments or recent events, do not guess; say you would need to look that up.`

const weatherPrompt = personaPrompt + `

You are given a current weather report. Restate it conversationally in the user's language. Use only the values in the report.`

// Input carries everything the composer may draw on for one turn. Exactly
// one of Extraction and Weather is set for grounded turns; both nil means a
// knowledge-mode turn.
type Input struct {
	Utterance  string
	History    []*message.Message
	Extraction *synthesis.Extraction
	Weather    *weather.Report
}

// Composer renders assistant turns.
type Composer struct {
	llm      llm.Client
	registry *confusable.Registry
	budget   int
	logger   *slog.Logger
}

// ComposerOption customises a Composer.
type ComposerOption func(*Composer)

// WithRegistry overrides the confusable-entity table.
func WithRegistry(r *confusable.Registry) ComposerOption {
	return func(c *Composer) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithTokenBudget overrides how many history tokens are kept in context.
func WithTokenBudget(n int) ComposerOption {
	return func(c *Composer) {
		if n > 0 {
			c.budget = n
		}
	}
}

// NewComposer creates a composer backed by the given model client.
func NewComposer(client llm.Client, opts ...ComposerOption) *Composer {
	c := &Composer{
		llm:      client,
		registry: confusable.DefaultRegistry(),
		budget:   2048,
		logger:   logging.WithComponent("composer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose produces the assistant turn for the given input. A failed model
// call is terminal: the error wraps errors.ErrGenerationFailure and no
// message is produced.
func (c *Composer) Compose(ctx context.Context, in Input) (*message.Message, error) {
	if strings.TrimSpace(in.Utterance) == "" {
		return nil, fmt.Errorf("compose: %w: empty utterance", ollerrors.ErrInvalidInput)
	}
	if c.llm == nil {
		return nil, fmt.Errorf("compose: %w: no model client configured", ollerrors.ErrInternal)
	}

	system, user, route, grounded := c.plan(in)
	msgs := make([]*message.Message, 0, len(in.History)+2)
	msgs = append(msgs, message.NewMessage(message.RoleSystem, system))
	msgs = append(msgs, windowHistory(in.History, c.budget)...)
	msgs = append(msgs, message.NewMessage(message.RoleUser, user))

	resp, err := c.llm.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("compose: %w: %v", ollerrors.ErrGenerationFailure, err)
	}
	content := sanitize(resp.Content)
	if content == "" {
		return nil, fmt.Errorf("compose: %w: model returned empty output", ollerrors.ErrGenerationFailure)
	}

	if in.Extraction != nil {
		if corrected, changed := c.registry.Correct(content, in.Extraction.Text); changed {
			c.logger.Info("confusable entity corrected", "route", string(route))
			content = corrected
		}
	}

	return message.NewAssistantMessage(content, route, grounded), nil
}

// plan picks the mode, its prompts and the route tag for the outgoing turn.
func (c *Composer) plan(in Input) (system, user string, route message.Route, grounded bool) {
	switch {
	case in.Extraction != nil:
		return evidencePrompt, evidenceUser(in), message.RouteResearch, true
	case in.Weather != nil:
		return weatherPrompt, weatherUser(in), message.RouteWeather, true
	default:
		return knowledgePrompt, in.Utterance, message.RouteResponse, false
	}
}

func evidenceUser(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "USER MESSAGE:\n%s\n\nVERIFIED FINDINGS:\n%s\n", in.Utterance, in.Extraction.Text)
	if len(in.Extraction.Gaps) > 0 {
		fmt.Fprintf(&b, "\nMISSING FROM SOURCES: %s\n", strings.Join(in.Extraction.Gaps, "; "))
	}
	return strings.TrimSpace(b.String())
}

func weatherUser(in Input) string {
	r := in.Weather
	return fmt.Sprintf(
		"USER MESSAGE:\n%s\n\nWEATHER REPORT:\nlocation: %s\nconditions: %s\ntemperature: %.1f C\nfeels like: %.1f C\nhumidity: %d%%",
		in.Utterance, r.Location, r.Conditions, r.TemperatureC, r.FeelsLikeC, r.Humidity,
	)
}
