package route

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/llm"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pkg/logging"
)

// RoutingError reports that no route could be decided for an utterance. The
// caller must treat it as a hard failure; the classifier never silently
// defaults.
type RoutingError struct {
	Utterance string
	Cause     error
}

func (e *RoutingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("routing failed for %q: %v", truncate(e.Utterance, 60), e.Cause)
	}
	return fmt.Sprintf("routing failed for %q", truncate(e.Utterance, 60))
}

func (e *RoutingError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ollerrors.ErrRoutingAmbiguous
}

const routerPrompt = `You are a high-precision routing agent for an Odia AI assistant that must be factually accurate. You understand queries in Odia script, romanized Odia, Hinglish and English, and you route on intent, never on script.

Pick exactly one route:
- "weather": any weather, temperature or forecast question ("ଭୁବନେଶ୍ୱରରେ ପାଗ କେମିତି ଅଛି?", "Bhubaneswar re paag kemiti achhi?", "Bhubaneswar mein mausam kaisa hai?").
- "research": questions needing verified current facts: office holders (CM, PM, President, Ministers), recent appointments, party affiliations, election results, recent events ("Odisha ra bartaman mukhyamantri kie?", "Odisha ka CM kaun hai?").
- "response": stable knowledge and casual chat: history, culture, greetings ("namaskar", "kemiti achha"), definitions, creative requests.

If uncertain between research and response for a factual question, choose "research": a stale fact is far more costly than an unnecessary search.

Return compact JSON only: {"next_agent":"research|weather|response"}.`

// routeDecision is the structured output schema expected from the model.
type routeDecision struct {
	NextAgent string `json:"next_agent"`
}

// Classifier assigns one Route to each incoming user turn.
//
// The primary decision comes from the model; a deterministic volatile-fact
// override then runs on the lexicon regardless of what the model said. The
// override direction is intentional: forcing an unnecessary research pass is
// cheap, answering a volatile question from latent knowledge is not.
type Classifier struct {
	llm     llm.Client
	lexicon *Lexicon
	retries int
	logger  *slog.Logger
}

// ClassifierOption customises a Classifier.
type ClassifierOption func(*Classifier)

// WithLexicon overrides the built-in keyword table.
func WithLexicon(lex *Lexicon) ClassifierOption {
	return func(c *Classifier) {
		if lex != nil {
			c.lexicon = lex
		}
	}
}

// WithRetries overrides how many times an undecodable model output is retried.
func WithRetries(n int) ClassifierOption {
	return func(c *Classifier) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// NewClassifier creates a classifier backed by the given model client. A nil
// client is allowed; classification then relies on the lexicon alone.
func NewClassifier(client llm.Client, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		llm:     client,
		lexicon: DefaultLexicon(),
		retries: 1,
		logger:  logging.WithComponent("classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lexicon exposes the active keyword table.
func (c *Classifier) Lexicon() *Lexicon {
	return c.lexicon
}

// Classify maps the current user message plus prior turns to exactly one
// route. It returns a *RoutingError when neither the model nor the lexicon
// can decide.
func (c *Classifier) Classify(ctx context.Context, current string, history []*message.Message) (message.Route, error) {
	current = strings.TrimSpace(current)
	if current == "" {
		return "", fmt.Errorf("classify: %w: empty message", ollerrors.ErrInvalidInput)
	}

	primary, primaryErr := c.primaryRoute(ctx, current, history)

	// Deterministic safety override: a volatile-fact keyword without a
	// weather keyword always forces research, whatever the model decided.
	if c.lexicon.HasVolatileFact(current) && !c.lexicon.HasWeather(current) {
		if primary != message.RouteResearch {
			c.logger.Info("volatile-fact override applied",
				"primary", string(primary),
				"forced", string(message.RouteResearch),
			)
		}
		return message.RouteResearch, nil
	}

	if primaryErr == nil {
		return primary, nil
	}

	// Model unavailable or undecodable: fall back to the lexicon.
	if c.lexicon.HasWeather(current) {
		return message.RouteWeather, nil
	}
	if c.lexicon.HasVolatileFact(current) {
		return message.RouteResearch, nil
	}

	return "", &RoutingError{Utterance: current, Cause: primaryErr}
}

func (c *Classifier) primaryRoute(ctx context.Context, current string, history []*message.Message) (message.Route, error) {
	if c.llm == nil {
		return "", fmt.Errorf("no model client configured")
	}

	userPrompt := fmt.Sprintf("Current date: %s\n\nUSER MESSAGE:\n%s\n\nCONVERSATION CONTEXT:\n%s",
		time.Now().UTC().Format("2006-01-02"), current, renderHistory(history))
	msgs := []*message.Message{
		message.NewMessage(message.RoleSystem, routerPrompt),
		message.NewMessage(message.RoleUser, userPrompt),
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		resp, err := c.llm.Generate(ctx, msgs)
		if err != nil {
			lastErr = fmt.Errorf("router model call: %w", err)
			continue
		}
		decision, err := llm.DecodeJSON[routeDecision](resp.Content)
		if err != nil {
			lastErr = fmt.Errorf("router output: %w", err)
			continue
		}
		route := message.Route(strings.ToLower(strings.TrimSpace(decision.NextAgent)))
		if !route.Valid() {
			lastErr = fmt.Errorf("router output: unknown route %q", decision.NextAgent)
			continue
		}
		return route, nil
	}
	return "", lastErr
}

func renderHistory(history []*message.Message) string {
	if len(history) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return strings.TrimSpace(b.String())
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
