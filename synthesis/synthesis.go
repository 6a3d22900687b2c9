// Package synthesis turns an evidence bundle into a fact-constrained
// extraction. The model drafts the extraction, but every hard rule is
// enforced mechanically afterwards: claim containment, conflict surfacing and
// gap honesty are code, not prompt instructions. When the model cannot
// produce a compliant draft the synthesizer falls back to a deterministic
// extractive summary that quotes the sources directly.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sweetpotato0/odialingua/confusable"
	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/evidence"
	"github.com/sweetpotato0/odialingua/llm"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pkg/logging"
)

// Extraction is the synthesizer's output: English working-language prose
// containing only facts present in the bundle, plus the bookkeeping the
// composer needs to render an honest answer.
type Extraction struct {
	Question      string     `json:"question"`
	Text          string     `json:"text"`
	Sources       []string   `json:"sources,omitempty"`
	Conflicts     []Conflict `json:"conflicts,omitempty"`
	Gaps          []string   `json:"gaps,omitempty"`
	NoInformation bool       `json:"no_information,omitempty"`
	Extractive    bool       `json:"extractive,omitempty"` // deterministic fallback was used
}

// NoInformationText is the fixed statement an extraction carries when every
// source came back absent. It is shared with callers that build the
// no-information extraction themselves.
const NoInformationText = "The available sources contain no information about this question."

const synthPrompt = `You are an evidence extraction engine for a factual assistant. You receive a question and search results from labeled sources. Write a short English summary that answers the question.

Hard rules:
1. Use ONLY facts stated in the sources below. Do not add anything from memory.
2. Every name, date, year, number and party affiliation you write must appear verbatim in the sources.
3. If the sources disagree on a fact, state both versions and name their sources.
4. If the sources do not answer part of the question, say plainly what is missing. Never guess.
5. Plain prose only. No markdown, no commentary about searching.`

// Synthesizer builds extractions from evidence bundles.
type Synthesizer struct {
	llm      llm.Client
	registry *confusable.Registry
	retries  int
	logger   *slog.Logger
}

// SynthesizerOption customises a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithRegistry overrides the confusable-entity table.
func WithRegistry(r *confusable.Registry) SynthesizerOption {
	return func(s *Synthesizer) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithRetries overrides how many corrective redrafts are attempted before the
// extractive fallback kicks in.
func WithRetries(n int) SynthesizerOption {
	return func(s *Synthesizer) {
		if n >= 0 {
			s.retries = n
		}
	}
}

// NewSynthesizer creates a synthesizer backed by the given model client. A
// nil client is allowed; synthesis then always uses the extractive fallback.
func NewSynthesizer(client llm.Client, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		llm:      client,
		registry: confusable.DefaultRegistry(),
		retries:  1,
		logger:   logging.WithComponent("synthesizer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize produces an extraction for the question from the bundle. An
// empty bundle yields a no-information extraction without touching the model.
// Model failures and rule-violating drafts degrade to the extractive
// fallback; Synthesize fails only on invalid input.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, bundle *evidence.Bundle) (*Extraction, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("synthesize: %w: empty question", ollerrors.ErrInvalidInput)
	}
	if bundle == nil || bundle.Empty() {
		return &Extraction{
			Question:      question,
			Text:          NoInformationText,
			Gaps:          []string{"no evidence source returned data"},
			NoInformation: true,
		}, nil
	}

	conflicts := detectConflicts(bundle, s.registry)
	text, extractive := s.draftCompliant(ctx, question, bundle)
	text = ensureConflicts(text, conflicts)

	return &Extraction{
		Question:   question,
		Text:       text,
		Sources:    bundle.SourcesPresent(),
		Conflicts:  conflicts,
		Gaps:       gapNotes(question, bundle, s.registry),
		Extractive: extractive,
	}, nil
}

// draftCompliant asks the model for a draft and re-asks with the violating
// values named until the draft passes containment or retries run out. The
// second return value reports whether the extractive fallback was used.
func (s *Synthesizer) draftCompliant(ctx context.Context, question string, bundle *evidence.Bundle) (string, bool) {
	if s.llm == nil {
		return extractiveSummary(bundle), true
	}

	correction := ""
	for attempt := 0; attempt <= s.retries; attempt++ {
		draft, err := s.draft(ctx, question, bundle, correction)
		if err != nil {
			s.logger.Warn("synthesis draft failed", "attempt", attempt, "error", err)
			continue
		}
		violations := containmentViolations(draft, bundle, s.registry)
		if len(violations) == 0 {
			return draft, false
		}
		s.logger.Info("draft contained unsupported claims",
			"attempt", attempt,
			"violations", len(violations),
		)
		correction = violationNote(violations)
	}
	return extractiveSummary(bundle), true
}

func (s *Synthesizer) draft(ctx context.Context, question string, bundle *evidence.Bundle, correction string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nSources:\n", question)
	for _, snippet := range bundle.Present() {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", snippet.Source, snippet.Text)
	}
	if correction != "" {
		b.WriteString(correction)
	}

	resp, err := s.llm.Generate(ctx, []*message.Message{
		message.NewMessage(message.RoleSystem, synthPrompt),
		message.NewMessage(message.RoleUser, strings.TrimSpace(b.String())),
	})
	if err != nil {
		return "", err
	}
	draft := strings.TrimSpace(resp.Content)
	if draft == "" {
		return "", fmt.Errorf("model returned empty draft")
	}
	return draft, nil
}

func violationNote(violations []Claim) string {
	values := make([]string, 0, len(violations))
	for _, v := range violations {
		values = append(values, fmt.Sprintf("%q", v.Value))
	}
	return fmt.Sprintf("Your previous draft mentioned %s, which the sources do not state. Rewrite the summary using only facts present in the sources.",
		strings.Join(values, ", "))
}

// extractiveSummary quotes each present snippet with its source label. It is
// grounded by construction and needs no verification pass.
func extractiveSummary(bundle *evidence.Bundle) string {
	var b strings.Builder
	for _, snippet := range bundle.Present() {
		fmt.Fprintf(&b, "[%s] %s\n", snippet.Source, snippet.Text)
	}
	return strings.TrimSpace(b.String())
}
