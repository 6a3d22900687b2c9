// Package weather resolves weather-routed turns. A Provider fetches current
// conditions for a named location; the Service in front of it extracts the
// location from the utterance, with a deterministic gazetteer fallback when
// the model cannot be reached.
package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/llm"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pkg/logging"
)

// Report holds the current conditions for one location. All temperatures are
// Celsius.
type Report struct {
	Location     string  `json:"location"`
	Conditions   string  `json:"conditions"`
	TemperatureC float64 `json:"temperature_c"`
	FeelsLikeC   float64 `json:"feels_like_c"`
	Humidity     int     `json:"humidity"`
}

// Provider fetches current conditions from an upstream weather API. Unknown
// locations must return an error wrapping errors.ErrNotFound.
type Provider interface {
	Current(ctx context.Context, location string) (*Report, error)
}

const locatorPrompt = `Extract the location a weather question asks about. The question may be in Odia script, romanized Odia, Hinglish or English. Return the location as a plain English city name.

Return compact JSON only: {"location":"<city>"} or {"location":""} if no location is named.`

type locatorDecision struct {
	Location string `json:"location"`
}

// DefaultLocation is used when the utterance names no location. The assistant
// serves an Odia-speaking audience, so the state capital is the natural
// default.
const DefaultLocation = "Bhubaneswar"

type gazetteerEntry struct {
	form string
	city string
}

// gazetteer maps location surface forms across scripts to English city names.
// Ordered so that lookups are deterministic: when an utterance names several
// known cities, the one mentioned first wins.
var gazetteer = []gazetteerEntry{
	{"bhubaneswar", "Bhubaneswar"}, {"ଭୁବନେଶ୍ୱର", "Bhubaneswar"},
	{"cuttack", "Cuttack"}, {"କଟକ", "Cuttack"},
	{"puri", "Puri"}, {"ପୁରୀ", "Puri"},
	{"rourkela", "Rourkela"}, {"ରାଉରକେଲା", "Rourkela"},
	{"sambalpur", "Sambalpur"}, {"ସମ୍ବଲପୁର", "Sambalpur"},
	{"berhampur", "Berhampur"}, {"ବ୍ରହ୍ମପୁର", "Berhampur"},
	{"balasore", "Balasore"}, {"ବାଲେଶ୍ୱର", "Balasore"},
	{"delhi", "Delhi"}, {"ଦିଲ୍ଲୀ", "Delhi"},
	{"mumbai", "Mumbai"}, {"ମୁମ୍ବାଇ", "Mumbai"},
	{"kolkata", "Kolkata"}, {"କୋଲକାତା", "Kolkata"},
}

// Service answers weather turns: it resolves the asked-about location and
// queries the provider.
type Service struct {
	provider Provider
	llm      llm.Client
	logger   *slog.Logger
}

// NewService creates a weather service. The model client is optional; without
// it location extraction uses the gazetteer alone.
func NewService(provider Provider, client llm.Client) *Service {
	return &Service{
		provider: provider,
		llm:      client,
		logger:   logging.WithComponent("weather"),
	}
}

// Lookup extracts the location from the utterance and fetches its current
// conditions.
func (s *Service) Lookup(ctx context.Context, utterance string) (*Report, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("weather: %w: no provider configured", ollerrors.ErrInternal)
	}
	location := s.extractLocation(ctx, utterance)
	report, err := s.provider.Current(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("weather lookup for %q: %w", location, err)
	}
	return report, nil
}

// extractLocation asks the model first and falls back to the gazetteer. The
// gazetteer also vets a model answer of "" back to the default.
func (s *Service) extractLocation(ctx context.Context, utterance string) string {
	if loc := lookupGazetteer(utterance); loc != "" {
		return loc
	}
	if s.llm != nil {
		if loc, err := s.modelLocation(ctx, utterance); err != nil {
			s.logger.Warn("location extraction failed", "error", err)
		} else if loc != "" {
			return loc
		}
	}
	return DefaultLocation
}

func (s *Service) modelLocation(ctx context.Context, utterance string) (string, error) {
	resp, err := s.llm.Generate(ctx, []*message.Message{
		message.NewMessage(message.RoleSystem, locatorPrompt),
		message.NewMessage(message.RoleUser, utterance),
	})
	if err != nil {
		return "", err
	}
	decision, err := llm.DecodeJSON[locatorDecision](resp.Content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(decision.Location), nil
}

func lookupGazetteer(utterance string) string {
	lowered := strings.ToLower(utterance)
	best, bestPos := "", -1
	for _, entry := range gazetteer {
		pos := strings.Index(lowered, entry.form)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos {
			best, bestPos = entry.city, pos
		}
	}
	return best
}
