// Package pipeline drives one conversational turn through its phases:
// routing, gathering, composing, done. Each phase reads and writes a typed
// TurnState; the phase transition table is fixed and every transition is
// traced. Gathering failures degrade (absence markers, extractive fallback),
// routing and composing failures are terminal for the turn and leave the
// conversation unmodified.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetpotato0/odialingua/compose"
	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/evidence"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pkg/logging"
	"github.com/sweetpotato0/odialingua/pkg/telemetry"
	"github.com/sweetpotato0/odialingua/route"
	"github.com/sweetpotato0/odialingua/synthesis"
	"github.com/sweetpotato0/odialingua/weather"
)

// Phase names one stage of turn processing.
type Phase string

const (
	PhaseRouting   Phase = "routing"
	PhaseGathering Phase = "gathering"
	PhaseComposing Phase = "composing"
	PhaseDone      Phase = "done"
)

// maxSteps bounds the phase loop; the table is acyclic, so hitting the bound
// means a programming error rather than a long turn.
const maxSteps = 8

// TurnState accumulates everything produced while processing one turn.
type TurnState struct {
	Phase      Phase
	Utterance  string
	History    []*message.Message
	Route      message.Route
	Bundle     *evidence.Bundle
	Extraction *synthesis.Extraction
	Weather    *weather.Report
	Reply      *message.Message
}

// weatherUnavailable is the deterministic reply when the weather provider is
// down. It goes out ungrounded since no report backs it.
const weatherUnavailable = "ଦୁଃଖିତ, ଏବେ ପାଗ ସୂଚନା ଆଣି ପାରିଲି ନାହିଁ। କିଛି ସମୟ ପରେ ପୁଣି ପଚାରନ୍ତୁ।"

// Orchestrator wires the classifier, the evidence path and the composer into
// a single Respond call.
type Orchestrator struct {
	classifier  *route.Classifier
	gatherer    *evidence.Gatherer
	synthesizer *synthesis.Synthesizer
	composer    *compose.Composer
	weather     *weather.Service
	tracer      trace.Tracer
	logger      *slog.Logger
}

// OrchestratorOption customises an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithWeatherService attaches the weather resolution path. Without it,
// weather-routed turns get the deterministic unavailable reply.
func WithWeatherService(s *weather.Service) OrchestratorOption {
	return func(o *Orchestrator) { o.weather = s }
}

// NewOrchestrator assembles a turn pipeline. Classifier and composer are
// required; gatherer and synthesizer may be nil when the deployment has no
// search backends, in which case research turns degrade to no-information
// extractions.
func NewOrchestrator(
	classifier *route.Classifier,
	gatherer *evidence.Gatherer,
	synthesizer *synthesis.Synthesizer,
	composer *compose.Composer,
	opts ...OrchestratorOption,
) (*Orchestrator, error) {
	if classifier == nil {
		return nil, fmt.Errorf("pipeline: %w: nil classifier", ollerrors.ErrInvalidInput)
	}
	if composer == nil {
		return nil, fmt.Errorf("pipeline: %w: nil composer", ollerrors.ErrInvalidInput)
	}
	o := &Orchestrator{
		classifier:  classifier,
		gatherer:    gatherer,
		synthesizer: synthesizer,
		composer:    composer,
		tracer:      telemetry.Tracer("pipeline"),
		logger:      logging.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Respond processes one user turn against the given history and returns the
// assistant message. History is read-only; persisting both turns is the
// caller's job, and on error nothing must be persisted.
func (o *Orchestrator) Respond(ctx context.Context, utterance string, history []*message.Message) (*message.Message, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.Respond")
	var err error
	defer func() { telemetry.End(span, err) }()

	state := &TurnState{
		Phase:     PhaseRouting,
		Utterance: utterance,
		History:   message.CloneMessages(history),
	}

	for steps := 0; state.Phase != PhaseDone; steps++ {
		if steps >= maxSteps {
			err = fmt.Errorf("pipeline: %w: phase loop exceeded %d steps", ollerrors.ErrInternal, maxSteps)
			return nil, err
		}
		if err = o.step(ctx, state); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.String("route", string(state.Reply.Route)),
		attribute.Bool("grounded", state.Reply.Grounded),
	)
	return state.Reply, nil
}

func (o *Orchestrator) step(ctx context.Context, state *TurnState) error {
	ctx, span := o.tracer.Start(ctx, "pipeline."+string(state.Phase))
	var err error
	defer func() { telemetry.End(span, err) }()

	switch state.Phase {
	case PhaseRouting:
		err = o.routeTurn(ctx, state)
	case PhaseGathering:
		err = o.gather(ctx, state)
	case PhaseComposing:
		err = o.composeTurn(ctx, state)
	default:
		err = fmt.Errorf("pipeline: %w: unknown phase %q", ollerrors.ErrInternal, state.Phase)
	}
	return err
}

func (o *Orchestrator) routeTurn(ctx context.Context, state *TurnState) error {
	r, err := o.classifier.Classify(ctx, state.Utterance, state.History)
	if err != nil {
		return err
	}
	state.Route = r
	o.logger.Info("turn routed", "route", string(r))

	if r == message.RouteResponse {
		state.Phase = PhaseComposing
		return nil
	}
	state.Phase = PhaseGathering
	return nil
}

func (o *Orchestrator) gather(ctx context.Context, state *TurnState) error {
	switch state.Route {
	case message.RouteResearch:
		return o.gatherResearch(ctx, state)
	case message.RouteWeather:
		return o.gatherWeather(ctx, state)
	default:
		return fmt.Errorf("pipeline: %w: gathering for route %q", ollerrors.ErrInternal, state.Route)
	}
}

func (o *Orchestrator) gatherResearch(ctx context.Context, state *TurnState) error {
	if o.gatherer != nil {
		state.Bundle = o.gatherer.Search(ctx, state.Utterance)
	} else {
		state.Bundle = evidence.NewBundle(state.Utterance)
	}

	if o.synthesizer == nil {
		state.Extraction = &synthesis.Extraction{
			Question:      state.Utterance,
			Text:          synthesis.NoInformationText,
			NoInformation: true,
		}
		state.Phase = PhaseComposing
		return nil
	}

	ext, err := o.synthesizer.Synthesize(ctx, state.Utterance, state.Bundle)
	if err != nil {
		return err
	}
	state.Extraction = ext
	state.Phase = PhaseComposing
	return nil
}

// gatherWeather resolves the report; provider failure degrades to a fixed
// apology instead of failing the turn.
func (o *Orchestrator) gatherWeather(ctx context.Context, state *TurnState) error {
	if o.weather != nil {
		report, err := o.weather.Lookup(ctx, state.Utterance)
		if err == nil {
			state.Weather = report
			state.Phase = PhaseComposing
			return nil
		}
		o.logger.Warn("weather lookup failed", "error", err)
	}
	state.Reply = message.NewAssistantMessage(weatherUnavailable, message.RouteWeather, false)
	state.Phase = PhaseDone
	return nil
}

func (o *Orchestrator) composeTurn(ctx context.Context, state *TurnState) error {
	reply, err := o.composer.Compose(ctx, compose.Input{
		Utterance:  state.Utterance,
		History:    state.History,
		Extraction: state.Extraction,
		Weather:    state.Weather,
	})
	if err != nil {
		return err
	}
	state.Reply = reply
	state.Phase = PhaseDone
	return nil
}
