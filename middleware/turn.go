package middleware

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pkg/logging"
)

// defaultMaxUtteranceRunes bounds a single turn's input. Longer inputs are
// almost always pasted documents, which this pipeline is not built for.
const defaultMaxUtteranceRunes = 2000

// TurnLogger logs the turn on the way in and the reply on the way out,
// along with elapsed time.
type TurnLogger struct {
	logger *slog.Logger
}

// NewTurnLogger creates a turn logging middleware.
func NewTurnLogger() *TurnLogger {
	return &TurnLogger{logger: logging.WithComponent("middleware")}
}

// Name returns the middleware name.
func (m *TurnLogger) Name() string {
	return "TurnLogger"
}

// Execute logs the turn boundaries.
func (m *TurnLogger) Execute(ctx *Context, next Handler) error {
	start := time.Now()
	m.logger.Info("turn started", "utterance_runes", utf8.RuneCountInString(ctx.Utterance), "history_len", len(ctx.History))

	err := next(ctx)

	elapsed := time.Since(start)
	if err != nil {
		m.logger.Error("turn failed", "error", err, "elapsed", elapsed)
		return err
	}
	if ctx.Reply != nil {
		m.logger.Info("turn completed", "route", ctx.Reply.Route, "grounded", ctx.Reply.Grounded, "elapsed", elapsed)
	}
	return nil
}

// UtteranceValidator rejects empty or oversized input before the pipeline
// spends any model calls on it.
type UtteranceValidator struct {
	maxRunes int
}

// NewUtteranceValidator creates an input validation middleware.
func NewUtteranceValidator() *UtteranceValidator {
	return &UtteranceValidator{maxRunes: defaultMaxUtteranceRunes}
}

// Name returns the middleware name.
func (m *UtteranceValidator) Name() string {
	return "UtteranceValidator"
}

// Execute validates the utterance.
func (m *UtteranceValidator) Execute(ctx *Context, next Handler) error {
	trimmed := strings.TrimSpace(ctx.Utterance)
	if trimmed == "" {
		return fmt.Errorf("utterance is empty: %w", ollerrors.ErrInvalidInput)
	}
	if utf8.RuneCountInString(trimmed) > m.maxRunes {
		return fmt.Errorf("utterance exceeds %d runes: %w", m.maxRunes, ollerrors.ErrInvalidInput)
	}
	ctx.Utterance = trimmed
	return next(ctx)
}

// RateLimiter throttles turn execution with a token bucket.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiting middleware allowing r turns per
// second with the given burst.
func NewRateLimiter(r float64, burst int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(r), burst)}
}

// Name returns the middleware name.
func (m *RateLimiter) Name() string {
	return "RateLimiter"
}

// Execute blocks until a token is available or the context is cancelled.
func (m *RateLimiter) Execute(ctx *Context, next Handler) error {
	if err := m.limiter.Wait(ctx.Context()); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return next(ctx)
}

// ReplyFilter transforms or inspects the produced reply.
type ReplyFilter struct {
	filter func(*message.Message) error
}

// NewReplyFilter creates a reply filtering middleware.
func NewReplyFilter(filter func(*message.Message) error) *ReplyFilter {
	return &ReplyFilter{filter: filter}
}

// Name returns the middleware name.
func (m *ReplyFilter) Name() string {
	return "ReplyFilter"
}

// Execute applies the filter to the reply after the chain completes.
func (m *ReplyFilter) Execute(ctx *Context, next Handler) error {
	if err := next(ctx); err != nil {
		return err
	}
	if ctx.Reply != nil && m.filter != nil {
		return m.filter(ctx.Reply)
	}
	return nil
}
