// Package server hosts the conversational pipeline behind an HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sweetpotato0/odialingua/contrib/speech/sarvam"
	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/middleware"
	"github.com/sweetpotato0/odialingua/pipeline"
	"github.com/sweetpotato0/odialingua/pkg/logging"
	"github.com/sweetpotato0/odialingua/session"
)

// Server wires the turn pipeline, session manager, and speech client behind
// gin handlers.
type Server struct {
	orchestrator *pipeline.Orchestrator
	sessions     *session.Manager
	speech       *sarvam.Client
	chain        *middleware.Chain
	logger       *slog.Logger

	addr string
	http *http.Server
}

// Option customises a Server.
type Option func(*Server)

// WithAddr sets the listen address. Defaults to ":8080".
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithSpeech enables the text-to-speech and speech-to-text endpoints.
func WithSpeech(client *sarvam.Client) Option {
	return func(s *Server) {
		s.speech = client
	}
}

// WithChain replaces the default turn middleware chain.
func WithChain(chain *middleware.Chain) Option {
	return func(s *Server) {
		s.chain = chain
	}
}

// New creates a Server. The orchestrator and session manager are required.
func New(orch *pipeline.Orchestrator, sessions *session.Manager, opts ...Option) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator is required: %w", ollerrors.ErrInvalidInput)
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required: %w", ollerrors.ErrInvalidInput)
	}

	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		addr:         ":8080",
		logger:       logging.WithComponent("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chain == nil {
		s.chain = middleware.NewChain(
			middleware.NewTurnLogger(),
			middleware.NewUtteranceValidator(),
		)
	}
	return s, nil
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.GET("/", s.Health)

	r.POST("/chat", s.Chat)
	r.GET("/chats/:user_id", s.ListChats)
	r.POST("/rename-chat", s.RenameChat)
	r.POST("/clear-history", s.ClearHistory)
	r.POST("/delete-chat", s.DeleteChat)

	r.POST("/text-to-speech", s.TextToSpeech)
	r.POST("/speech-to-text", s.SpeechToText)

	return r
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	s.logger.Info("server listening", "addr", s.addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
