package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sweetpotato0/odialingua/contrib/speech/sarvam"
	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/middleware"
	"github.com/sweetpotato0/odialingua/session"
)

// ChatRequest is the body of POST /chat. Leave SessionID empty to start a
// new conversation.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse is the reply to POST /chat.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Response  string `json:"response"`
	Route     string `json:"route"`
	Grounded  bool   `json:"grounded"`
}

// SessionActionRequest targets an existing conversation.
type SessionActionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// RenameRequest is the body of POST /rename-chat.
type RenameRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
}

// TTSRequest is the body of POST /text-to-speech.
type TTSRequest struct {
	Text string `json:"text" binding:"required"`
}

// Chat runs one conversational turn. A turn is atomic: if the pipeline
// fails, nothing is persisted and the conversation is left exactly as it
// was.
func (s *Server) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := s.resolveConversation(c, req)
	if err != nil {
		return
	}

	mctx := middleware.NewContext(c.Request.Context())
	mctx.Utterance = req.Message
	mctx.History = conv.Messages

	err = s.chain.Execute(mctx, func(mc *middleware.Context) error {
		reply, err := s.orchestrator.Respond(mc.Context(), mc.Utterance, mc.History)
		if err != nil {
			return err
		}
		mc.Reply = reply
		return nil
	})
	if err != nil {
		s.turnError(c, err)
		return
	}

	userMsg := message.NewMessage(message.RoleUser, mctx.Utterance)
	updated, err := s.sessions.AppendTurn(c.Request.Context(), conv.ID, userMsg, mctx.Reply)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		SessionID: updated.ID,
		Title:     updated.Title,
		Response:  mctx.Reply.Content,
		Route:     string(mctx.Reply.Route),
		Grounded:  mctx.Reply.Grounded,
	})
}

// resolveConversation loads the targeted conversation or creates a fresh one
// when no session id was supplied. On failure it writes the error response
// and returns a nil conversation.
func (s *Server) resolveConversation(c *gin.Context, req ChatRequest) (*session.Conversation, error) {
	if req.SessionID == "" {
		conv, err := s.sessions.Create(c.Request.Context(), req.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return nil, err
		}
		return conv, nil
	}

	conv, err := s.sessions.Get(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, ollerrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "chat session not found: " + req.SessionID})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, err
	}
	return conv, nil
}

// turnError maps pipeline failures onto HTTP statuses.
func (s *Server) turnError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ollerrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ollerrors.ErrRoutingAmbiguous):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ollerrors.ErrGenerationFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListChats returns all conversations for a user, newest first.
func (s *Server) ListChats(c *gin.Context) {
	userID := c.Param("user_id")
	convs, err := s.sessions.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	chats := make([]gin.H, 0, len(convs))
	for _, conv := range convs {
		chats = append(chats, gin.H{
			"id":       conv.ID,
			"name":     conv.Title,
			"messages": conv.Messages,
		})
	}
	c.JSON(http.StatusOK, chats)
}

// RenameChat sets a conversation title.
func (s *Server) RenameChat(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.sessions.Rename(c.Request.Context(), req.SessionID, req.Name); err != nil {
		s.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ClearHistory drops a conversation's messages but keeps the conversation
// and its title.
func (s *Server) ClearHistory(c *gin.Context) {
	var req SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.sessions.ClearHistory(c.Request.Context(), req.SessionID); err != nil {
		s.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeleteChat removes a conversation entirely.
func (s *Server) DeleteChat(c *gin.Context) {
	var req SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.sessions.Delete(c.Request.Context(), req.SessionID); err != nil {
		s.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (s *Server) sessionError(c *gin.Context, err error) {
	if errors.Is(err, ollerrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// TextToSpeech synthesises Odia audio for the given text and streams WAV
// bytes back.
func (s *Server) TextToSpeech(c *gin.Context) {
	if s.speech == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech service not configured"})
		return
	}
	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audio, err := s.speech.Speak(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "audio/wav", audio)
}

// SpeechToText transcribes an uploaded audio file.
func (s *Server) SpeechToText(c *gin.Context) {
	if s.speech == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "speech service not configured"})
		return
	}

	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	if !sarvam.IsSupportedAudioFormat(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported audio format: " + file.Filename})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	transcript, err := s.speech.Transcribe(c.Request.Context(), file.Filename, f, c.PostForm("language_code"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"transcript":        transcript.Text,
		"detected_language": transcript.DetectedLanguage,
		"request_id":        transcript.RequestID,
	})
}

// Health is a liveness probe.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "OdiaLingua backend is running"})
}
