package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sweetpotato0/odialingua/compose"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pipeline"
	"github.com/sweetpotato0/odialingua/route"
	"github.com/sweetpotato0/odialingua/session"
	"github.com/sweetpotato0/odialingua/session/store"
)

type scriptedLLM struct {
	script []string
	calls  int
}

func (s *scriptedLLM) Generate(ctx context.Context, messages []*message.Message) (*message.Message, error) {
	s.calls++
	idx := s.calls - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	return message.NewMessage(message.RoleAssistant, s.script[idx]), nil
}

func (s *scriptedLLM) SetTemperature(float64) {}
func (s *scriptedLLM) SetMaxTokens(int64)     {}
func (s *scriptedLLM) SetModel(string)        {}

// newTestServer builds a server whose pipeline answers knowledge turns from
// the scripted model. Call order in a first turn: router verdict, composer
// reply, then the titler reusing the last scripted entry.
func newTestServer(t *testing.T, script []string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	llm := &scriptedLLM{script: script}
	orch, err := pipeline.NewOrchestrator(route.NewClassifier(llm), nil, nil, compose.NewComposer(llm))
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	mgr, err := session.NewManager(store.NewInMemoryStore(), session.NewTitler(llm))
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	srv, err := New(orch, mgr)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatCreatesSessionAndPersistsTurn(t *testing.T) {
	srv := newTestServer(t, []string{
		`{"next_agent":"response"}`,
		"ଓଡ଼ିଆ ସାହିତ୍ୟ ବିଷୟରେ ଉତ୍ତର।",
	})
	r := srv.Router()

	w := doJSON(t, r, http.MethodPost, "/chat", ChatRequest{
		UserID:  "user-1",
		Message: "ଓଡ଼ିଆ ସାହିତ୍ୟ ବିଷୟରେ କୁହ",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("session id missing")
	}
	if resp.Route != "response" {
		t.Errorf("route = %q, want response", resp.Route)
	}
	if resp.Grounded {
		t.Error("knowledge turn must not be grounded")
	}

	list := doJSON(t, r, http.MethodGet, "/chats/user-1", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	var chats []struct {
		ID       string             `json:"id"`
		Name     string             `json:"name"`
		Messages []*message.Message `json:"messages"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &chats); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("chats = %d, want 1", len(chats))
	}
	if len(chats[0].Messages) != 2 {
		t.Errorf("messages = %d, want user and assistant pair", len(chats[0].Messages))
	}
}

func TestChatUnknownSessionReturns404(t *testing.T) {
	srv := newTestServer(t, []string{`{"next_agent":"response"}`, "ଉତ୍ତର।"})
	w := doJSON(t, srv.Router(), http.MethodPost, "/chat", ChatRequest{
		SessionID: "missing",
		UserID:    "user-1",
		Message:   "ନମସ୍କାର",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestChatRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, []string{`{"next_agent":"response"}`, "ଉତ୍ତର।"})
	w := doJSON(t, srv.Router(), http.MethodPost, "/chat", map[string]string{"user_id": "u"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRenameAndDeleteChat(t *testing.T) {
	srv := newTestServer(t, []string{
		`{"next_agent":"response"}`,
		"ଉତ୍ତର।",
	})
	r := srv.Router()

	w := doJSON(t, r, http.MethodPost, "/chat", ChatRequest{UserID: "u", Message: "ନମସ୍କାର"})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d", w.Code)
	}
	var resp ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if w := doJSON(t, r, http.MethodPost, "/rename-chat", RenameRequest{SessionID: resp.SessionID, Name: "ମୋ କଥା"}); w.Code != http.StatusOK {
		t.Errorf("rename status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/delete-chat", SessionActionRequest{SessionID: resp.SessionID}); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodPost, "/delete-chat", SessionActionRequest{SessionID: resp.SessionID}); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, []string{"ok"})
	w := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSpeechEndpointsUnavailableWithoutClient(t *testing.T) {
	srv := newTestServer(t, []string{"ok"})
	w := doJSON(t, srv.Router(), http.MethodPost, "/text-to-speech", TTSRequest{Text: "ନମସ୍କାର"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
