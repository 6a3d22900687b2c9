package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Generate(ctx context.Context, messages []*message.Message) (*message.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return message.NewMessage(message.RoleAssistant, s.response), nil
}

func (s *stubLLM) SetTemperature(float64) {}
func (s *stubLLM) SetMaxTokens(int64)     {}
func (s *stubLLM) SetModel(string)        {}

// memStore is a minimal in-package store double; the real implementations
// live in session/store.
type memStore struct {
	convs map[string]*Conversation
}

func newMemStore() *memStore {
	return &memStore{convs: make(map[string]*Conversation)}
}

func (s *memStore) Save(ctx context.Context, conv *Conversation) error {
	s.convs[conv.ID] = conv.Clone()
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*Conversation, error) {
	conv, ok := s.convs[id]
	if !ok {
		return nil, ollerrors.ErrNotFound
	}
	return conv.Clone(), nil
}

func (s *memStore) ListByUser(ctx context.Context, userID string) ([]*Conversation, error) {
	var out []*Conversation
	for _, conv := range s.convs {
		if conv.UserID == userID {
			out = append(out, conv.Clone())
		}
	}
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.convs[id]; !ok {
		return ollerrors.ErrNotFound
	}
	delete(s.convs, id)
	return nil
}

func TestConversationAppendAlternation(t *testing.T) {
	conv := &Conversation{ID: "c1", UserID: "u1"}

	if err := conv.Append(message.NewMessage(message.RoleUser, "namaskar")); err != nil {
		t.Fatalf("first user turn: %v", err)
	}
	if err := conv.Append(message.NewMessage(message.RoleUser, "again")); err == nil {
		t.Fatal("consecutive user turns must be rejected")
	}
	if err := conv.Append(message.NewAssistantMessage("ନମସ୍କାର", message.RouteResponse, false)); err != nil {
		t.Fatalf("assistant turn: %v", err)
	}
	if err := conv.Append(message.NewMessage(message.RoleSystem, "prompt")); err == nil {
		t.Fatal("system messages must not be stored")
	}
}

func TestManagerAppendTurnTitlesFirstTurn(t *testing.T) {
	ctx := context.Background()
	mgr, err := NewManager(newMemStore(), NewTitler(&stubLLM{response: "ଓଡ଼ିଶା ମୁଖ୍ୟମନ୍ତ୍ରୀ ପ୍ରସଙ୍ଗ"}))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	conv, err := mgr.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user := message.NewMessage(message.RoleUser, "Odisha ra CM kie?")
	assistant := message.NewAssistantMessage("ମୋହନ ଚରଣ ମାଝୀ।", message.RouteResearch, true)
	updated, err := mgr.AppendTurn(ctx, conv.ID, user, assistant)
	if err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if len(updated.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(updated.Messages))
	}
	if updated.Title != "ଓଡ଼ିଶା ମୁଖ୍ୟମନ୍ତ୍ରୀ ପ୍ରସଙ୍ଗ" {
		t.Errorf("title = %q", updated.Title)
	}

	// Second turn keeps the title.
	_, err = mgr.AppendTurn(ctx, conv.ID,
		message.NewMessage(message.RoleUser, "dhanyabad"),
		message.NewAssistantMessage("ସ୍ୱାଗତ।", message.RouteResponse, false))
	if err != nil {
		t.Fatalf("second AppendTurn: %v", err)
	}
	got, _ := mgr.Get(ctx, conv.ID)
	if got.Title != "ଓଡ଼ିଶା ମୁଖ୍ୟମନ୍ତ୍ରୀ ପ୍ରସଙ୍ଗ" {
		t.Errorf("title changed on second turn: %q", got.Title)
	}
}

func TestManagerAppendTurnRejectsBrokenPair(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	mgr, _ := NewManager(store, nil)
	conv, _ := mgr.Create(ctx, "user-1")

	_, err := mgr.AppendTurn(ctx, conv.ID,
		message.NewAssistantMessage("x", message.RouteResponse, false),
		message.NewAssistantMessage("y", message.RouteResponse, false))
	if err == nil {
		t.Fatal("assistant-first pair must be rejected")
	}
	got, _ := mgr.Get(ctx, conv.ID)
	if len(got.Messages) != 0 {
		t.Errorf("failed append must not persist partial state, got %d messages", len(got.Messages))
	}
}

func TestManagerRenameAndClear(t *testing.T) {
	ctx := context.Background()
	mgr, _ := NewManager(newMemStore(), nil)
	conv, _ := mgr.Create(ctx, "user-1")

	if err := mgr.Rename(ctx, conv.ID, "ନୂଆ ନାମ"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	_, err := mgr.AppendTurn(ctx, conv.ID,
		message.NewMessage(message.RoleUser, "namaskar"),
		message.NewAssistantMessage("ନମସ୍କାର।", message.RouteResponse, false))
	if err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if err := mgr.ClearHistory(ctx, conv.ID); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	got, _ := mgr.Get(ctx, conv.ID)
	if len(got.Messages) != 0 {
		t.Errorf("history not cleared: %d messages", len(got.Messages))
	}
	if got.Title != "ନୂଆ ନାମ" {
		t.Errorf("clear must keep the title, got %q", got.Title)
	}
}

func TestManagerDelete(t *testing.T) {
	ctx := context.Background()
	mgr, _ := NewManager(newMemStore(), nil)
	conv, _ := mgr.Create(ctx, "user-1")

	if err := mgr.Delete(ctx, conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := mgr.Get(ctx, conv.ID); !errors.Is(err, ollerrors.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestTitlerFallbackTruncates(t *testing.T) {
	titler := NewTitler(&stubLLM{err: errors.New("down")})
	long := strings.Repeat("ଓଡ଼ିଶା ", 20)

	title := titler.Title(context.Background(), long)
	if len([]rune(title)) > maxTitleRunes+3 {
		t.Errorf("title too long: %q", title)
	}
	if !strings.HasPrefix(title, "ଓଡ଼ିଶା") {
		t.Errorf("fallback should reuse the message text: %q", title)
	}
}
