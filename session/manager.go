package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/pkg/logging"
)

// Manager coordinates conversation lifecycle on top of a Store. Mutating
// operations take a per-conversation lock so concurrent turns on the same
// thread serialize; different conversations never contend.
type Manager struct {
	store  Store
	titler *Titler
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a manager over the given store. The titler is optional.
func NewManager(store Store, titler *Titler) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session: %w: nil store", ollerrors.ErrInvalidInput)
	}
	return &Manager{
		store:  store,
		titler: titler,
		logger: logging.WithComponent("session"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

func (m *Manager) lock(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Create starts an empty conversation for the user.
func (m *Manager) Create(ctx context.Context, userID string) (*Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("session: %w: empty user id", ollerrors.ErrInvalidInput)
	}
	now := time.Now()
	conv := &Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     "ନୂଆ କଥାବାର୍ତ୍ତା",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	return conv.Clone(), nil
}

// Get returns a copy of the conversation.
func (m *Manager) Get(ctx context.Context, id string) (*Conversation, error) {
	conv, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return conv.Clone(), nil
}

// List returns the user's conversations, most recently updated first.
func (m *Manager) List(ctx context.Context, userID string) ([]*Conversation, error) {
	convs, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*Conversation, 0, len(convs))
	for _, c := range convs {
		out = append(out, c.Clone())
	}
	return out, nil
}

// AppendTurn atomically appends one user/assistant pair. The first turn also
// titles the conversation. Either both messages land or neither does.
func (m *Manager) AppendTurn(ctx context.Context, id string, user, assistant *message.Message) (*Conversation, error) {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	conv, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	firstTurn := len(conv.Messages) == 0

	if err := conv.Append(user); err != nil {
		return nil, err
	}
	if err := conv.Append(assistant); err != nil {
		return nil, err
	}
	if firstTurn && m.titler != nil && user != nil {
		conv.Title = m.titler.Title(ctx, user.Content)
	}
	if err := m.store.Save(ctx, conv); err != nil {
		return nil, fmt.Errorf("session: append turn: %w", err)
	}
	return conv.Clone(), nil
}

// Rename sets a new conversation title.
func (m *Manager) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("session: %w: empty title", ollerrors.ErrInvalidInput)
	}
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	conv, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	conv.Title = clampTitle(title)
	conv.UpdatedAt = time.Now()
	return m.store.Save(ctx, conv)
}

// ClearHistory removes all messages but keeps the conversation and title.
func (m *Manager) ClearHistory(ctx context.Context, id string) error {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	conv, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	conv.Messages = nil
	conv.UpdatedAt = time.Now()
	return m.store.Save(ctx, conv)
}

// Delete removes the conversation entirely.
func (m *Manager) Delete(ctx context.Context, id string) error {
	l := m.lock(id)
	l.Lock()
	defer l.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	m.logger.Info("conversation deleted", "conversation_id", id)
	return nil
}
