// Package store provides Store implementations for the session layer:
// in-memory for tests and single-node use, Redis for shared low-latency
// deployments, MongoDB and PostgreSQL for durable persistence.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/session"
)

// InMemoryStore keeps conversations in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*session.Conversation
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{convs: make(map[string]*session.Conversation)}
}

// Save upserts a conversation.
func (s *InMemoryStore) Save(ctx context.Context, conv *session.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("store: %w: conversation without id", ollerrors.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[conv.ID] = conv.Clone()
	return nil
}

// Get returns a conversation by ID.
func (s *InMemoryStore) Get(ctx context.Context, id string) (*session.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[id]
	if !ok {
		return nil, fmt.Errorf("store: conversation %s: %w", id, ollerrors.ErrNotFound)
	}
	return conv.Clone(), nil
}

// ListByUser returns the user's conversations, most recently updated first.
func (s *InMemoryStore) ListByUser(ctx context.Context, userID string) ([]*session.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*session.Conversation
	for _, conv := range s.convs {
		if conv.UserID == userID {
			out = append(out, conv.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes a conversation.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.convs[id]; !ok {
		return fmt.Errorf("store: conversation %s: %w", id, ollerrors.ErrNotFound)
	}
	delete(s.convs, id)
	return nil
}

// Count returns how many conversations are stored.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}
