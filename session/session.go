// Package session manages per-user conversations: titled, append-only
// message logs. Turns are only ever appended in user/assistant pairs, so a
// stored conversation always satisfies the alternation invariant and a failed
// pipeline turn leaves it untouched.
package session

import (
	"context"
	"fmt"
	"time"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
)

// Conversation is one user's chat thread.
type Conversation struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Title     string             `json:"title"`
	Messages  []*message.Message `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Append adds one message, enforcing user/assistant alternation. System
// messages are rejected; they belong to prompts, not stored history.
func (c *Conversation) Append(msg *message.Message) error {
	if msg == nil {
		return fmt.Errorf("session: %w: nil message", ollerrors.ErrInvalidInput)
	}
	if msg.Role != message.RoleUser && msg.Role != message.RoleAssistant {
		return fmt.Errorf("session: %w: role %q not storable", ollerrors.ErrInvalidInput, msg.Role)
	}
	if last := c.lastRole(); last == msg.Role {
		return fmt.Errorf("session: %w: consecutive %s turns", ollerrors.ErrInvalidInput, msg.Role)
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Conversation) lastRole() message.Role {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[len(c.Messages)-1].Role
}

// Clone deep-copies the conversation so callers can hand history to the
// pipeline without exposing the stored slice.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cloned := *c
	cloned.Messages = message.CloneMessages(c.Messages)
	return &cloned
}

// Store persists conversations. Get must return an error wrapping
// errors.ErrNotFound for unknown IDs; Save upserts.
type Store interface {
	Save(ctx context.Context, conv *Conversation) error
	Get(ctx context.Context, id string) (*Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]*Conversation, error)
	Delete(ctx context.Context, id string) error
}
