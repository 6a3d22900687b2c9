package store

import (
	"context"
	"errors"
	"testing"
	"time"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/session"
)

var (
	_ session.Store = (*InMemoryStore)(nil)
	_ session.Store = (*RedisStore)(nil)
	_ session.Store = (*PostgresStore)(nil)
	_ session.Store = (*MongoStore)(nil)
)

func conv(id, userID string, updated time.Time) *session.Conversation {
	return &session.Conversation{
		ID:        id,
		UserID:    userID,
		Title:     "t",
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestInMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	c := conv("c1", "u1", time.Now())
	c.Messages = []*message.Message{message.NewMessage(message.RoleUser, "namaskar")}
	if err := s.Save(ctx, c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "u1" || len(got.Messages) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// The stored copy must be isolated from caller mutation.
	got.Messages[0].Content = "mutated"
	again, _ := s.Get(ctx, "c1")
	if again.Messages[0].Content != "namaskar" {
		t.Error("store leaked internal state")
	}
}

func TestInMemoryStoreListByUserOrder(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	base := time.Now()

	s.Save(ctx, conv("old", "u1", base.Add(-time.Hour)))
	s.Save(ctx, conv("new", "u1", base))
	s.Save(ctx, conv("other", "u2", base))

	got, err := s.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("order = %s, %s; want new, old", got[0].ID, got[1].ID)
	}
}

func TestInMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	s.Save(ctx, conv("c1", "u1", time.Now()))

	if err := s.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "c1"); !errors.Is(err, ollerrors.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "c1"); !errors.Is(err, ollerrors.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}
