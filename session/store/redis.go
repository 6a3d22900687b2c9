package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/session"
)

// RedisStore persists conversations as JSON values with a per-user index set.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration // 0 means no expiration
}

// NewRedisStore creates a Redis-backed conversation store.
func NewRedisStore(config *RedisConfig) *RedisStore {
	if config == nil {
		config = &RedisConfig{Addr: "localhost:6379"}
	}
	if config.Prefix == "" {
		config.Prefix = "odialingua:session:"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisStore{client: client, prefix: config.Prefix, ttl: config.TTL}
}

func (s *RedisStore) convKey(id string) string {
	return s.prefix + "conv:" + id
}

func (s *RedisStore) userKey(userID string) string {
	return s.prefix + "user:" + userID
}

// Save upserts the conversation and indexes it under its user.
func (s *RedisStore) Save(ctx context.Context, conv *session.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("store: %w: conversation without id", ollerrors.ErrInvalidInput)
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("store: marshal conversation: %w", err)
	}
	if err := s.client.Set(ctx, s.convKey(conv.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store: save conversation: %w", err)
	}
	if err := s.client.SAdd(ctx, s.userKey(conv.UserID), conv.ID).Err(); err != nil {
		return fmt.Errorf("store: index conversation: %w", err)
	}
	return nil
}

// Get returns a conversation by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*session.Conversation, error) {
	data, err := s.client.Get(ctx, s.convKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("store: conversation %s: %w", id, ollerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("store: get conversation: %w", err)
	}
	var conv session.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, fmt.Errorf("store: unmarshal conversation: %w", err)
	}
	return &conv, nil
}

// ListByUser returns the user's conversations, most recently updated first.
// Expired conversations are pruned from the index as they are found.
func (s *RedisStore) ListByUser(ctx context.Context, userID string) ([]*session.Conversation, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list conversations: %w", err)
	}
	var out []*session.Conversation
	for _, id := range ids {
		conv, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ollerrors.ErrNotFound) {
				s.client.SRem(ctx, s.userKey(userID), id)
				continue
			}
			return nil, err
		}
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Delete removes the conversation and its index entry.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	conv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.convKey(id)).Err(); err != nil {
		return fmt.Errorf("store: delete conversation: %w", err)
	}
	if err := s.client.SRem(ctx, s.userKey(conv.UserID), id).Err(); err != nil {
		return fmt.Errorf("store: unindex conversation: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
