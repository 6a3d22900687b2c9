package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/session"
)

// PostgresStore persists conversations in PostgreSQL with the message log as
// a JSONB column.
type PostgresStore struct {
	db *sql.DB
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultPostgresConfig returns local development defaults.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "odialingua",
		SSLMode:  "disable",
	}
}

// NewPostgresStore connects and ensures the conversations table exists.
func NewPostgresStore(config *PostgresConfig) (*PostgresStore, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping PostgreSQL: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("store: create table: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		title TEXT NOT NULL,
		messages JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user_id ON conversations(user_id);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON conversations(updated_at);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Save upserts the conversation.
func (s *PostgresStore) Save(ctx context.Context, conv *session.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("store: %w: conversation without id", ollerrors.ErrInvalidInput)
	}
	messagesJSON, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("store: marshal messages: %w", err)
	}
	query := `
	INSERT INTO conversations (id, user_id, title, messages, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		messages = EXCLUDED.messages,
		updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		conv.ID, conv.UserID, conv.Title, string(messagesJSON), conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: save conversation: %w", err)
	}
	return nil
}

// Get returns a conversation by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*session.Conversation, error) {
	query := `SELECT id, user_id, title, messages, created_at, updated_at FROM conversations WHERE id = $1`
	conv, err := scanConversation(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("store: conversation %s: %w", id, ollerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("store: get conversation: %w", err)
	}
	return conv, nil
}

// ListByUser returns the user's conversations, most recently updated first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]*session.Conversation, error) {
	query := `SELECT id, user_id, title, messages, created_at, updated_at
	          FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list conversations: %w", err)
	}
	defer rows.Close()

	var out []*session.Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan conversation: %w", err)
		}
		out = append(out, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate conversations: %w", err)
	}
	return out, nil
}

// Delete removes the conversation.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("store: delete conversation: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("store: conversation %s: %w", id, ollerrors.ErrNotFound)
	}
	return nil
}

// Ping checks the PostgreSQL connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the PostgreSQL connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*session.Conversation, error) {
	conv := &session.Conversation{}
	var messagesJSON string
	if err := row.Scan(&conv.ID, &conv.UserID, &conv.Title, &messagesJSON, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return nil, err
	}
	conv.Messages = make([]*message.Message, 0)
	if messagesJSON != "" && messagesJSON != "[]" {
		if err := json.Unmarshal([]byte(messagesJSON), &conv.Messages); err != nil {
			return nil, fmt.Errorf("unmarshal messages: %w", err)
		}
	}
	return conv, nil
}
