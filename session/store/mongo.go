package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ollerrors "github.com/sweetpotato0/odialingua/errors"
	"github.com/sweetpotato0/odialingua/message"
	"github.com/sweetpotato0/odialingua/session"
)

// MongoStore persists conversations in MongoDB.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultMongoConfig returns local development defaults.
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "odialingua",
		Collection: "conversations",
	}
}

// mongoConversation is the internal document shape.
type mongoConversation struct {
	ID        string             `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Title     string             `bson:"title"`
	Messages  []*message.Message `bson:"messages"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and ensures indexes.
func NewMongoStore(config *MongoConfig) (*MongoStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("store: connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("store: ping MongoDB: %w", err)
	}

	collection := client.Database(config.Database).Collection(config.Collection)
	s := &MongoStore{client: client, collection: collection}
	if err := s.createIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("store: create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}
	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// Save upserts the conversation.
func (s *MongoStore) Save(ctx context.Context, conv *session.Conversation) error {
	if conv == nil || conv.ID == "" {
		return fmt.Errorf("store: %w: conversation without id", ollerrors.ErrInvalidInput)
	}
	doc := mongoConversation{
		ID:        conv.ID,
		UserID:    conv.UserID,
		Title:     conv.Title,
		Messages:  conv.Messages,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": conv.ID}, doc, opts); err != nil {
		return fmt.Errorf("store: save conversation: %w", err)
	}
	return nil
}

// Get returns a conversation by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*session.Conversation, error) {
	var doc mongoConversation
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("store: conversation %s: %w", id, ollerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("store: get conversation: %w", err)
	}
	return docToConversation(doc), nil
}

// ListByUser returns the user's conversations, most recently updated first.
func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]*session.Conversation, error) {
	cursor, err := s.collection.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"updated_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("store: list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoConversation
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: decode conversations: %w", err)
	}
	out := make([]*session.Conversation, len(docs))
	for i, doc := range docs {
		out[i] = docToConversation(doc)
	}
	return out, nil
}

// Delete removes the conversation.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: delete conversation: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("store: conversation %s: %w", id, ollerrors.ErrNotFound)
	}
	return nil
}

// Ping checks the MongoDB connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the MongoDB client.
func (s *MongoStore) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.client.Disconnect(ctx)
}

func docToConversation(doc mongoConversation) *session.Conversation {
	return &session.Conversation{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Title:     doc.Title,
		Messages:  doc.Messages,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
