package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rasayana/storefront/internal/domain"
)

type stateDocument struct {
	OwnerID   string    `bson:"owner_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func NewMongoAdapter(db *mongo.Database) *MongoAdapter {
	return &MongoAdapter{
		collection: db.Collection("states"),
	}
}

// MongoAdapter stores one document per owner with the serialized blob as an
// opaque payload, so the wire format stays identical across backends.
type MongoAdapter struct {
	collection *mongo.Collection
}

func (m MongoAdapter) Read(ctx context.Context, ownerID string) (*domain.PersistedState, error) {
	var doc stateDocument

	filter := bson.M{"owner_id": ownerID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	var state domain.PersistedState
	if err2 := json.Unmarshal(doc.Payload, &state); err2 != nil {
		return nil, fmt.Errorf("unmarshal state failed: %w", err2)
	}

	return &state, nil
}

func (m MongoAdapter) Write(ctx context.Context, ownerID string, state *domain.PersistedState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state failed: %w", err)
	}

	filter := bson.M{"owner_id": ownerID}
	update := bson.M{"$set": stateDocument{
		OwnerID:   ownerID,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert state: %w", err)
	}
	return nil
}

func (m MongoAdapter) Delete(ctx context.Context, ownerID string) error {
	filter := bson.M{"owner_id": ownerID}
	if _, err := m.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

func (m *MongoAdapter) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// ConnectMongoDB opens a client with sane pool limits and verifies the
// connection with a ping.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
