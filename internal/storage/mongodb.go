package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/johnwmail/flashclip/internal/ident"
)

// mongoClip is the document layout of a stored value
type mongoClip struct {
	ID        string    `bson:"_id"`
	Value     string    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoStore implements Store using MongoDB. A TTL index on expires_at
// removes documents; the background sweep runs about once a minute, so
// reads also filter on expires_at.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoStore connects to MongoDB and ensures the TTL index exists
func NewMongoStore(ctx context.Context, uri, dbName, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	// Test the connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	store := &MongoStore{
		client:     client,
		collection: client.Database(dbName).Collection(collection),
		now:        time.Now,
	}

	if err := store.createIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create mongodb indexes: %w", err)
	}

	return store, nil
}

// createIndexes creates the TTL index used for auto-expiration
func (m *MongoStore) createIndexes(ctx context.Context) error {
	ttlIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, err := m.collection.Indexes().CreateOne(ctx, ttlIndex)
	return err
}

// liveFilter matches key only while it has not expired
func (m *MongoStore) liveFilter(key string) bson.M {
	return bson.M{
		"_id":        key,
		"expires_at": bson.M{"$gt": m.now()},
	}
}

// Put saves the value, replacing any previous document with the same key
func (m *MongoStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	doc := mongoClip{
		ID:        key,
		Value:     string(value),
		ExpiresAt: m.now().Add(ttl),
	}
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb put %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Get retrieves a live value by key
func (m *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc mongoClip
	err := m.collection.FindOne(ctx, m.liveFilter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb get %s: %w", ident.Redact(key), err)
	}
	return []byte(doc.Value), nil
}

// Take removes a live document and returns its value
func (m *MongoStore) Take(ctx context.Context, key string) ([]byte, error) {
	var doc mongoClip
	err := m.collection.FindOneAndDelete(ctx, m.liveFilter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb take %s: %w", ident.Redact(key), err)
	}
	return []byte(doc.Value), nil
}

// Delete removes a document by key
func (m *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongodb delete %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Close closes the MongoDB connection
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return m.client.Disconnect(ctx)
}
