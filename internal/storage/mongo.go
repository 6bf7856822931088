package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo stores each blob as one document {_id: key, value: <bytes>}.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type blobDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoOptions configures DialMongo.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// DialMongo connects and pings the deployment.
func DialMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &Mongo{
		client:     client,
		collection: client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

func (m *Mongo) Get(ctx context.Context, key string) ([]byte, error) {
	var doc blobDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", key, err)
	}
	return doc.Value, nil
}

func (m *Mongo) Put(ctx context.Context, key string, value []byte) error {
	doc := blobDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace %s: %w", key, err)
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", key, err)
	}
	return nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
