package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index describes a single-field index to create at startup.
type Index struct {
	Collection string
	Field      string
	Unique     bool
	Descending bool
}

// ConnectMongoDB opens a client and verifies the connection with a ping.
func ConnectMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connection failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the given indexes. Existing identical indexes are left alone.
func EnsureIndexes(ctx context.Context, database *mongo.Database, indexes []Index) error {
	for _, idx := range indexes {
		order := 1
		if idx.Descending {
			order = -1
		}
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: idx.Field, Value: order}},
			Options: options.Index().SetUnique(idx.Unique),
		}
		if _, err := database.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index %s.%s: %w", idx.Collection, idx.Field, err)
		}
	}
	return nil
}
