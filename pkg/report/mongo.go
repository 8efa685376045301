package report

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore keeps run history in a MongoDB collection, one document
// per report. It is optional: the pipeline works without any store,
// and the CLI only wires one up when asked to.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// ping before returning.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Save inserts one report.
func (s *MongoStore) Save(ctx context.Context, r *Report) error {
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("save report %s: %w", r.RunID, err)
	}
	return nil
}

// Latest returns the most recent report for a source. Returns an error
// wrapping [mongo.ErrNoDocuments] when the source has no history yet.
func (s *MongoStore) Latest(ctx context.Context, source string) (*Report, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var r Report
	if err := s.coll.FindOne(ctx, bson.M{"source": source}, opts).Decode(&r); err != nil {
		return nil, fmt.Errorf("load latest report for %s: %w", source, err)
	}
	return &r, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
