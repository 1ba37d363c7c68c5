package record

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists records in a MongoDB collection, one document per key.
type MongoStore struct {
	coll *mongo.Collection
}

type recordDoc struct {
	Key  string   `bson:"_id"`
	Data bson.Raw `bson:"data"`
}

// NewMongoStore returns a Store over the "records" collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("records")}
}

func (s *MongoStore) ReadRecord(ctx context.Context, key string, v interface{}) error {
	var doc recordDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read record %q: %w", key, err)
	}
	if err := bson.Unmarshal(doc.Data, v); err != nil {
		return fmt.Errorf("failed to decode record %q: %w", key, err)
	}
	return nil
}

func (s *MongoStore) WriteRecord(ctx context.Context, key string, v interface{}) error {
	data, err := bson.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record %q: %w", key, err)
	}
	_, err = s.coll.ReplaceOne(ctx,
		bson.M{"_id": key},
		recordDoc{Key: key, Data: data},
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write record %q: %w", key, err)
	}
	return nil
}
