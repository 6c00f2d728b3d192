// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danielhkuo/ward-admin/models"
)

// MongoStore maps each named collection onto a MongoDB collection. Documents
// use the assigned record ID as _id and carry createdAt/updatedAt stamps.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
	now      func() time.Time
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:   client,
		database: client.Database(dbName),
		now:      time.Now,
	}, nil
}

func (m *MongoStore) Get(ctx context.Context, collection string) (map[string]models.Fields, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}

	cursor, err := m.database.Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	out := make(map[string]models.Fields)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}

		id, ok := documentID(doc["_id"])
		if !ok {
			slog.Warn("skipping document with unsupported _id", "collection", collection)
			continue
		}
		delete(doc, "_id")
		delete(doc, models.FieldCreatedAt)
		delete(doc, models.FieldUpdatedAt)

		fields := make(models.Fields, len(doc))
		for k, v := range doc {
			if dt, ok := v.(primitive.DateTime); ok {
				v = dt.Time()
			}
			n, err := models.NormalizeValue(v)
			if err != nil {
				// Nested values are not part of the record model.
				continue
			}
			fields[k] = n
		}
		out[id] = fields
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func (m *MongoStore) Push(ctx context.Context, collection string, fields models.Fields) (string, error) {
	if err := checkCollection(collection); err != nil {
		return "", err
	}
	id, err := NewID()
	if err != nil {
		return "", err
	}

	_, err = m.database.Collection(collection).InsertOne(ctx, m.document(id, fields))
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return id, nil
}

func (m *MongoStore) Update(ctx context.Context, collection, id string, fields models.Fields) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	set := bson.M{models.FieldUpdatedAt: m.now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := m.database.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) Remove(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	res, err := m.database.Collection(collection).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) InsertMany(ctx context.Context, collection string, records []models.Fields) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, 0, len(records))
	for _, fields := range records {
		id, err := NewID()
		if err != nil {
			return 0, err
		}
		docs = append(docs, m.document(id, fields))
	}

	res, err := m.database.Collection(collection).InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) document(id string, fields models.Fields) bson.M {
	doc := make(bson.M, len(fields)+3)
	for k, v := range fields {
		doc[k] = v
	}
	now := m.now().UTC()
	doc["_id"] = id
	doc[models.FieldCreatedAt] = now
	doc[models.FieldUpdatedAt] = now
	return doc
}

// idFilter matches a record ID as given and, when it is an ObjectID hex
// string, as the ObjectID Get reported it from. Documents inserted outside
// this store keep their driver-assigned ObjectIDs.
func idFilter(id string) bson.M {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{"_id": id}
	}
	return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
}

func documentID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, true
	case primitive.ObjectID:
		return id.Hex(), true
	default:
		return "", false
	}
}
