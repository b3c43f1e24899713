package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clearcut/entitlement-system/internal/core/domain"
)

const usageCollection = "usage_records"

type MongoUsageRepository struct {
	coll *mongo.Collection
}

func NewUsageRepository(db *mongo.Database) *MongoUsageRepository {
	return &MongoUsageRepository{coll: db.Collection(usageCollection)}
}

type mongoUsageRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Action    string             `bson:"action"`
	Timestamp int64              `bson:"timestamp"`
	Metadata  bson.M             `bson:"metadata,omitempty"`
}

func (r *MongoUsageRepository) Insert(ctx context.Context, record *domain.UsageRecord) (*domain.UsageRecord, error) {
	doc := mongoUsageRecord{
		UserID:    record.UserID,
		Action:    record.Action,
		Timestamp: record.Timestamp.Unix(),
		Metadata:  bson.M(record.Metadata),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert usage record: %w", err)
	}

	inserted := *record
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		inserted.ID = oid.Hex()
	}
	return &inserted, nil
}

// ListByUser returns the full log in insertion order; analytics relies on the
// first-seen ordering of dates.
func (r *MongoUsageRepository) ListByUser(ctx context.Context, userID string) ([]domain.UsageRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	defer cur.Close(ctx)

	var records []domain.UsageRecord
	for cur.Next(ctx) {
		var mu mongoUsageRecord
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode usage record: %w", err)
		}
		records = append(records, domain.UsageRecord{
			ID:        mu.ID.Hex(),
			UserID:    mu.UserID,
			Action:    mu.Action,
			Timestamp: time.Unix(mu.Timestamp, 0).UTC(),
			Metadata:  map[string]any(mu.Metadata),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list usage records: %w", err)
	}
	return records, nil
}
