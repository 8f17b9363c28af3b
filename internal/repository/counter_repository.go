package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CounterRepository hands out member-id sequence numbers. One document per
// year, bumped with a single $inc upsert, so two concurrent promotions can
// never read the same value.
type CounterRepository struct {
	col *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) *CounterRepository {
	return &CounterRepository{col: db.Collection("member_counters")}
}

// NextMemberSeq atomically increments and returns the sequence for a year.
// The first call of a new year upserts {seq: 1}, which resets the numbering.
func (r *CounterRepository) NextMemberSeq(ctx context.Context, year int) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int `bson:"seq"`
	}
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": year},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next member seq: %w", err)
	}
	return doc.Seq, nil
}
