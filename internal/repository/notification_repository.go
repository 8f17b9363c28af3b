package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"nexus-backend/internal/apperr"
	"nexus-backend/internal/models"
)

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection("notifications")}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	res, err := r.col.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

type NotificationFilter struct {
	UnreadOnly bool
	Type       models.NotiType
	Limit      int64
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID bson.ObjectID, f NotificationFilter) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if f.UnreadOnly {
		filter["read"] = false
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID bson.ObjectID) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user_id": userID, "read": false})
	if err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}

// MarkReadIfUnread flips read on, scoped to the owning user. Returns nil
// without error when no unread record matched; the service decides whether
// that means already-read or not found.
func (r *NotificationRepository) MarkReadIfUnread(ctx context.Context, userID, id bson.ObjectID) (*models.Notification, error) {
	filter := bson.M{"_id": id, "user_id": userID, "read": false}
	update := bson.M{"$set": bson.M{"read": true, "read_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return &n, nil
}

// FindOwned fetches one notification scoped to its owner.
func (r *NotificationRepository) FindOwned(ctx context.Context, userID, id bson.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := r.col.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.NotFound, "notification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID bson.ObjectID) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, "notification not found")
	}
	return nil
}

func (r *NotificationRepository) DeleteRead(ctx context.Context, userID bson.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID, "read": true})
	if err != nil {
		return 0, fmt.Errorf("delete read notifications: %w", err)
	}
	return res.DeletedCount, nil
}
