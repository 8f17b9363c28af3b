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

type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{col: db.Collection("applications")}
}

func (r *ApplicationRepository) Insert(ctx context.Context, app *models.Application) error {
	res, err := r.col.InsertOne(ctx, app)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// unique index on user_id: one application per user
			return apperr.New(apperr.Conflict, "user already has an application")
		}
		return fmt.Errorf("insert application: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		app.ID = oid
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Application, error) {
	var app models.Application
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.NotFound, "application not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) FindByUser(ctx context.Context, userID bson.ObjectID) (*models.Application, error) {
	var app models.Application
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.NotFound, "application not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find application by user: %w", err)
	}
	return &app, nil
}

type ApplicationFilter struct {
	Status models.AppStatus
	Limit  int64
}

func (r *ApplicationRepository) List(ctx context.Context, f ApplicationFilter) ([]models.Application, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer cur.Close(ctx)

	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}
	return apps, nil
}

// Transition moves the application to a new state with a compare-and-swap on
// the statuses it may legally leave from. Losing the race (or hitting a state
// that changed since the caller's pre-check) reports ConcurrentModification.
func (r *ApplicationRepository) Transition(ctx context.Context, id bson.ObjectID, from []models.AppStatus, set bson.M) (*models.Application, error) {
	set["updated_at"] = time.Now().UTC()
	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var app models.Application
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.ConcurrentModification, "application was modified concurrently")
	}
	if err != nil {
		return nil, fmt.Errorf("transition application: %w", err)
	}
	return &app, nil
}

// UpdateOwn patches a pending application in place. The status guard is part
// of the filter so a review starting mid-flight makes the patch a no-op.
func (r *ApplicationRepository) UpdateOwn(ctx context.Context, userID bson.ObjectID, set bson.M) (*models.Application, error) {
	set["updated_at"] = time.Now().UTC()
	filter := bson.M{"user_id": userID, "status": models.AppPending}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var app models.Application
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.ConcurrentModification, "application was modified concurrently")
	}
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return &app, nil
}

// AddDocument pushes a document onto the owner's application unless a
// document of the same type is already there.
func (r *ApplicationRepository) AddDocument(ctx context.Context, userID bson.ObjectID, doc models.Document) (*models.Application, error) {
	filter := bson.M{
		"user_id":        userID,
		"documents.type": bson.M{"$ne": doc.Type},
	}
	update := bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var app models.Application
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.Conflict, "document of this type already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}
	return &app, nil
}

// PullPendingDocument removes a document by type, but only while it is still
// pending. Returns false when nothing matched.
func (r *ApplicationRepository) PullPendingDocument(ctx context.Context, userID bson.ObjectID, docType string) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"documents": bson.M{"type": docType, "status": models.DocPending}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// SetDocumentStatus flips one pending embedded document to verified or
// rejected. fields are document-level keys ("status", "reviewed_at", ...).
// Returns false when the document is absent or no longer pending.
func (r *ApplicationRepository) SetDocumentStatus(ctx context.Context, appID bson.ObjectID, docType string, fields bson.M) (bool, error) {
	filter := bson.M{
		"_id": appID,
		"documents": bson.M{"$elemMatch": bson.M{
			"type":   docType,
			"status": models.DocPending,
		}},
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set["documents.$."+k] = v
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("set document status: %w", err)
	}
	return res.ModifiedCount > 0, nil
}
