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
	"nexus-backend/internal/rbac"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) Insert(ctx context.Context, u *models.User) error {
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.New(apperr.Conflict, "email already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// ApplyApprovedProfile copies the fields an approved application contributes
// to the profile. Never touches roles or membership.
func (r *UserRepository) ApplyApprovedProfile(ctx context.Context, id bson.ObjectID, app *models.Application) error {
	set := bson.M{
		"program":    app.Program,
		"updated_at": time.Now().UTC(),
	}
	if app.Portfolio != "" {
		set["portfolio"] = app.Portfolio
	}
	if len(app.Skills) > 0 {
		set["skills"] = app.Skills
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("apply approved profile: %w", err)
	}
	return nil
}

func (r *UserRepository) AddRole(ctx context.Context, id bson.ObjectID, role rbac.Role) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"roles": role},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// RemoveRole pulls the role and, if that left the set empty, falls back to
// the base role. A user never ends up with zero roles.
func (r *UserRepository) RemoveRole(ctx context.Context, id bson.ObjectID, role rbac.Role) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"roles": role},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("remove role: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	_, err = r.col.UpdateOne(ctx,
		bson.M{"_id": id, "roles": bson.M{"$size": 0}},
		bson.M{"$set": bson.M{"roles": []rbac.Role{rbac.BaseRole}}},
	)
	if err != nil {
		return fmt.Errorf("restore base role: %w", err)
	}
	return nil
}

func (r *UserRepository) SetRoles(ctx context.Context, id bson.ObjectID, roles []rbac.Role) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"roles": roles, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("set roles: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return nil
}

// PromoteToMember attaches membership and stats and adds the club-member role
// in one atomic update. The role guard in the filter makes a concurrent
// double-promotion lose cleanly: matched==0 means the user is already a
// member, or gone; callers re-fetch to tell the two apart.
func (r *UserRepository) PromoteToMember(ctx context.Context, id bson.ObjectID, info models.MembershipInfo, stats models.MemberStats) (bool, error) {
	filter := bson.M{"_id": id, "roles": bson.M{"$ne": rbac.RoleClubMember}}
	update := bson.M{
		"$addToSet": bson.M{"roles": rbac.RoleClubMember},
		"$set": bson.M{
			"membership":   info,
			"member_stats": stats,
			"updated_at":   time.Now().UTC(),
		},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// unique index on membership.member_id; with the atomic counter
			// this should not happen, but surface it as a retryable conflict
			return false, apperr.New(apperr.ConcurrentModification, "member id collision")
		}
		return false, fmt.Errorf("promote user: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *UserRepository) SetMembershipField(ctx context.Context, id bson.ObjectID, field string, value any) error {
	filter := bson.M{"_id": id, "membership": bson.M{"$exists": true}}
	update := bson.M{"$set": bson.M{
		"membership." + field: value,
		"updated_at":          time.Now().UTC(),
	}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "user is not a club member")
	}
	return nil
}

type MemberFilter struct {
	Status models.MemberStatus
	Level  models.MemberLevel
	Limit  int64
}

func (r *UserRepository) ListMembers(ctx context.Context, f MemberFilter) ([]models.User, error) {
	filter := bson.M{"membership": bson.M{"$exists": true}}
	if f.Status != "" {
		filter["membership.status"] = f.Status
	}
	if f.Level != "" {
		filter["membership.level"] = f.Level
	}
	opts := options.Find().SetSort(bson.D{{Key: "membership.member_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return users, nil
}

// PromotionHistory lists members newest-promotion-first.
func (r *UserRepository) PromotionHistory(ctx context.Context, limit int64) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "membership.promoted_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"membership": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("promotion history: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode promotion history: %w", err)
	}
	return users, nil
}
