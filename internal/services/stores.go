package services

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/internal/models"
	"nexus-backend/internal/rbac"
	"nexus-backend/internal/repository"
)

// Narrow views of the repository layer, one per collection. Services accept
// these instead of the concrete repositories so the business rules can be
// driven by in-memory fakes in tests.

type ApplicationStore interface {
	Insert(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Application, error)
	FindByUser(ctx context.Context, userID bson.ObjectID) (*models.Application, error)
	List(ctx context.Context, f repository.ApplicationFilter) ([]models.Application, error)
	Transition(ctx context.Context, id bson.ObjectID, from []models.AppStatus, set bson.M) (*models.Application, error)
	UpdateOwn(ctx context.Context, userID bson.ObjectID, set bson.M) (*models.Application, error)
	AddDocument(ctx context.Context, userID bson.ObjectID, doc models.Document) (*models.Application, error)
	PullPendingDocument(ctx context.Context, userID bson.ObjectID, docType string) (bool, error)
	SetDocumentStatus(ctx context.Context, appID bson.ObjectID, docType string, fields bson.M) (bool, error)
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ApplyApprovedProfile(ctx context.Context, id bson.ObjectID, app *models.Application) error
	AddRole(ctx context.Context, id bson.ObjectID, role rbac.Role) error
	RemoveRole(ctx context.Context, id bson.ObjectID, role rbac.Role) error
	SetRoles(ctx context.Context, id bson.ObjectID, roles []rbac.Role) error
	PromoteToMember(ctx context.Context, id bson.ObjectID, info models.MembershipInfo, stats models.MemberStats) (bool, error)
	SetMembershipField(ctx context.Context, id bson.ObjectID, field string, value any) error
	ListMembers(ctx context.Context, f repository.MemberFilter) ([]models.User, error)
	PromotionHistory(ctx context.Context, limit int64) ([]models.User, error)
}

type CounterStore interface {
	NextMemberSeq(ctx context.Context, year int) (int, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID bson.ObjectID, f repository.NotificationFilter) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID bson.ObjectID) (int64, error)
	MarkReadIfUnread(ctx context.Context, userID, id bson.ObjectID) (*models.Notification, error)
	FindOwned(ctx context.Context, userID, id bson.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID bson.ObjectID) (int64, error)
	Delete(ctx context.Context, userID, id bson.ObjectID) error
	DeleteRead(ctx context.Context, userID bson.ObjectID) (int64, error)
}

var (
	_ ApplicationStore  = (*repository.ApplicationRepository)(nil)
	_ UserStore         = (*repository.UserRepository)(nil)
	_ CounterStore      = (*repository.CounterRepository)(nil)
	_ NotificationStore = (*repository.NotificationRepository)(nil)
)
