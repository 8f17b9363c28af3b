package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/internal/apperr"
	"nexus-backend/internal/memberid"
	"nexus-backend/internal/models"
	"nexus-backend/internal/rbac"
	"nexus-backend/internal/repository"
)

// Promotion gate errors. Each precondition gets its own error so a caller can
// tell which one failed.
var (
	ErrNotApplicant          = apperr.New(apperr.InvalidStateTransition, "user does not hold the applicant role")
	ErrNoApprovedApplication = apperr.New(apperr.InvalidStateTransition, "user has no approved application")
	ErrAlreadyMember         = apperr.New(apperr.Conflict, "user is already a club member")
)

type MembershipService struct {
	users    UserStore
	apps     ApplicationStore
	counters CounterStore
	noti     *NotificationService
	mailer   Mailer
	log      *slog.Logger
}

func NewMembershipService(users UserStore, apps ApplicationStore, counters CounterStore, noti *NotificationService, mailer Mailer, log *slog.Logger) *MembershipService {
	return &MembershipService{users: users, apps: apps, counters: counters, noti: noti, mailer: mailer, log: log}
}

// Promote turns an approved applicant into a club member. The role/membership
// write is the atomic unit of truth; the welcome notification and email are
// best-effort afterthoughts that never undo it.
func (s *MembershipService) Promote(ctx context.Context, actor models.Actor, userID bson.ObjectID) (*models.User, error) {
	if !actor.Can(rbac.PermManageMembers) {
		return nil, apperr.New(apperr.Forbidden, "manage-members permission required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !rbac.HasRole(user.Roles, rbac.RoleApplicant) {
		return nil, ErrNotApplicant
	}
	app, err := s.apps.FindByUser(ctx, userID)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, ErrNoApprovedApplication
		}
		return nil, err
	}
	if app.Status != models.AppApproved {
		return nil, ErrNoApprovedApplication
	}
	if rbac.HasRole(user.Roles, rbac.RoleClubMember) {
		return nil, ErrAlreadyMember
	}

	now := time.Now().UTC()
	seq, err := s.counters.NextMemberSeq(ctx, now.Year())
	if err != nil {
		return nil, err
	}
	info := models.MembershipInfo{
		MemberID:   memberid.Format(now.Year(), seq),
		Level:      models.LevelBronze,
		Status:     models.MemberActive,
		Points:     0,
		PromotedBy: actor.ID,
		PromotedAt: now,
	}
	stats := models.MemberStats{}

	promoted, err := s.users.PromoteToMember(ctx, userID, info, stats)
	if err != nil {
		return nil, err
	}
	if !promoted {
		// the role guard in the update filter did not match: either a
		// concurrent promotion won, or the user vanished
		if again, err2 := s.users.FindByID(ctx, userID); err2 == nil && rbac.HasRole(again.Roles, rbac.RoleClubMember) {
			return nil, ErrAlreadyMember
		} else if err2 != nil {
			return nil, err2
		}
		return nil, apperr.New(apperr.ConcurrentModification, "user was modified concurrently")
	}

	if err := s.noti.Notify(ctx, userID, NotiMemberWelcome, NotiParams{MemberID: info.MemberID}, "/membership", nil); err != nil {
		s.log.Warn("welcome notification failed", "user_id", userID.Hex(), "err", err)
	}
	subject := "Welcome to Nexus Incubator"
	body := fmt.Sprintf("Hello %s,\n\nWelcome aboard! Your member id is %s.\n", user.FirstName, info.MemberID)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		s.log.Warn("welcome email failed", "user_id", userID.Hex(), "err", err)
	}

	return s.users.FindByID(ctx, userID)
}

func (s *MembershipService) SetLevel(ctx context.Context, actor models.Actor, userID bson.ObjectID, level models.MemberLevel) error {
	if !actor.Can(rbac.PermManageMembers) {
		return apperr.New(apperr.Forbidden, "manage-members permission required")
	}
	if !level.Valid() {
		return apperr.New(apperr.ValidationFailed, "invalid membership level")
	}
	if err := s.users.SetMembershipField(ctx, userID, "level", level); err != nil {
		return err
	}
	if err := s.noti.Notify(ctx, userID, NotiMemberLevelChanged, NotiParams{Level: level}, "/membership", nil); err != nil {
		s.log.Warn("level notification failed", "user_id", userID.Hex(), "err", err)
	}
	return nil
}

// SetStatus flips the membership status flag only. Suspending a member keeps
// the club-member role in place; membership state and role membership are
// decoupled on purpose.
func (s *MembershipService) SetStatus(ctx context.Context, actor models.Actor, userID bson.ObjectID, status models.MemberStatus) error {
	if !actor.Can(rbac.PermManageMembers) {
		return apperr.New(apperr.Forbidden, "manage-members permission required")
	}
	if !status.Valid() {
		return apperr.New(apperr.ValidationFailed, "invalid membership status")
	}
	if err := s.users.SetMembershipField(ctx, userID, "status", status); err != nil {
		return err
	}
	if err := s.noti.Notify(ctx, userID, NotiMemberStatusChanged, NotiParams{Status: status}, "/membership", nil); err != nil {
		s.log.Warn("status notification failed", "user_id", userID.Hex(), "err", err)
	}
	return nil
}

func (s *MembershipService) ListMembers(ctx context.Context, actor models.Actor, f repository.MemberFilter) ([]models.User, error) {
	if !actor.Can(rbac.PermManageMembers) {
		return nil, apperr.New(apperr.Forbidden, "manage-members permission required")
	}
	return s.users.ListMembers(ctx, f)
}

func (s *MembershipService) GetStats(ctx context.Context, actor models.Actor, userID bson.ObjectID) (*models.MemberStats, error) {
	if actor.ID != userID && !actor.Can(rbac.PermManageMembers) {
		return nil, apperr.New(apperr.Forbidden, "manage-members permission required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Stats == nil {
		return nil, apperr.New(apperr.NotFound, "user is not a club member")
	}
	return user.Stats, nil
}

func (s *MembershipService) PromotionHistory(ctx context.Context, actor models.Actor, limit int64) ([]models.User, error) {
	if !actor.Can(rbac.PermManageMembers) {
		return nil, apperr.New(apperr.Forbidden, "manage-members permission required")
	}
	return s.users.PromotionHistory(ctx, limit)
}
