package services

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/internal/apperr"
	"nexus-backend/internal/models"
	"nexus-backend/internal/rbac"
)

type UserService struct {
	users UserStore
	noti  *NotificationService
	log   *slog.Logger
}

func NewUserService(users UserStore, noti *NotificationService, log *slog.Logger) *UserService {
	return &UserService{users: users, noti: noti, log: log}
}

func (s *UserService) Get(ctx context.Context, actor models.Actor, id bson.ObjectID) (*models.User, error) {
	if actor.ID != id && !actor.Can(rbac.PermManageUsers) {
		return nil, apperr.New(apperr.Forbidden, "manage-users permission required")
	}
	return s.users.FindByID(ctx, id)
}

func (s *UserService) RolesOf(ctx context.Context, actor models.Actor, id bson.ObjectID) ([]rbac.Role, error) {
	if actor.ID != id && !actor.Can(rbac.PermManageRoles) {
		return nil, apperr.New(apperr.Forbidden, "manage-roles permission required")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

// AddRole hands out a role by hand. applicant and club-member are rejected
// here: the former comes only from registration, the latter only from the
// promotion workflow.
func (s *UserService) AddRole(ctx context.Context, actor models.Actor, id bson.ObjectID, raw string) error {
	if !actor.Can(rbac.PermManageRoles) {
		return apperr.New(apperr.Forbidden, "manage-roles permission required")
	}
	role, err := rbac.ParseRole(raw)
	if err != nil {
		return apperr.New(apperr.ValidationFailed, err.Error())
	}
	if !role.ManuallyAssignable() {
		return apperr.New(apperr.ValidationFailed, fmt.Sprintf("role %q cannot be assigned manually", role))
	}
	if err := s.users.AddRole(ctx, id, role); err != nil {
		return err
	}
	if err := s.noti.Notify(ctx, id, NotiRoleChanged, NotiParams{Role: fmt.Sprintf("you were granted the %s role", role)}, "", nil); err != nil {
		s.log.Warn("role notification failed", "user_id", id.Hex(), "err", err)
	}
	return nil
}

// AssignRoles replaces the manually assignable part of the role set in one
// shot. Lifecycle roles the user already holds (applicant, club-member) are
// preserved; the request may not name them.
func (s *UserService) AssignRoles(ctx context.Context, actor models.Actor, id bson.ObjectID, raws []string) error {
	if !actor.Can(rbac.PermManageRoles) {
		return apperr.New(apperr.Forbidden, "manage-roles permission required")
	}
	assigned := make([]rbac.Role, 0, len(raws))
	for _, raw := range raws {
		role, err := rbac.ParseRole(raw)
		if err != nil {
			return apperr.New(apperr.ValidationFailed, err.Error())
		}
		if !role.ManuallyAssignable() {
			return apperr.New(apperr.ValidationFailed, fmt.Sprintf("role %q cannot be assigned manually", role))
		}
		assigned = append(assigned, role)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	next := make([]rbac.Role, 0, len(user.Roles)+len(assigned))
	for _, r := range user.Roles {
		if !r.ManuallyAssignable() {
			next = append(next, r)
		}
	}
	for _, r := range assigned {
		if !rbac.HasRole(next, r) {
			next = append(next, r)
		}
	}
	if len(next) == 0 {
		next = []rbac.Role{rbac.BaseRole}
	}
	if err := s.users.SetRoles(ctx, id, next); err != nil {
		return err
	}
	if err := s.noti.Notify(ctx, id, NotiRoleChanged, NotiParams{Role: "your roles were updated"}, "", nil); err != nil {
		s.log.Warn("role notification failed", "user_id", id.Hex(), "err", err)
	}
	return nil
}

// RemoveRole mirrors AddRole, including the guard on applicant/club-member.
// Dropping the last remaining role falls back to the base role in the
// repository, so no user is ever left role-less.
func (s *UserService) RemoveRole(ctx context.Context, actor models.Actor, id bson.ObjectID, raw string) error {
	if !actor.Can(rbac.PermManageRoles) {
		return apperr.New(apperr.Forbidden, "manage-roles permission required")
	}
	role, err := rbac.ParseRole(raw)
	if err != nil {
		return apperr.New(apperr.ValidationFailed, err.Error())
	}
	if !role.ManuallyAssignable() {
		return apperr.New(apperr.ValidationFailed, fmt.Sprintf("role %q cannot be removed manually", role))
	}
	if err := s.users.RemoveRole(ctx, id, role); err != nil {
		return err
	}
	if err := s.noti.Notify(ctx, id, NotiRoleChanged, NotiParams{Role: fmt.Sprintf("the %s role was removed", role)}, "", nil); err != nil {
		s.log.Warn("role notification failed", "user_id", id.Hex(), "err", err)
	}
	return nil
}
