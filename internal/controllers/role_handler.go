package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/dto"
	"nexus-backend/internal/middleware"
	"nexus-backend/internal/services"
)

// GetUserRoles godoc
// @Summary      Get a user's roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {array} string
// @Router       /users/{id}/roles [get]
func GetUserRoles(svc *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		roles, err := svc.RolesOf(ctx, actor, uid)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": roles})
	}
}

// AddUserRole godoc
// @Summary      Grant a role to a user
// @Description  applicant and club-member are rejected here; they only come from submit/promote.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "User ID"
// @Param        body body dto.RoleRequest true "Role"
// @Success      200 {object} map[string]string
// @Failure      400 {object} dto.ErrorResponse "role not assignable"
// @Router       /users/{id}/roles [post]
func AddUserRole(svc *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}
		var req dto.RoleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.AddRole(ctx, actor, uid, req.Role); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "role added"})
	}
}

// AssignUserRoles godoc
// @Summary      Replace a user's assignable roles
// @Description  Lifecycle roles (applicant, club-member) are kept as-is and may not appear in the request.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "User ID"
// @Param        body body dto.AssignRolesRequest true "Roles"
// @Success      200 {object} map[string]string
// @Router       /users/{id}/roles [put]
func AssignUserRoles(svc *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}
		var req dto.AssignRolesRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.AssignRoles(ctx, actor, uid, req.Roles); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "roles assigned"})
	}
}

// RemoveUserRole godoc
// @Summary      Remove a role from a user
// @Description  Removing the last role falls back to the base role.
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "User ID"
// @Param        role path string true "Role"
// @Success      200 {object} map[string]string
// @Router       /users/{id}/roles/{role} [delete]
func RemoveUserRole(svc *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.RemoveRole(ctx, actor, uid, c.Params("role")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "role removed"})
	}
}

// GetUser godoc
// @Summary      Get a user (self or manage-users)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200 {object} models.User
// @Router       /users/{id} [get]
func GetUser(svc *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		user, err := svc.Get(ctx, actor, uid)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": user})
	}
}
