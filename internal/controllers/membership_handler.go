package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/dto"
	"nexus-backend/internal/middleware"
	"nexus-backend/internal/models"
	"nexus-backend/internal/repository"
	"nexus-backend/internal/services"
)

// PromoteMember godoc
// @Summary      Promote an approved applicant to club member
// @Description  Requires the applicant role, an approved application and no existing membership.
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "User ID"
// @Success      200 {object} models.User
// @Failure      409 {object} dto.ErrorResponse "already a member"
// @Failure      422 {object} dto.ErrorResponse "preconditions not met"
// @Router       /members/{userID}/promote [post]
func PromoteMember(svc *services.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		user, err := svc.Promote(ctx, actor, uid)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "member promoted", "data": user})
	}
}

// ListMembers godoc
// @Summary      List club members
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "active|inactive|suspended"
// @Param        level  query string false "bronze|silver|gold|platinum"
// @Param        limit  query int    false "max rows"
// @Success      200 {array} models.User
// @Router       /members [get]
func ListMembers(svc *services.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		f := repository.MemberFilter{
			Status: models.MemberStatus(c.Query("status")),
			Level:  models.MemberLevel(c.Query("level")),
			Limit:  int64(c.QueryInt("limit")),
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		members, err := svc.ListMembers(ctx, actor, f)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": len(members), "data": members})
	}
}

// GetMemberStats godoc
// @Summary      Get a member's statistics counters
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "User ID"
// @Success      200 {object} models.MemberStats
// @Router       /members/{userID}/stats [get]
func GetMemberStats(svc *services.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		stats, err := svc.GetStats(ctx, actor, uid)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": stats})
	}
}

// SetMemberLevel godoc
// @Summary      Change a member's level
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "User ID"
// @Param        body body dto.SetLevelRequest true "New level"
// @Success      200 {object} map[string]string
// @Router       /members/{userID}/level [patch]
func SetMemberLevel(svc *services.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}
		var req dto.SetLevelRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.SetLevel(ctx, actor, uid, models.MemberLevel(req.Level)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "level updated"})
	}
}

// SetMemberStatus godoc
// @Summary      Change a member's status
// @Description  Suspension is a status flag; the club-member role stays.
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userID path string true "User ID"
// @Param        body body dto.SetStatusRequest true "New status"
// @Success      200 {object} map[string]string
// @Router       /members/{userID}/status [patch]
func SetMemberStatus(svc *services.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		uid, err := bson.ObjectIDFromHex(c.Params("userID"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
		}
		var req dto.SetStatusRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.SetStatus(ctx, actor, uid, models.MemberStatus(req.Status)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "status updated"})
	}
}

// PromotionHistory godoc
// @Summary      List members newest-promotion-first
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "max rows"
// @Success      200 {array} models.User
// @Router       /members/history [get]
func PromotionHistory(svc *services.MembershipService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		ctx, cancel := reqCtx(c)
		defer cancel()

		members, err := svc.PromotionHistory(ctx, actor, int64(c.QueryInt("limit")))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": len(members), "data": members})
	}
}
