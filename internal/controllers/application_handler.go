package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/dto"
	"nexus-backend/internal/middleware"
	"nexus-backend/internal/models"
	"nexus-backend/internal/repository"
	"nexus-backend/internal/services"
)

func reqCtx(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 5*time.Second)
}

// SubmitApplication godoc
// @Summary      Submit a club application
// @Description  Creates the caller's application in pending state. One per user.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SubmitApplicationRequest true "Application payload"
// @Success      201 {object} models.Application
// @Failure      400 {object} dto.ErrorResponse "missing required fields"
// @Failure      409 {object} dto.ErrorResponse "application already exists"
// @Router       /applications [post]
func SubmitApplication(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		var req dto.SubmitApplicationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.Submit(ctx, actor, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": app})
	}
}

// GetOwnApplication godoc
// @Summary      Get the caller's application
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.Application
// @Failure      404 {object} dto.ErrorResponse
// @Router       /applications/me [get]
func GetOwnApplication(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.GetOwn(ctx, actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": app})
	}
}

// UpdateOwnApplication godoc
// @Summary      Patch the caller's pending application
// @Description  Only allowed while the application is pending; locked once review starts.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.UpdateApplicationRequest true "Fields to change"
// @Success      200 {object} models.Application
// @Failure      422 {object} dto.ErrorResponse "application locked"
// @Router       /applications/me [patch]
func UpdateOwnApplication(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		var req dto.UpdateApplicationRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.Update(ctx, actor, req)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": app})
	}
}

// ListApplications godoc
// @Summary      List applications (reviewers)
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "pending|under-review|approved|rejected"
// @Param        limit  query int    false "max rows"
// @Success      200 {array} models.Application
// @Failure      403 {object} dto.ErrorResponse
// @Router       /applications [get]
func ListApplications(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		f := repository.ApplicationFilter{
			Status: models.AppStatus(c.Query("status")),
			Limit:  int64(c.QueryInt("limit")),
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		apps, err := svc.List(ctx, actor, f)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": len(apps), "data": apps})
	}
}

// GetApplication godoc
// @Summary      Get an application by id (owner or reviewer)
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Application ID"
// @Success      200 {object} models.Application
// @Failure      404 {object} dto.ErrorResponse
// @Router       /applications/{id} [get]
func GetApplication(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid application id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.GetByID(ctx, actor, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": app})
	}
}

// StartReview godoc
// @Summary      Move a pending application to under-review
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Application ID"
// @Success      200 {object} models.Application
// @Failure      422 {object} dto.ErrorResponse "not pending"
// @Router       /applications/{id}/review [post]
func StartReview(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid application id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.StartReview(ctx, actor, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "review started", "data": app})
	}
}

// ApproveApplication godoc
// @Summary      Approve an application
// @Description  Valid from pending or under-review. Does not grant membership; use promote.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Application ID"
// @Param        body body dto.ReviewDecisionRequest false "Optional notes"
// @Success      200 {object} models.Application
// @Failure      409 {object} dto.ErrorResponse "already approved"
// @Router       /applications/{id}/approve [post]
func ApproveApplication(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid application id")
		}
		var req dto.ReviewDecisionRequest
		_ = c.BodyParser(&req) // notes are optional on approve

		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.Approve(ctx, actor, id, req.Notes)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "application approved", "data": app})
	}
}

// RejectApplication godoc
// @Summary      Reject an application
// @Description  Notes are mandatory and become the rejection reason shown to the applicant.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Application ID"
// @Param        body body dto.ReviewDecisionRequest true "Rejection notes"
// @Success      200 {object} models.Application
// @Failure      400 {object} dto.ErrorResponse "notes missing"
// @Router       /applications/{id}/reject [post]
func RejectApplication(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid application id")
		}
		var req dto.ReviewDecisionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.Reject(ctx, actor, id, req.Notes)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "application rejected", "data": app})
	}
}

// BulkApprove godoc
// @Summary      Approve many applications
// @Description  Every id is attempted; per-id failures are reported, the batch never aborts.
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.BulkReviewRequest true "Application ids"
// @Success      200 {object} services.BulkResult
// @Router       /applications/bulk-approve [post]
func BulkApprove(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		var req dto.BulkReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if len(req.IDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids are required")
		}

		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()

		return c.JSON(svc.BulkApprove(ctx, actor, req.IDs, req.Notes))
	}
}

// BulkReject godoc
// @Summary      Reject many applications
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.BulkReviewRequest true "Application ids and notes"
// @Success      200 {object} services.BulkResult
// @Router       /applications/bulk-reject [post]
func BulkReject(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		var req dto.BulkReviewRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if len(req.IDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids are required")
		}

		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()

		return c.JSON(svc.BulkReject(ctx, actor, req.IDs, req.Notes))
	}
}
