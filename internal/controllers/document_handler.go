package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/dto"
	"nexus-backend/internal/middleware"
	"nexus-backend/internal/services"
)

// AddDocument godoc
// @Summary      Attach a document to the caller's application
// @Description  Document type is unique per application.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddDocumentRequest true "Document"
// @Success      201 {object} models.Application
// @Failure      409 {object} dto.ErrorResponse "duplicate type"
// @Router       /applications/me/documents [post]
func AddDocument(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		var req dto.AddDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		app, err := svc.AddDocument(ctx, actor, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": app})
	}
}

// ListDocuments godoc
// @Summary      List documents of an application (owner or reviewer)
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Application ID"
// @Success      200 {array} models.Document
// @Router       /applications/{id}/documents [get]
func ListDocuments(svc *services.ApplicationService) fiber.Handler {
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

		docs, err := svc.ListDocuments(ctx, actor, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": len(docs), "data": docs})
	}
}

// DeleteDocument godoc
// @Summary      Delete a pending document from the caller's application
// @Description  Verified and rejected documents cannot be deleted by the owner.
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        type path string true "Document type"
// @Success      200 {object} map[string]string
// @Failure      422 {object} dto.ErrorResponse "not pending"
// @Router       /applications/me/documents/{type} [delete]
func DeleteDocument(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.DeleteDocument(ctx, actor, c.Params("type")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "document deleted"})
	}
}

// VerifyDocument godoc
// @Summary      Mark a pending document verified
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Application ID"
// @Param        type path string true "Document type"
// @Success      200 {object} map[string]string
// @Failure      422 {object} dto.ErrorResponse "already reviewed"
// @Router       /applications/{id}/documents/{type}/verify [post]
func VerifyDocument(svc *services.ApplicationService) fiber.Handler {
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

		if err := svc.VerifyDocument(ctx, actor, id, c.Params("type")); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "document verified"})
	}
}

// RejectDocument godoc
// @Summary      Reject a pending document
// @Description  A reason is mandatory and is shown to the owner.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Application ID"
// @Param        type path string true "Document type"
// @Param        body body dto.RejectDocumentRequest true "Reason"
// @Success      200 {object} map[string]string
// @Failure      400 {object} dto.ErrorResponse "reason missing"
// @Router       /applications/{id}/documents/{type}/reject [post]
func RejectDocument(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid application id")
		}
		var req dto.RejectDocumentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.RejectDocument(ctx, actor, id, c.Params("type"), req.Reason); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "document rejected"})
	}
}

// RequestDocumentInfo godoc
// @Summary      Ask the owner for more information on a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Application ID"
// @Param        type path string true "Document type"
// @Param        body body dto.RequestDocumentInfoRequest true "What is missing"
// @Success      200 {object} map[string]string
// @Router       /applications/{id}/documents/{type}/request-info [post]
func RequestDocumentInfo(svc *services.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid application id")
		}
		var req dto.RequestDocumentInfoRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.RequestDocumentInfo(ctx, actor, id, c.Params("type"), req.Message); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "information requested"})
	}
}
