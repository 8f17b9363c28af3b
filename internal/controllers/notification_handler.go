package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"nexus-backend/dto"
	"nexus-backend/internal/middleware"
	"nexus-backend/internal/models"
	"nexus-backend/internal/rbac"
	"nexus-backend/internal/repository"
	"nexus-backend/internal/services"
)

// ListNotifications godoc
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread query bool   false "unread only"
// @Param        type   query string false "notification type"
// @Param        limit  query int    false "max rows"
// @Success      200 {array} models.Notification
// @Router       /notifications [get]
func ListNotifications(svc *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := middleware.UIDObjectID(c)
		if err != nil {
			return err
		}
		f := repository.NotificationFilter{
			UnreadOnly: c.QueryBool("unread"),
			Type:       models.NotiType(c.Query("type")),
			Limit:      int64(c.QueryInt("limit")),
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		list, err := svc.ListMine(ctx, uid, f)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"count": len(list), "data": list})
	}
}

// UnreadCount godoc
// @Summary      Count the caller's unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64
// @Router       /notifications/unread-count [get]
func UnreadCount(svc *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := middleware.UIDObjectID(c)
		if err != nil {
			return err
		}
		ctx, cancel := reqCtx(c)
		defer cancel()

		n, err := svc.UnreadCount(ctx, uid)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"unread_count": n})
	}
}

// MarkNotificationRead godoc
// @Summary      Mark one notification read
// @Description  Idempotent: marking an already-read notification is a no-op.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200 {object} models.Notification
// @Failure      404 {object} dto.ErrorResponse
// @Router       /notifications/{id}/read [patch]
func MarkNotificationRead(svc *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := middleware.UIDObjectID(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid notification id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		n, err := svc.MarkRead(ctx, uid, id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": n})
	}
}

// MarkAllNotificationsRead godoc
// @Summary      Mark every unread notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64
// @Router       /notifications/read-all [patch]
func MarkAllNotificationsRead(svc *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := middleware.UIDObjectID(c)
		if err != nil {
			return err
		}
		ctx, cancel := reqCtx(c)
		defer cancel()

		n, err := svc.MarkAllRead(ctx, uid)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"marked": n})
	}
}

// DeleteNotification godoc
// @Summary      Delete one of the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Notification ID"
// @Success      200 {object} map[string]string
// @Router       /notifications/{id} [delete]
func DeleteNotification(svc *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := middleware.UIDObjectID(c)
		if err != nil {
			return err
		}
		id, err := bson.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid notification id")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		if err := svc.Delete(ctx, uid, id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "notification deleted"})
	}
}

// DeleteReadNotifications godoc
// @Summary      Delete all of the caller's read notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]int64
// @Router       /notifications/read [delete]
func DeleteReadNotifications(svc *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := middleware.UIDObjectID(c)
		if err != nil {
			return err
		}
		ctx, cancel := reqCtx(c)
		defer cancel()

		n, err := svc.DeleteRead(ctx, uid)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"deleted": n})
	}
}

// Announce godoc
// @Summary      Broadcast an announcement to every live session
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AnnouncementRequest true "Announcement"
// @Success      200 {object} map[string]string
// @Failure      403 {object} dto.ErrorResponse
// @Router       /announcements [post]
func Announce(svc *services.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := middleware.ActorFromCtx(c)
		if err != nil {
			return err
		}
		if !actor.Can(rbac.PermSendAnnouncements) {
			return fiber.NewError(fiber.StatusForbidden, "send-announcements permission required")
		}
		var req dto.AnnouncementRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if req.Title == "" || req.Message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "title and message are required")
		}

		svc.Announce(req.Title, req.Message)
		return c.JSON(fiber.Map{"message": "announcement sent"})
	}
}
