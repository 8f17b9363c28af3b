package routes

import (
	"github.com/gofiber/fiber/v2"

	"nexus-backend/internal/controllers"
	"nexus-backend/internal/realtime"
	"nexus-backend/internal/services"
)

func SetupNotifications(app *fiber.App, svc *services.NotificationService, hub *realtime.Hub) {
	noti := app.Group("/notifications")
	noti.Get("/", controllers.ListNotifications(svc))
	noti.Get("/unread-count", controllers.UnreadCount(svc))
	noti.Patch("/read-all", controllers.MarkAllNotificationsRead(svc))
	noti.Delete("/read", controllers.DeleteReadNotifications(svc))
	noti.Patch("/:id/read", controllers.MarkNotificationRead(svc))
	noti.Delete("/:id", controllers.DeleteNotification(svc))

	app.Post("/announcements", controllers.Announce(svc))

	app.Use("/ws", controllers.WSUpgrade())
	app.Get("/ws", controllers.WSConnect(hub))
}
