package routes

import (
	"github.com/gofiber/fiber/v2"

	"nexus-backend/internal/controllers"
	"nexus-backend/internal/services"
)

func SetupApplications(app *fiber.App, svc *services.ApplicationService) {
	apps := app.Group("/applications")

	// literal segments before /:id so "me" and the bulk routes never
	// get captured as an id
	apps.Post("/", controllers.SubmitApplication(svc))
	apps.Get("/", controllers.ListApplications(svc))
	apps.Get("/me", controllers.GetOwnApplication(svc))
	apps.Patch("/me", controllers.UpdateOwnApplication(svc))
	apps.Post("/me/documents", controllers.AddDocument(svc))
	apps.Delete("/me/documents/:type", controllers.DeleteDocument(svc))
	apps.Post("/bulk-approve", controllers.BulkApprove(svc))
	apps.Post("/bulk-reject", controllers.BulkReject(svc))

	apps.Get("/:id", controllers.GetApplication(svc))
	apps.Post("/:id/review", controllers.StartReview(svc))
	apps.Post("/:id/approve", controllers.ApproveApplication(svc))
	apps.Post("/:id/reject", controllers.RejectApplication(svc))
	apps.Get("/:id/documents", controllers.ListDocuments(svc))
	apps.Post("/:id/documents/:type/verify", controllers.VerifyDocument(svc))
	apps.Post("/:id/documents/:type/reject", controllers.RejectDocument(svc))
	apps.Post("/:id/documents/:type/request-info", controllers.RequestDocumentInfo(svc))
}
