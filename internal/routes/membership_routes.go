package routes

import (
	"github.com/gofiber/fiber/v2"

	"nexus-backend/internal/controllers"
	"nexus-backend/internal/services"
)

func SetupMembership(app *fiber.App, svc *services.MembershipService) {
	members := app.Group("/members")
	members.Get("/", controllers.ListMembers(svc))
	members.Get("/history", controllers.PromotionHistory(svc))
	members.Post("/:userID/promote", controllers.PromoteMember(svc))
	members.Get("/:userID/stats", controllers.GetMemberStats(svc))
	members.Patch("/:userID/level", controllers.SetMemberLevel(svc))
	members.Patch("/:userID/status", controllers.SetMemberStatus(svc))
}
