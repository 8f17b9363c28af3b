package routes

import (
	"github.com/gofiber/fiber/v2"

	"nexus-backend/internal/controllers"
	"nexus-backend/internal/services"
)

func SetupUsers(app *fiber.App, svc *services.UserService) {
	users := app.Group("/users")
	users.Get("/:id", controllers.GetUser(svc))
	users.Get("/:id/roles", controllers.GetUserRoles(svc))
	users.Post("/:id/roles", controllers.AddUserRole(svc))
	users.Put("/:id/roles", controllers.AssignUserRoles(svc))
	users.Delete("/:id/roles/:role", controllers.RemoveUserRole(svc))
}
