package routes

import (
	"github.com/gofiber/fiber/v2"

	"nexus-backend/internal/controllers"
	"nexus-backend/internal/services"
)

func SetupAuth(app *fiber.App, svc *services.AuthService) {
	auth := app.Group("/auth")
	auth.Post("/register", controllers.Register(svc))
	auth.Post("/login", controllers.Login(svc))
}
