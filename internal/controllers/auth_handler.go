package controllers

import (
	"github.com/gofiber/fiber/v2"

	"nexus-backend/dto"
	"nexus-backend/internal/services"
)

// Register godoc
// @Summary      Create an account
// @Description  New accounts start with the applicant role only.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.RegisterRequest true "Account"
// @Success      201 {object} models.User
// @Failure      409 {object} dto.ErrorResponse "email already exists"
// @Router       /auth/register [post]
func Register(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		user, err := svc.Register(ctx, req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": user})
	}
}

// Login godoc
// @Summary      Exchange credentials for a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credentials"
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/login [post]
func Login(svc *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		ctx, cancel := reqCtx(c)
		defer cancel()

		token, user, err := svc.Login(ctx, req)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"token": token, "data": user})
	}
}
