package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"nexus-backend/internal/models"
)

// InjectActor loads the caller's role set and stashes a models.Actor in
// Locals. Services run their authorization checks against it; a missing user
// behind a valid token is treated as unauthorized.
func InjectActor(db *mongo.Database) fiber.Handler {
	users := db.Collection("users")
	return func(c *fiber.Ctx) error {
		uid, err := UIDObjectID(c)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := users.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
			if err == mongo.ErrNoDocuments {
				return fiber.ErrUnauthorized
			}
			return err
		}

		c.Locals("actor", models.Actor{ID: user.ID, Roles: user.Roles})
		return c.Next()
	}
}

// ActorFromCtx returns the actor InjectActor stored for this request.
func ActorFromCtx(c *fiber.Ctx) (models.Actor, error) {
	a, ok := c.Locals("actor").(models.Actor)
	if !ok {
		return models.Actor{}, fiber.ErrUnauthorized
	}
	return a, nil
}
