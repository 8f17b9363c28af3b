// @title Nexus Incubator API
// @version 1.0
// @description Applicant lifecycle, membership and notification backend for the Nexus Incubator club.
// @host localhost:8000
// @BasePath /

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"nexus-backend/bootstrap"
	"nexus-backend/config"
	"nexus-backend/database"
	"nexus-backend/internal/apperr"
	"nexus-backend/internal/middleware"
	"nexus-backend/internal/realtime"
	"nexus-backend/internal/repository"
	"nexus-backend/internal/routes"
	"nexus-backend/internal/services"
)

// errorHandler turns taxonomy errors into {error: ...} responses with the
// right status; fiber errors pass through as-is.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	msg := err.Error()
	if kind == apperr.Internal {
		slog.Error("unhandled error", "err", err, "path", c.Path())
		msg = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg, "kind": string(kind)})
}

func main() {
	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		panic("JWT_SECRET is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	client := database.ConnectMongo(cfg.MongoURI)
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	if err := bootstrap.EnsureIndexes(db); err != nil {
		log.Fatalf("ensure indexes failed: %v", err)
	}
	logger.Info("connected to MongoDB", "db", cfg.MongoDB)

	// repositories
	userRepo := repository.NewUserRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	notiRepo := repository.NewNotificationRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	// presence hub lives for the process lifetime, rebuilt empty on restart
	hub := realtime.NewHub(logger)

	var mailer services.Mailer
	if cfg.SMTPHost != "" {
		mailer = &services.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SMTPFrom,
			Password: cfg.SMTPPassword,
		}
	} else {
		mailer = &services.LogMailer{Log: logger}
	}

	// services
	notiSvc := services.NewNotificationService(notiRepo, hub, logger)
	appSvc := services.NewApplicationService(appRepo, userRepo, notiSvc, logger)
	memberSvc := services.NewMembershipService(userRepo, appRepo, counterRepo, notiSvc, mailer, logger)
	userSvc := services.NewUserService(userRepo, notiSvc, logger)
	authSvc := services.NewAuthService(userRepo, cfg.JWTSecret)

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	notiSvc.Start(dispatchCtx)

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })

	routes.SetupAuth(app, authSvc)

	app.Use(middleware.RequireJWT(cfg.JWTSecret))
	app.Use(middleware.InjectActor(db))

	routes.SetupApplications(app, appSvc)
	routes.SetupMembership(app, memberSvc)
	routes.SetupUsers(app, userSvc)
	routes.SetupNotifications(app, notiSvc, hub)

	log.Fatal(app.Listen(":" + cfg.Port))
}
