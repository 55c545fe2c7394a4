package main

import (
	"fmt"
	"time"

	"microblog/internal/auth"
	"microblog/internal/config"
	"microblog/internal/handlers"
	"microblog/internal/mailer"
	"microblog/internal/middleware"
	"microblog/internal/observability"
	"microblog/internal/repositories"
	"microblog/internal/services"
	"microblog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Fiber  *fiber.App
	Logger *zap.Logger

	db       *gorm.DB
	mqClient *rabbitmq.Client
}

// NewApp wires repositories, services and handlers for cfg.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	a := &App{Logger: log}

	// --- Repositories ---
	var repos repositories.Repositories
	if cfg.Database.Driver == "memory" {
		repos = repositories.NewMockRepositories()
	} else {
		a.db, err = repositories.OpenDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		repos = repositories.NewGORMRepositories(a.db)
	}
	log.Info("store ready", zap.String("driver", cfg.Database.Driver))

	// --- Mail ---
	var mail services.Mailer
	if cfg.RabbitMQ.URL != "" {
		a.mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		mail = mailer.NewQueueMailer(a.mqClient, log)
	} else {
		log.Warn("RABBITMQ_URL not set, account mail is only logged")
		mail = mailer.NewLogMailer(log)
	}

	// --- Services ---
	hasher := auth.NewHasher(cfg.Auth.BcryptMinCost)
	userService := services.NewUserService(repos.Users, hasher, log, services.UserServiceOptions{
		PasswordResetTTL: cfg.Auth.PasswordResetTTL,
	})
	authService := services.NewAuthService(userService, mail, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, log)
	relationshipService := services.NewRelationshipService(repos.Relationships, repos.Users, log)
	micropostService := services.NewMicropostService(repos.Microposts, nil)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, log)
	userHandler := handlers.NewUserHandler(userService, relationshipService, micropostService, log)
	relationshipHandler := handlers.NewRelationshipHandler(relationshipService, log)
	micropostHandler := handlers.NewMicropostHandler(micropostService, log)
	staticPagesHandler := handlers.NewStaticPagesHandler(relationshipService, micropostService, cfg.Feed.PerPage, log)

	app := fiber.New(fiber.Config{AppName: "microblog"})
	app.Use(middleware.Recover(log))
	app.Use(logger.New())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.LoadUser(authService, log))
	staticPagesHandler.RegisterRoutes(apiV1)
	authHandler.RegisterRoutes(apiV1)
	relationshipHandler.RegisterRoutes(apiV1)
	userHandler.RegisterRoutes(apiV1)
	micropostHandler.RegisterRoutes(apiV1)

	// --- Health Check Endpoint ---
	mailMode := "log"
	if a.mqClient != nil {
		mailMode = "queue"
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": cfg.Database.Driver,
			"mail":     mailMode,
		})
	})

	a.Fiber = app
	return a, nil
}

// StartMailConsumer consumes the mail queue when a broker is configured.
func (a *App) StartMailConsumer() error {
	if a.mqClient == nil {
		return nil
	}
	a.Logger.Info("starting mail queue consumer", zap.String("queue", rabbitmq.MailQueue))
	return a.mqClient.ConsumeMail(mailer.DeliveryHandler(a.Logger))
}

// Close releases the broker connection and the database handle.
func (a *App) Close() {
	if a.mqClient != nil {
		if err := a.mqClient.Close(); err != nil {
			a.Logger.Warn("error closing RabbitMQ client", zap.Error(err))
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.Logger.Warn("error closing database", zap.Error(err))
			}
		}
	}
	_ = a.Logger.Sync()
}
