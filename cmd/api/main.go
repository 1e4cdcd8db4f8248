package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/luoxin-dev/survey-portal-api/internal/config"
	"github.com/luoxin-dev/survey-portal-api/internal/database"
	"github.com/luoxin-dev/survey-portal-api/internal/handler"
	"github.com/luoxin-dev/survey-portal-api/internal/middleware"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/repository"
	"github.com/luoxin-dev/survey-portal-api/internal/router"
	"github.com/luoxin-dev/survey-portal-api/internal/service"
	"github.com/luoxin-dev/survey-portal-api/pkg/ai"
	cloud "github.com/luoxin-dev/survey-portal-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.Submission{},
		&models.Group{},
		&models.GroupMember{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	var checker ai.FormatChecker
	if cfg.OpenAIAPIKey != "" {
		openAIChecker, err := ai.NewOpenAIChecker(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create openai checker: %v", err)
		}
		checker = openAIChecker
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannel, natsConn, validate, logger)
	notificationService.Start(ctx)

	assignmentService := service.NewAssignmentService(assignmentRepo, validate, uploader, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploader, notificationService, logger)
	reviewService := service.NewReviewService(submissionService, logger)
	groupService := service.NewGroupService(groupRepo, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	formatCheckService := service.NewFormatCheckService(checker, validate, cfg.AITimeout, logger)
	dashboardService := service.NewStudentDashboardService(assignmentRepo, submissionRepo, redisClient, cfg.DashboardCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler:       handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:       handler.NewSubmissionHandler(submissionService, logger),
		ReviewHandler:           handler.NewReviewHandler(reviewService, logger),
		GroupHandler:            handler.NewGroupHandler(groupService, logger),
		AdminUserHandler:        handler.NewAdminUserHandler(userService, logger),
		AIHandler:               handler.NewAIHandler(formatCheckService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		NotificationHandler:     handler.NewNotificationHandler(notificationService, logger, 30*time.Second),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
