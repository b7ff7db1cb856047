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
	"github.com/rs/zerolog"

	"github.com/gradehub/gradehub-api/internal/config"
	"github.com/gradehub/gradehub-api/internal/database"
	"github.com/gradehub/gradehub-api/internal/handler"
	"github.com/gradehub/gradehub-api/internal/middleware"
	"github.com/gradehub/gradehub-api/internal/models"
	"github.com/gradehub/gradehub-api/internal/repository"
	"github.com/gradehub/gradehub-api/internal/router"
	"github.com/gradehub/gradehub-api/internal/service"
	"github.com/gradehub/gradehub-api/pkg/scm"
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
		&models.Enrollment{},
		&models.Course{},
		&models.Repository{},
		&models.Assignment{},
		&models.GradingBenchmark{},
		&models.GradingCriterion{},
		&models.Submission{},
		&models.Review{},
		&models.Group{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	scms, err := scm.NewManager(scm.Config{
		GitHubToken:  cfg.GitHubToken,
		GitLabToken:  cfg.GitLabToken,
		GitLabAPIURL: cfg.GitLabAPIURL,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create scm clients: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	rubricRepo := repository.NewRubricRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)

	courseService := service.NewCourseService(courseRepo, userRepo, scms, validate, cfg.OrgListTimeout, logger)
	assignmentService := service.NewAssignmentService(
		assignmentRepo, rubricRepo, submissionRepo, courseRepo, userRepo,
		scms, validate, redisClient, cfg.AssignmentCacheTTL, logger,
	)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, groupRepo, userRepo, logger)
	groupService := service.NewGroupService(groupRepo, courseRepo, userRepo, scms, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)

	courseHandler := handler.NewCourseHandler(courseService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	groupHandler := handler.NewGroupHandler(groupService, logger)
	userHandler := handler.NewUserHandler(userService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		GroupHandler:      groupHandler,
		UserHandler:       userHandler,
		Providers:         scms.Providers(),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		AdminMiddleware:   middleware.RequireAdmin(),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
