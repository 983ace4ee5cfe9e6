package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/yungbote/lms-backend/internal/cache"
	"github.com/yungbote/lms-backend/internal/certimage"
	"github.com/yungbote/lms-backend/internal/db"
	"github.com/yungbote/lms-backend/internal/handlers"
	"github.com/yungbote/lms-backend/internal/logger"
	"github.com/yungbote/lms-backend/internal/middleware"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/repos"
	"github.com/yungbote/lms-backend/internal/server"
	"github.com/yungbote/lms-backend/internal/services"
	"github.com/yungbote/lms-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (off unless OTEL_ENABLED is set)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "lms-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	enrollmentRepo := repos.NewEnrollmentRepo(thePG, log)
	lessonProgressRepo := repos.NewLessonProgressRepo(thePG, log)
	quizRepo := repos.NewQuizRepo(thePG, log)
	questionRepo := repos.NewQuestionRepo(thePG, log)
	quizAttemptRepo := repos.NewQuizAttemptRepo(thePG, log)
	certificateRepo := repos.NewCertificateRepo(thePG, log)

	// Stats cache (optional; nil receiver is a no-op)
	statsCache, err := cache.NewStatsCache(log)
	if err != nil {
		log.Warn("Stats cache unavailable, continuing without it", "error", err)
		statsCache = nil
	}

	// Certificate renderer (optional; rendering endpoint reports
	// invalid_state when unconfigured)
	certRenderer, err := certimage.NewRenderer(log)
	if err != nil {
		log.Warn("Certificate renderer unavailable, continuing without it", "error", err)
		certRenderer = nil
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	certificateService := services.NewCertificateService(thePG, log, certificateRepo, userRepo, courseRepo, certRenderer)
	enrollmentService := services.NewEnrollmentService(thePG, log, courseRepo, enrollmentRepo, certificateService, statsCache)
	progressService := services.NewProgressService(thePG, log, courseRepo, lessonRepo, enrollmentRepo, lessonProgressRepo, enrollmentService, statsCache)
	quizService := services.NewQuizService(thePG, log, lessonRepo, quizRepo, questionRepo, quizAttemptRepo, progressService, statsCache)
	catalogService := services.NewCatalogService(thePG, log, courseRepo, lessonRepo, enrollmentRepo, lessonProgressRepo, quizRepo, questionRepo, quizAttemptRepo, certificateRepo)
	statsService := services.NewStatsService(thePG, log, enrollmentRepo, lessonProgressRepo, statsCache)
	adminService := services.NewAdminService(thePG, log, courseRepo, catalogService)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	courseHandler := handlers.NewCourseHandler(log, catalogService, progressService)
	studentHandler := handlers.NewStudentHandler(log, enrollmentService, progressService, statsService)
	quizHandler := handlers.NewQuizHandler(log, quizService)
	certificateHandler := handlers.NewCertificateHandler(log, certificateService)
	adminHandler := handlers.NewAdminHandler(log, adminService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		CourseHandler:      courseHandler,
		StudentHandler:     studentHandler,
		QuizHandler:        quizHandler,
		CertificateHandler: certificateHandler,
		AdminHandler:       adminHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
