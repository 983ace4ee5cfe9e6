package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/lms-backend/internal/handlers"
	"github.com/yungbote/lms-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	CourseHandler      *handlers.CourseHandler
	StudentHandler     *handlers.StudentHandler
	QuizHandler        *handlers.QuizHandler
	CertificateHandler *handlers.CertificateHandler
	AdminHandler       *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("lms-backend"))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Catalog
	api.GET("/courses", cfg.CourseHandler.ListCourses)
	api.POST("/courses", cfg.CourseHandler.CreateCourse)
	api.GET("/courses/:id", cfg.CourseHandler.GetCourse)
	api.PUT("/courses/:id", cfg.CourseHandler.UpdateCourse)
	api.DELETE("/courses/:id", cfg.CourseHandler.DeleteCourse)
	api.GET("/courses/:id/lessons", cfg.CourseHandler.ListLessons)
	api.POST("/courses/:id/lessons", cfg.CourseHandler.CreateLesson)
	api.GET("/courses/:id/progress", cfg.CourseHandler.GetCourseProgress)

	// Quizzes
	api.GET("/lessons/:id/quiz", cfg.QuizHandler.GetLessonQuiz)
	api.PUT("/lessons/:id/quiz", cfg.QuizHandler.SaveLessonQuiz)
	api.POST("/quizzes/:id/submit", cfg.QuizHandler.SubmitQuiz)
	api.GET("/quizzes/:id/attempts", cfg.QuizHandler.ListAttempts)

	// Student
	api.POST("/student/courses/:id/enroll", cfg.StudentHandler.Enroll)
	api.GET("/student/courses/enrolled", cfg.StudentHandler.ListEnrolled)
	api.GET("/student/courses/available", cfg.StudentHandler.ListAvailable)
	api.POST("/student/courses/:id/lessons/:lessonID/complete", cfg.StudentHandler.MarkLessonCompleted)
	api.POST("/student/courses/:id/time", cfg.StudentHandler.TrackTime)
	api.GET("/student/stats", cfg.StudentHandler.GetLearningStats)
	api.GET("/student/certificates", cfg.CertificateHandler.ListMine)
	api.GET("/student/certificates/:id/image", cfg.CertificateHandler.RenderCertificate)

	// Admin
	api.GET("/admin/courses/pending", cfg.AdminHandler.ListPendingCourses)
	api.POST("/admin/courses/:id/approve", cfg.AdminHandler.ApproveCourse)
	api.POST("/admin/courses/:id/reject", cfg.AdminHandler.RejectCourse)

	return router
}
