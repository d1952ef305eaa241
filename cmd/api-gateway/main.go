package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/attendly/attendly-api/api/swagger"
	"github.com/attendly/attendly-api/internal/handler"
	"github.com/attendly/attendly-api/internal/middleware"
	"github.com/attendly/attendly-api/internal/ocr"
	"github.com/attendly/attendly-api/internal/repository"
	"github.com/attendly/attendly-api/internal/service"
	"github.com/attendly/attendly-api/pkg/cache"
	"github.com/attendly/attendly-api/pkg/config"
	"github.com/attendly/attendly-api/pkg/database"
	"github.com/attendly/attendly-api/pkg/logger"
	corsmiddleware "github.com/attendly/attendly-api/pkg/middleware/cors"
	reqidmiddleware "github.com/attendly/attendly-api/pkg/middleware/requestid"
	"github.com/attendly/attendly-api/pkg/storage"
)

// @title Attendly API
// @version 0.1.0
// @description Timetable ingestion and attendance tracking service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	uploads, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads storage", "error", err)
	}
	if deleted, err := uploads.CleanupOlderThan(cfg.Uploads.RetentionPeriod); err != nil {
		logr.Sugar().Warnw("failed to clean up archived uploads", "error", err)
	} else if len(deleted) > 0 {
		logr.Sugar().Infow("cleaned up archived uploads", "count", len(deleted))
	}

	engine, err := ocr.New(cfg.OCR)
	if err != nil {
		logr.Sugar().Fatalw("failed to build ocr engine", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	proposalRepo := repository.NewProposalRepository(redisClient, cfg.Import.ProposalTTL)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, courseRepo, validate, logr)
	timetableSvc := service.NewTimetableService(courseRepo, proposalRepo, engine, uploads, metricsSvc, validate, logr)
	settingsSvc := service.NewSettingsService(courseRepo, attendanceRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, cfg.Exports.Enabled)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, cfg.Uploads.MaxFileSizeBytes)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			courses := protected.Group("/courses")
			{
				courses.GET("", courseHandler.List)
				courses.GET("/today", courseHandler.Today)
				courses.GET("/:id", courseHandler.Get)
				courses.POST("", courseHandler.Create)
				courses.PUT("/:id", courseHandler.Update)
				courses.DELETE("/:id", courseHandler.Delete)
				courses.GET("/:id/attendance/export", attendanceHandler.Export)
			}

			attendance := protected.Group("/attendance")
			{
				attendance.POST("", attendanceHandler.Mark)
				attendance.GET("", attendanceHandler.List)
				attendance.DELETE("/:id", attendanceHandler.Delete)
			}

			timetable := protected.Group("/timetable")
			{
				timetable.POST("/import", timetableHandler.ImportImage)
				timetable.POST("/import/manual", timetableHandler.ImportManual)
				timetable.POST("/proposals/:id/confirm", timetableHandler.Confirm)
				timetable.POST("/proposals/:id/retry", timetableHandler.Retry)
				timetable.DELETE("/proposals/:id", timetableHandler.Discard)
			}

			settings := protected.Group("/settings")
			{
				settings.DELETE("/courses", settingsHandler.ClearCourses)
				settings.DELETE("/attendance", settingsHandler.ClearAttendance)
				settings.DELETE("/data", settingsHandler.ClearAll)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
