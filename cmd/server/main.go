// Package main runs the attendance monitoring HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attendly/backend/config"
	"github.com/attendly/backend/internal/attendance"
	"github.com/attendly/backend/internal/auth"
	"github.com/attendly/backend/internal/clock"
	"github.com/attendly/backend/internal/emaillog"
	"github.com/attendly/backend/internal/events"
	"github.com/attendly/backend/internal/export"
	"github.com/attendly/backend/internal/groups"
	"github.com/attendly/backend/internal/middleware"
	"github.com/attendly/backend/internal/notify"
	"github.com/attendly/backend/internal/scheduler"
	"github.com/attendly/backend/pkg/database"
	"github.com/attendly/backend/pkg/queue"
	"github.com/attendly/backend/pkg/redis"
	"github.com/attendly/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		logger.Fatal("create export dir", zap.Error(err))
	}

	// Redis backs the email queue only; the server runs without it.
	var notifier attendance.Notifier
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis unavailable, participant emails disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		notifier = notify.NewQueueNotifier(queue.NewQueue(rdb.Client, logger), logger)
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Event groups
	groupRepo := groups.NewRepository(pool)
	groupHandler := groups.NewHandler(groupRepo, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, groupRepo, logger)

	// Attendance confirmation and exports
	attendanceRepo := attendance.NewRepository(pool)
	attendanceService := attendance.NewService(attendanceRepo, notifier, logger)
	attendanceHandler := attendance.NewHandler(attendanceService, attendanceRepo, eventRepo, groupRepo, cfg.Export.Dir, logger)

	// Email delivery history
	emailLogRepo := emaillog.NewRepository(pool)
	emailLogHandler := emaillog.NewHandler(emailLogRepo, eventRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Participant check-in (public; access code is the credential)
	router.POST("/api/attendance/confirm", attendanceHandler.Confirm)

	// Protected API (JWT required)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		// Event groups
		api.POST("/event-groups", groupHandler.Create)
		api.GET("/event-groups", groupHandler.List)
		api.GET("/event-groups/:id", groupHandler.GetByID)
		api.PUT("/event-groups/:id", groupHandler.Update)
		api.DELETE("/event-groups/:id", groupHandler.Delete)
		api.GET("/event-groups/:id/events", eventHandler.ListByGroup)

		// Events
		api.POST("/events", eventHandler.Create)
		api.GET("/events/:id", eventHandler.GetByID)
		api.PUT("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)
		api.GET("/events/:id/attendees", eventHandler.Attendees)
		api.GET("/events/:id/emails", emailLogHandler.ListByEvent)

		// Attendance exports
		api.GET("/attendance/export/group/:groupId", attendanceHandler.ExportGroup)
		api.GET("/attendance/export/:eventId", attendanceHandler.ExportEvent)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background: event state sweeps and export file cleanup
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	sweeper := scheduler.New(eventRepo, clock.NewSystem(), time.Duration(cfg.Scheduler.IntervalSec)*time.Second, logger)
	go sweeper.Run(bgCtx)

	go func() {
		retention := time.Duration(cfg.Export.RetentionHours) * time.Hour
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-bgCtx.Done():
				return
			case <-ticker.C:
				export.CleanupOld(cfg.Export.Dir, retention, logger)
			}
		}
	}()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	bgCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
