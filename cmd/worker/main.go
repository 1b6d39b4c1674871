// Package main runs the background email worker (participant notifications).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attendly/backend/config"
	"github.com/attendly/backend/internal/emaillog"
	"github.com/attendly/backend/internal/notify"
	"github.com/attendly/backend/internal/worker"
	"github.com/attendly/backend/pkg/database"
	"github.com/attendly/backend/pkg/queue"
	"github.com/attendly/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	mailer := notify.NewMailer(cfg.Email, logger)
	logRepo := emaillog.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	emailWorker := worker.NewEmailWorker(jobQueue, mailer, logRepo, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go emailWorker.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
