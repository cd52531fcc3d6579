package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"branch-pos-service/internal/config"
	"branch-pos-service/internal/db"
	httpapi "branch-pos-service/internal/http"
	"branch-pos-service/internal/logger"
	"branch-pos-service/internal/migrate"
	"branch-pos-service/internal/queue"
	staffsync "branch-pos-service/internal/sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	remapped, err := migrate.ForwardDeliveryStatusRemap(ctx, pool)
	if err != nil {
		log.Fatal("delivery status remap failed", zap.Error(err))
	}
	if remapped > 0 {
		log.Info("delivery status remap applied", zap.Int64("rows", remapped))
	}

	runCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var queueClient *queue.Client
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := queue.EnsureEventTopology(qc); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq topology failed", zap.Error(err))
				}
				log.Warn("rabbitmq topology failed; continuing without events", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}

		queueClient = qc
		if qc != nil {
			defer qc.Close()
		}

		if queueClient != nil {
			if cfg.RabbitMQWorkerMode == "daemon" {
				log.Info("order event recorder enabled", zap.String("queue", queue.NotificationsQueue))
				go func() {
					err := queueClient.ConsumeWithRetry(runCtx, queue.NotificationsQueue, func(ctx context.Context, body []byte) error {
						return queue.RecordOrderEvent(ctx, pool, body)
					}, 5, 5*time.Second, log)
					if err != nil && !errors.Is(err, context.Canceled) {
						log.Error("consumer stopped", zap.Error(err))
					}
				}()
			} else {
				log.Info("order event recorder disabled", zap.String("mode", cfg.RabbitMQWorkerMode))
			}
		}
	} else {
		log.Info("order events disabled (RABBITMQ_URL is empty)")
	}

	var reconciler *staffsync.Reconciler
	if cfg.CentralDatabaseURL != "" {
		central, err := db.NewPool(ctx, cfg.CentralDatabaseURL)
		if err != nil {
			log.Fatal("central database connection failed", zap.Error(err))
		}
		defer central.Close()

		reconciler = staffsync.NewReconciler(central, log)
		scheduler, err := reconciler.Schedule(runCtx, cfg.StaffSyncInterval)
		if err != nil {
			log.Fatal("staff reconciler failed to start", zap.Error(err))
		}
		defer func() {
			_ = scheduler.Shutdown()
			reconciler.Close()
		}()
	} else {
		log.Info("staff sync disabled (CENTRAL_DATABASE_URL is empty)")
	}

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(pool, log, cfg, queueClient),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("branch pos service listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("branch", cfg.BranchCode))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopWorkers()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
