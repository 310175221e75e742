package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"savora-admin-service/internal/config"
	"savora-admin-service/internal/db"
	"savora-admin-service/internal/docstore"
	httpapi "savora-admin-service/internal/http"
	"savora-admin-service/internal/logger"
	"savora-admin-service/internal/queue"
	"savora-admin-service/internal/reporting"
	"savora-admin-service/internal/storage"
	"savora-admin-service/internal/ws"

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

	store := docstore.New(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("schema setup failed", zap.Error(err))
	}

	var queueClient *queue.Client
	if cfg.RabbitMQURL != "" {
		log.Info("rabbitmq enabled", zap.String("eventsQueue", queue.NotificationQueue))
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := queue.EnsureTopology(qc); err != nil {
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
	} else {
		log.Info("status events disabled (RABBITMQ_URL is empty)")
	}

	var objects *storage.ObjectStore
	if cfg.ObjectStoreBucket != "" {
		objects, err = storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
		})
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("object store setup failed", zap.Error(err))
			}
			log.Warn("object store setup failed; continuing without uploads", zap.Error(err))
			objects = nil
		}
	} else {
		log.Info("uploads disabled (OBJECT_STORE_BUCKET is empty)")
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	subscriber := docstore.NewSubscriber(store, log, cfg.SnapshotPollInterval)
	reports := reporting.NewController(store, subscriber, log)
	wsServer := ws.New(log, cfg, reports)

	go func() {
		if err := reports.Run(runCtx); err != nil {
			log.Error("report controller stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := reports.RefreshFavorites(runCtx); err != nil {
			log.Warn("initial favorites load failed", zap.Error(err))
		}
	}()

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(store, log, cfg, queueClient, reports, objects, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("admin api ready", zap.String("base", "/api"))
		log.Info("admin ws ready", zap.String("base", "/ws"))
		log.Info("admin service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancelRun()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
