package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/dms/backend/internal/application/reconcile"
	"github.com/dms/backend/internal/domain/reconcile"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/infrastructure/recordstore"
	"github.com/dms/backend/internal/interfaces/http/handler"
	"github.com/dms/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting DMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.Store.Backend),
	)

	store, cleanup, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize record store", zap.Error(err))
	}
	defer cleanup()

	engine := reconcile.NewEngine(store, log.Named("reconcile"))
	service := app.NewService(engine, log.Named("reconcile"))
	reconciliation := handler.NewReconciliationHandler(service)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router.New(cfg, log, reconciliation),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	log.Info("HTTP server listening", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
}

// buildStore wires the record store per configuration: seeded memory for
// development, the GORM documents table otherwise, with an optional Redis
// read-through cache in front of key lookups.
func buildStore(cfg *config.Config, log *zap.Logger) (reconcile.RecordStore, func(), error) {
	cleanup := func() {}

	if cfg.Store.Backend == "memory" {
		mem := recordstore.NewMemoryStore()
		recordstore.Seed(mem)
		return mem, cleanup, nil
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := recordstore.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return nil, cleanup, err
	}
	gormStore := recordstore.NewGormStore(db)
	if err := gormStore.AutoMigrate(); err != nil {
		return nil, cleanup, err
	}

	var store reconcile.RecordStore = gormStore
	if cfg.Store.CacheEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := recordstore.PingRedis(client); err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = client.Close() }
		store = recordstore.NewCachedStore(gormStore, client, cfg.Store.CacheTTL)
		log.Info("Record store cache enabled", zap.Duration("ttl", cfg.Store.CacheTTL))
	}
	return store, cleanup, nil
}
