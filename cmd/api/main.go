package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/askhat/filesync/internal/config"
	"github.com/askhat/filesync/internal/connection"
	"github.com/askhat/filesync/internal/logger"
	"github.com/askhat/filesync/internal/metrics"
	"github.com/askhat/filesync/internal/queue"
	"github.com/askhat/filesync/internal/reconcile"
	"github.com/askhat/filesync/internal/remote"
	"github.com/askhat/filesync/internal/server"
	"github.com/askhat/filesync/internal/storage"
	"github.com/askhat/filesync/internal/transfer"
	"github.com/askhat/filesync/internal/webhook"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := storage.RunMigrations(ctx, cfg.Postgres); err != nil {
		logg.Fatal("run migrations", zap.Error(err))
	}

	dbPool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logg.Fatal("connect postgres", zap.Error(err))
	}
	defer dbPool.Close()

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		logg.Fatal("connect minio", zap.Error(err))
	}

	if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO); err != nil {
		logg.Fatal("ensure bucket", zap.Error(err))
	}

	connectionRepo := connection.NewRepository(dbPool)
	eventRepo := webhook.NewRepository(dbPool)
	recordRepo := transfer.NewRepository(dbPool)
	failureRepo := transfer.NewFailureRepository(dbPool)

	syncQueue := queue.NewPostgres(dbPool, cfg.Queue)
	metrics.RegisterQueueDepth(func() float64 {
		depthCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := syncQueue.Depth(depthCtx)
		if err != nil {
			return -1
		}
		return float64(n)
	})

	remotes := remote.NewFactory(cfg.Remote)
	ledger := transfer.NewLedger(failureRepo, logg)
	blobs := transfer.NewMinIOStore(minioClient, cfg.MinIO.Bucket)
	consumer := transfer.NewConsumer(connectionRepo, remotes, blobs, recordRepo, ledger, logg)

	workers := queue.NewWorkers(syncQueue, consumer.Process, cfg.Queue.Workers, logg)
	workers.Start(ctx)

	sweeper := reconcile.NewSweeper(connectionRepo, recordRepo, remotes, syncQueue, logg)
	intake := webhook.NewIntake(eventRepo, connectionRepo, syncQueue, sweeper, logg)

	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		DB:          dbPool,
		ObjectStore: minioClient,
		Intake:      intake,
		Records:     recordRepo,
		Queue:       syncQueue,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("filesync API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
	workers.Wait()
}
