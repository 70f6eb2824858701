package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventario3g/internal/config"
	"inventario3g/internal/infra"
	"inventario3g/internal/repository"
	"inventario3g/internal/router"
	"inventario3g/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger, pretty in dev and JSON in production
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	storage, err := infra.NewStorage(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("failed to open storage")
	}

	folios, err := infra.NewFolioGenerator(cfg.SnowflakeNode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create folio generator")
	}

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := worker.NewDispatcher(rdb)
	trabajoRepo := repository.NewTrabajoImagenRepository(db)
	articuloRepo := repository.NewArticuloRepository(db)

	mailer := infra.NewMailer(cfg)
	if !mailer.Configurado() {
		log.Warn().Msg("SMTP_HOST not set: purchase order emails will fail and land in the DLQ")
	}

	pool := worker.NewPool(rdb)
	pool.Register(worker.JobImagen, worker.NewImagenWorker(trabajoRepo, articuloRepo, storage, rdb))
	pool.Register(worker.JobEmail, worker.NewEmailWorker(mailer, storage, infra.NewCircuitBreaker(infra.DefaultCBConfig()), rdb))
	pool.Start(ctx, cfg.WorkerPoolSize)

	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		Trabajos:   trabajoRepo,
		Dispatcher: dispatcher,
	})

	r := router.New(router.Deps{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Storage:    storage,
		Folios:     folios,
		Dispatcher: dispatcher,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second, // multipart imports and images
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("Inventario 3G backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// stop workers after in-flight requests finished enqueueing
	cancel()
	pool.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
