package worker

// retry_cron.go
// Background goroutine that periodically re-enqueues image jobs left in
// estado='error' whose siguiente_intento is in the past.

import (
	"context"
	"time"

	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 50
)

// Encolador is satisfied by *Dispatcher.
type Encolador interface {
	EnqueueImagen(ctx context.Context, payload ImagenJobPayload) error
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Trabajos   repository.TrabajoImagenRepository
	Dispatcher Encolador
	Now        func() time.Time
}

// StartRetryCron ticks every 30s until ctx is cancelled.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				ProcessRetries(ctx, cfg)
			}
		}
	}()
}

// ProcessRetries re-enqueues due jobs and returns how many were requeued.
func ProcessRetries(ctx context.Context, cfg RetryCronConfig) int {
	now := time.Now()
	if cfg.Now != nil {
		now = cfg.Now()
	}
	trabajos, err := cfg.Trabajos.ListVencidos(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query due jobs")
		return 0
	}

	requeued := 0
	for i := range trabajos {
		t := &trabajos[i]
		if t.Intentos >= MaxIntentosImagen {
			continue
		}
		t.Estado = model.ImagenPendiente
		t.SiguienteIntento = nil
		if err := cfg.Trabajos.Update(ctx, t); err != nil {
			log.Error().Err(err).Str("trabajo_id", t.ID.String()).Msg("retry_cron: update failed")
			continue
		}
		payload := ImagenJobPayload{TrabajoID: t.ID.String(), ArticuloID: t.ArticuloID.String()}
		if err := cfg.Dispatcher.EnqueueImagen(ctx, payload); err != nil {
			log.Error().Err(err).Str("trabajo_id", t.ID.String()).Msg("retry_cron: enqueue failed")
			next := now.Add(time.Minute)
			t.Estado = model.ImagenError
			t.SiguienteIntento = &next
			_ = cfg.Trabajos.Update(ctx, t)
			continue
		}
		requeued++
	}
	if requeued > 0 {
		log.Info().Int("count", requeued).Msg("retry_cron: image jobs requeued")
	}
	return requeued
}
