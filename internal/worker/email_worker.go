package worker

// email_worker.go
// Processes jobs from QueueEmail: purchase orders sent to providers with the
// rendered PDF attached. Sends go through the SMTP circuit breaker.

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"inventario3g/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const emailMaxAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// AdjuntoPath is relative to STORAGE_PATH.
	AdjuntoPath string `json:"adjunto_path,omitempty"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Send(to, subject, body string, adjuntos ...infra.Adjunto) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer  Sender
	storage *infra.Storage
	cb      *infra.CircuitBreaker
	rdb     *redis.Client
	backoff time.Duration
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer Sender, storage *infra.Storage, cb *infra.CircuitBreaker, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, storage: storage, cb: cb, rdb: rdb, backoff: time.Second}
}

// Process implements Handler.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	var adjuntos []infra.Adjunto
	if payload.AdjuntoPath != "" {
		data, err := w.storage.Read(payload.AdjuntoPath)
		if err != nil {
			EnviarADLQ(ctx, w.rdb, Fallo{Cola: QueueEmail, Tipo: JobEmail, Payload: raw, Motivo: "adjunto no disponible: " + err.Error()})
			return fmt.Errorf("email_worker: adjunto: %w", err)
		}
		adjuntos = append(adjuntos, infra.Adjunto{
			Nombre:      path.Base(payload.AdjuntoPath),
			ContentType: "application/pdf",
			Datos:       data,
		})
	}

	err := withRetry(ctx, emailMaxAttempts, w.backoff, func(int) error {
		return w.cb.Execute(func() error {
			return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, adjuntos...)
		})
	})
	if err != nil {
		EnviarADLQ(ctx, w.rdb, Fallo{Cola: QueueEmail, Tipo: JobEmail, Payload: raw, Motivo: err.Error(), Intentos: emailMaxAttempts})
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: email sent")
	return nil
}
