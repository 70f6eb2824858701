package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueImagenes = "jobs:imagenes"
	QueueEmail    = "jobs:email"

	JobImagen = "imagen"
	JobEmail  = "email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one job payload. A returned error is logged; handlers own
// their retry and DLQ policy.
type Handler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
var errRedisNoConfigurado = errors.New("dispatcher: redis not configured")

type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueImagen pushes an image processing job.
func (d *Dispatcher) EnqueueImagen(ctx context.Context, payload ImagenJobPayload) error {
	return d.enqueue(ctx, QueueImagenes, JobImagen, payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

// Longitudes reports the pending and dead-letter lengths of a queue.
func (d *Dispatcher) Longitudes(ctx context.Context, queue string) (pendientes, dlq int64, err error) {
	if d == nil || d.rdb == nil {
		return 0, 0, errRedisNoConfigurado
	}
	if pendientes, err = d.rdb.LLen(ctx, queue).Result(); err != nil {
		return 0, 0, err
	}
	dlq, err = LongitudDLQ(ctx, d.rdb, queue)
	return pendientes, dlq, err
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return errRedisNoConfigurado
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes QueueImagenes and QueueEmail with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: make(map[string]Handler)}
}

// Register binds a job type to its handler. Call before Start.
func (p *Pool) Register(jobType string, h Handler) { p.handlers[jobType] = h }

// Start launches numWorkers goroutines. Each one blocks on BRPOP, so idle
// workers cost nothing.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Msg("worker pool started")
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	queues := []string{QueueEmail, QueueImagenes}
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil || len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		EnviarADLQ(ctx, p.rdb, Fallo{Cola: queue, Tipo: "desconocido", Motivo: "payload ilegible: " + err.Error()})
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for job type")
		EnviarADLQ(ctx, p.rdb, Fallo{Cola: queue, Tipo: job.Type, Payload: job.Payload, Motivo: "tipo de trabajo sin handler"})
		return
	}

	start := time.Now()
	if err := h.Process(ctx, job.Payload); err != nil {
		log.Warn().Err(err).Str("type", job.Type).Dur("elapsed", time.Since(start)).Msg("job failed")
		return
	}
	log.Info().Str("type", job.Type).Dur("elapsed", time.Since(start)).Msg("job processed")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2×base.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
