package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces dead-letter lists: dlq:jobs:imagenes, dlq:jobs:email.
const DLQPrefix = "dlq:"

// dlqMaxEntries caps each dead-letter list; older entries are trimmed.
const dlqMaxEntries = 1000

// Fallo is a job that will not be retried automatically.
type Fallo struct {
	Cola     string          `json:"cola"`
	Tipo     string          `json:"tipo"`
	Payload  json.RawMessage `json:"payload"`
	Motivo   string          `json:"motivo"`
	Intentos int             `json:"intentos"`
	FechaUTC time.Time       `json:"fecha_utc"`
}

// EnviarADLQ parks f in dlq:{cola}. Errors are logged, never returned: the
// caller already failed and has nothing better to do with a second error.
func EnviarADLQ(ctx context.Context, rdb *redis.Client, f Fallo) {
	evt := log.Warn().Str("cola", f.Cola).Str("tipo", f.Tipo).Str("motivo", f.Motivo).Int("intentos", f.Intentos)
	if rdb == nil {
		evt.Msg("dlq: redis not configured, entry dropped")
		return
	}
	if f.FechaUTC.IsZero() {
		f.FechaUTC = time.Now().UTC()
	}
	if len(f.Payload) == 0 {
		f.Payload = json.RawMessage(`null`)
	}
	data, err := json.Marshal(f)
	if err != nil {
		log.Error().Err(err).Str("cola", f.Cola).Msg("dlq: marshal")
		return
	}

	key := DLQPrefix + f.Cola
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, dlqMaxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed")
		return
	}
	evt.Msg("dlq: job parked")
}

// LongitudDLQ returns how many entries dlq:{cola} holds.
func LongitudDLQ(ctx context.Context, rdb *redis.Client, cola string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+cola).Result()
}
