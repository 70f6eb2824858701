package worker

// imagen_worker.go
// Processes jobs from QueueImagenes: reads the stored original, writes the
// 1024px rendition and the 256px thumbnail, and records the outcome on the
// TrabajoImagen row. Failures are rescheduled by retry_cron.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inventario3g/internal/infra"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxIntentosImagen is how many attempts a job gets before the DLQ.
const MaxIntentosImagen = 3

// ImagenJobPayload is the job envelope sent to QueueImagenes.
type ImagenJobPayload struct {
	TrabajoID  string `json:"trabajo_id"`
	ArticuloID string `json:"articulo_id"`
}

// RutaOriginal is where the uploaded original of an article is stored.
func RutaOriginal(articuloID uuid.UUID) string {
	return infra.DirOriginales + "/" + articuloID.String()
}

// ImagenWorker turns uploaded originals into the served renditions.
type ImagenWorker struct {
	trabajos  repository.TrabajoImagenRepository
	articulos repository.ArticuloRepository
	storage   *infra.Storage
	rdb       *redis.Client
	now       func() time.Time
}

func NewImagenWorker(
	trabajos repository.TrabajoImagenRepository,
	articulos repository.ArticuloRepository,
	storage *infra.Storage,
	rdb *redis.Client,
) *ImagenWorker {
	return &ImagenWorker{trabajos: trabajos, articulos: articulos, storage: storage, rdb: rdb, now: time.Now}
}

// Process implements Handler.
func (w *ImagenWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ImagenJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("imagen_worker: invalid payload: %w", err)
	}
	trabajoID, err := uuid.Parse(payload.TrabajoID)
	if err != nil {
		return fmt.Errorf("imagen_worker: trabajo_id: %w", err)
	}

	trabajo, err := w.trabajos.FindByID(ctx, trabajoID)
	if err != nil {
		return fmt.Errorf("imagen_worker: trabajo %s: %w", trabajoID, err)
	}
	if trabajo.Estado == model.ImagenCompletado {
		return nil
	}

	trabajo.Estado = model.ImagenProcesando
	trabajo.Intentos++
	if err := w.trabajos.Update(ctx, trabajo); err != nil {
		return err
	}

	if err := w.procesar(ctx, trabajo.ArticuloID); err != nil {
		w.registrarFallo(ctx, trabajo, raw, err)
		return err
	}

	trabajo.Estado = model.ImagenCompletado
	trabajo.UltimoError = nil
	trabajo.SiguienteIntento = nil
	if err := w.trabajos.Update(ctx, trabajo); err != nil {
		return err
	}
	log.Info().
		Str("trabajo_id", trabajo.ID.String()).
		Str("articulo_id", trabajo.ArticuloID.String()).
		Int("intentos", trabajo.Intentos).
		Msg("imagen_worker: imagen procesada")
	return nil
}

func (w *ImagenWorker) procesar(ctx context.Context, articuloID uuid.UUID) error {
	original, err := w.storage.Read(RutaOriginal(articuloID))
	if err != nil {
		return fmt.Errorf("leer original: %w", err)
	}
	out, err := infra.ProcesarImagen(original)
	if err != nil {
		return err
	}
	imagen, err := w.storage.Save(infra.DirProcesadas, articuloID.String()+".jpg", out.Imagen)
	if err != nil {
		return err
	}
	mini, err := w.storage.Save(infra.DirMiniaturas, articuloID.String()+".jpg", out.Miniatura)
	if err != nil {
		return err
	}
	return w.articulos.UpdateImagen(ctx, articuloID, &imagen, &mini)
}

func (w *ImagenWorker) registrarFallo(ctx context.Context, t *model.TrabajoImagen, raw json.RawMessage, cause error) {
	msg := cause.Error()
	t.Estado = model.ImagenError
	t.UltimoError = &msg

	if t.Intentos >= MaxIntentosImagen {
		t.SiguienteIntento = nil
		EnviarADLQ(ctx, w.rdb, Fallo{
			Cola: QueueImagenes, Tipo: JobImagen, Payload: raw, Intentos: t.Intentos,
			Motivo: fmt.Sprintf("max intentos (%d): %s", MaxIntentosImagen, msg),
		})
	} else {
		next := w.now().Add(BackoffImagen(t.Intentos))
		t.SiguienteIntento = &next
	}

	if err := w.trabajos.Update(ctx, t); err != nil {
		log.Error().Err(err).Str("trabajo_id", t.ID.String()).Msg("imagen_worker: failed to record error")
	}
}

// BackoffImagen is the wait after the given failed attempt: 1m, 2m, 4m...
func BackoffImagen(intento int) time.Duration {
	if intento < 1 {
		intento = 1
	}
	return time.Minute << uint(intento-1)
}
