package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"inventario3g/internal/dto"
	"inventario3g/internal/infra"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"
	"inventario3g/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaxImagenBytes caps uploaded originals.
const MaxImagenBytes = 10 << 20

// ColaImagenes is satisfied by *worker.Dispatcher.
type ColaImagenes interface {
	EnqueueImagen(ctx context.Context, payload worker.ImagenJobPayload) error
	Longitudes(ctx context.Context, queue string) (pendientes, dlq int64, err error)
}

type ImagenService interface {
	// Subir stores the original and queues its processing job.
	Subir(ctx context.Context, articuloID uuid.UUID, data []byte) (*dto.TrabajoImagenResponse, error)
	// Ruta returns the absolute path of the image or thumbnail of an article.
	Ruta(ctx context.Context, articuloID uuid.UUID, miniatura bool) (string, error)
	Masivo(ctx context.Context, req dto.ProcesamientoMasivoRequest) (*dto.ProcesamientoMasivoResponse, error)
	Estado(ctx context.Context) (*dto.EstadoProcesamientoResponse, error)
}

type imagenService struct {
	articulos repository.ArticuloRepository
	trabajos  repository.TrabajoImagenRepository
	storage   *infra.Storage
	cola      ColaImagenes
	now       func() time.Time
}

func NewImagenService(articulos repository.ArticuloRepository, trabajos repository.TrabajoImagenRepository, storage *infra.Storage, cola ColaImagenes) ImagenService {
	return &imagenService{articulos: articulos, trabajos: trabajos, storage: storage, cola: cola, now: time.Now}
}

func mapTrabajo(t model.TrabajoImagen) dto.TrabajoImagenResponse {
	return dto.TrabajoImagenResponse{
		ID:         t.ID.String(),
		ArticuloID: t.ArticuloID.String(),
		Estado:     t.Estado,
		Intentos:   t.Intentos,
	}
}

func (s *imagenService) Subir(ctx context.Context, articuloID uuid.UUID, data []byte) (*dto.TrabajoImagenResponse, error) {
	if len(data) == 0 {
		return nil, invalido("la imagen esta vacia")
	}
	if len(data) > MaxImagenBytes {
		return nil, invalido("la imagen supera %d MB", MaxImagenBytes>>20)
	}
	switch ct := http.DetectContentType(data); ct {
	case "image/jpeg", "image/png":
	default:
		return nil, invalido("formato %s no soportado, use jpeg o png", ct)
	}
	if _, err := s.articulos.FindByID(ctx, articuloID); err != nil {
		return nil, traducir(err, "articulo")
	}

	rel, err := s.storage.Save(infra.DirOriginales, articuloID.String(), data)
	if err != nil {
		return nil, err
	}
	if err := s.articulos.UpdateImagen(ctx, articuloID, &rel, nil); err != nil {
		return nil, err
	}
	t, err := s.encolar(ctx, articuloID)
	if err != nil {
		return nil, err
	}
	resp := mapTrabajo(*t)
	return &resp, nil
}

// encolar creates a pendiente job and pushes it. If the push fails the job is
// left in error with an immediate retry so the retry cron picks it up.
func (s *imagenService) encolar(ctx context.Context, articuloID uuid.UUID) (*model.TrabajoImagen, error) {
	t := &model.TrabajoImagen{ArticuloID: articuloID, Estado: model.ImagenPendiente}
	if err := s.trabajos.Create(ctx, t); err != nil {
		return nil, err
	}
	err := s.cola.EnqueueImagen(ctx, worker.ImagenJobPayload{TrabajoID: t.ID.String(), ArticuloID: articuloID.String()})
	if err == nil {
		return t, nil
	}

	log.Warn().Err(err).Str("trabajo_id", t.ID.String()).Msg("no se pudo encolar trabajo de imagen")
	now := s.now()
	msg := err.Error()
	t.Estado = model.ImagenError
	t.UltimoError = &msg
	t.SiguienteIntento = &now
	if err := s.trabajos.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *imagenService) Ruta(ctx context.Context, articuloID uuid.UUID, miniatura bool) (string, error) {
	a, err := s.articulos.FindByID(ctx, articuloID)
	if err != nil {
		return "", traducir(err, "articulo")
	}
	rel := a.ImagenPath
	if miniatura {
		rel = a.MiniaturaPath
	}
	if rel == nil {
		return "", fmt.Errorf("%w: el articulo no tiene imagen", ErrNoEncontrado)
	}
	return s.storage.Abs(*rel)
}

func (s *imagenService) Masivo(ctx context.Context, req dto.ProcesamientoMasivoRequest) (*dto.ProcesamientoMasivoResponse, error) {
	list, err := s.articulos.ListConImagen(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	activos, err := s.trabajos.ArticulosConTrabajoActivo(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProcesamientoMasivoResponse{}
	for _, a := range list {
		if activos[a.ID] {
			continue
		}
		if req.SoloPendientes && a.MiniaturaPath != nil {
			continue
		}
		if _, err := s.encolar(ctx, a.ID); err != nil {
			return nil, err
		}
		resp.Encolados++
	}
	log.Info().Int("encolados", resp.Encolados).Bool("solo_pendientes", req.SoloPendientes).Msg("procesamiento masivo de imagenes")
	return resp, nil
}

func (s *imagenService) Estado(ctx context.Context) (*dto.EstadoProcesamientoResponse, error) {
	porEstado, err := s.trabajos.CountPorEstado(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range []string{model.ImagenPendiente, model.ImagenProcesando, model.ImagenCompletado, model.ImagenError} {
		if _, ok := porEstado[e]; !ok {
			porEstado[e] = 0
		}
	}
	resp := &dto.EstadoProcesamientoResponse{PorEstado: porEstado}
	pendientes, dlq, err := s.cola.Longitudes(ctx, worker.QueueImagenes)
	if err != nil {
		log.Warn().Err(err).Msg("no se pudo leer la cola de imagenes")
	} else {
		resp.EnCola, resp.EnDLQ = pendientes, dlq
	}
	return resp, nil
}
