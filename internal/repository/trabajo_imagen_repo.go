package repository

import (
	"context"
	"time"

	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TrabajoImagenRepository interface {
	Create(ctx context.Context, t *model.TrabajoImagen) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TrabajoImagen, error)
	Update(ctx context.Context, t *model.TrabajoImagen) error
	// ListVencidos returns error jobs whose siguiente_intento has passed.
	ListVencidos(ctx context.Context, now time.Time, limit int) ([]model.TrabajoImagen, error)
	// ArticulosConTrabajoActivo returns the subset of ids with a pendiente or procesando job.
	ArticulosConTrabajoActivo(ctx context.Context, articuloIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CountPorEstado(ctx context.Context) (map[string]int64, error)
}

type trabajoImagenRepo struct{ db *gorm.DB }

func NewTrabajoImagenRepository(db *gorm.DB) TrabajoImagenRepository {
	return &trabajoImagenRepo{db: db}
}

func (r *trabajoImagenRepo) Create(ctx context.Context, t *model.TrabajoImagen) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *trabajoImagenRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TrabajoImagen, error) {
	var t model.TrabajoImagen
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *trabajoImagenRepo) Update(ctx context.Context, t *model.TrabajoImagen) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *trabajoImagenRepo) ListVencidos(ctx context.Context, now time.Time, limit int) ([]model.TrabajoImagen, error) {
	var list []model.TrabajoImagen
	err := r.db.WithContext(ctx).
		Where("estado = ? AND siguiente_intento IS NOT NULL AND siguiente_intento <= ?", model.ImagenError, now).
		Order("siguiente_intento ASC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *trabajoImagenRepo) ArticulosConTrabajoActivo(ctx context.Context, articuloIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool)
	if len(articuloIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.TrabajoImagen{}).
		Where("articulo_id IN ? AND estado IN ?", articuloIDs,
			[]string{model.ImagenPendiente, model.ImagenProcesando}).
		Distinct("articulo_id").Pluck("articulo_id", &ids).Error
	for _, id := range ids {
		out[id] = true
	}
	return out, err
}

func (r *trabajoImagenRepo) CountPorEstado(ctx context.Context) (map[string]int64, error) {
	return countPorEstado(ctx, r.db, &model.TrabajoImagen{})
}
