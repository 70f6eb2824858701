package repository

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UbicacionRepository interface {
	Create(ctx context.Context, u *model.Ubicacion) error
	List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Ubicacion, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ubicacion, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Ubicacion, error)
	Update(ctx context.Context, u *model.Ubicacion) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	CountArticulosActivos(ctx context.Context, id uuid.UUID) (int64, error)
}

type ubicacionRepo struct{ db *gorm.DB }

func NewUbicacionRepository(db *gorm.DB) UbicacionRepository { return &ubicacionRepo{db: db} }

func (r *ubicacionRepo) Create(ctx context.Context, u *model.Ubicacion) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *ubicacionRepo) List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Ubicacion, int64, error) {
	var list []model.Ubicacion
	var total int64
	q := catalogoQuery(r.db.WithContext(ctx).Model(&model.Ubicacion{}), filter, "codigo", "descripcion")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("codigo ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *ubicacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Ubicacion, error) {
	var u model.Ubicacion
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ubicacionRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Ubicacion, error) {
	var u model.Ubicacion
	if err := r.db.WithContext(ctx).Where("UPPER(codigo) = UPPER(?)", codigo).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ubicacionRepo) Update(ctx context.Context, u *model.Ubicacion) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *ubicacionRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return setActivo(ctx, r.db, &model.Ubicacion{}, id, activo)
}

func (r *ubicacionRepo) CountArticulosActivos(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Articulo{}).
		Where("ubicacion_id = ? AND activo = true", id).Count(&n).Error
	return n, err
}
