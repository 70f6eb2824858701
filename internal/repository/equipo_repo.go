package repository

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EquipoRepository interface {
	Create(ctx context.Context, e *model.Equipo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Equipo, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Equipo, error)
	List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Equipo, int64, error)
	Update(ctx context.Context, e *model.Equipo) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
}

type equipoRepo struct{ db *gorm.DB }

func NewEquipoRepository(db *gorm.DB) EquipoRepository { return &equipoRepo{db: db} }

func (r *equipoRepo) Create(ctx context.Context, e *model.Equipo) error {
	return r.db.WithContext(ctx).Omit("Miembros").Create(e).Error
}

func (r *equipoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Equipo, error) {
	var e model.Equipo
	err := r.db.WithContext(ctx).
		Preload("Miembros", func(db *gorm.DB) *gorm.DB { return db.Where("activo = true").Order("nombre ASC") }).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipoRepo) FindByNombre(ctx context.Context, nombre string) (*model.Equipo, error) {
	var e model.Equipo
	if err := r.db.WithContext(ctx).Where("LOWER(nombre) = LOWER(?)", nombre).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *equipoRepo) List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Equipo, int64, error) {
	var list []model.Equipo
	var total int64
	q := catalogoQuery(r.db.WithContext(ctx).Model(&model.Equipo{}), filter, "nombre")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *equipoRepo) Update(ctx context.Context, e *model.Equipo) error {
	return r.db.WithContext(ctx).Omit("Miembros").Save(e).Error
}

func (r *equipoRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return setActivo(ctx, r.db, &model.Equipo{}, id, activo)
}
