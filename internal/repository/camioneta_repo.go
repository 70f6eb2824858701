package repository

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CamionetaRepository interface {
	Create(ctx context.Context, c *model.Camioneta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Camioneta, error)
	FindByPlacas(ctx context.Context, placas string) (*model.Camioneta, error)
	List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Camioneta, int64, error)
	Update(ctx context.Context, c *model.Camioneta) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
}

type camionetaRepo struct{ db *gorm.DB }

func NewCamionetaRepository(db *gorm.DB) CamionetaRepository { return &camionetaRepo{db: db} }

func (r *camionetaRepo) Create(ctx context.Context, c *model.Camioneta) error {
	return r.db.WithContext(ctx).Omit("Equipo").Create(c).Error
}

func (r *camionetaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Camioneta, error) {
	var c model.Camioneta
	if err := r.db.WithContext(ctx).Preload("Equipo").First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *camionetaRepo) FindByPlacas(ctx context.Context, placas string) (*model.Camioneta, error) {
	var c model.Camioneta
	if err := r.db.WithContext(ctx).Where("placas = ?", placas).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *camionetaRepo) List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Camioneta, int64, error) {
	var list []model.Camioneta
	var total int64
	q := catalogoQuery(r.db.WithContext(ctx).Model(&model.Camioneta{}), filter, "nombre", "placas")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Equipo").Order("nombre ASC").
		Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *camionetaRepo) Update(ctx context.Context, c *model.Camioneta) error {
	return r.db.WithContext(ctx).Omit("Equipo").Save(c).Error
}

func (r *camionetaRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return setActivo(ctx, r.db, &model.Camioneta{}, id, activo)
}
