package repository

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoriaRepository defines CRUD operations for Categoria.
type CategoriaRepository interface {
	Create(ctx context.Context, c *model.Categoria) error
	List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Categoria, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	FindByNombre(ctx context.Context, nombre string) (*model.Categoria, error)
	Update(ctx context.Context, c *model.Categoria) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
}

type categoriaRepository struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository {
	return &categoriaRepository{db: db}
}

func (r *categoriaRepository) Create(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepository) List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Categoria, int64, error) {
	var list []model.Categoria
	var total int64
	q := catalogoQuery(r.db.WithContext(ctx).Model(&model.Categoria{}), filter, "nombre")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *categoriaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepository) FindByNombre(ctx context.Context, nombre string) (*model.Categoria, error) {
	var c model.Categoria
	if err := r.db.WithContext(ctx).Where("LOWER(nombre) = LOWER(?)", nombre).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepository) Update(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoriaRepository) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return setActivo(ctx, r.db, &model.Categoria{}, id, activo)
}

// catalogoQuery applies the q / incluir_inactivos filter shared by the catalogues.
func catalogoQuery(q *gorm.DB, filter dto.CatalogoFilter, searchCols ...string) *gorm.DB {
	if !filter.IncluirInactivos {
		q = q.Where("activo = true")
	}
	if filter.Q != "" && len(searchCols) > 0 {
		like := "%" + filter.Q + "%"
		cond := ilike(searchCols[0])
		args := []interface{}{like}
		for _, c := range searchCols[1:] {
			cond += " OR " + ilike(c)
			args = append(args, like)
		}
		q = q.Where(cond, args...)
	}
	return q
}

func ilike(col string) string { return col + " ILIKE ?" }

func setActivo(ctx context.Context, db *gorm.DB, m interface{}, id uuid.UUID, activo bool) error {
	res := db.WithContext(ctx).Model(m).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
