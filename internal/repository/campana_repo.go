package repository

import (
	"context"

	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CampanaRepository interface {
	Create(ctx context.Context, c *model.Campana) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Campana, error)
	FindByNombreAnio(ctx context.Context, nombre string, anio int) (*model.Campana, error)
	List(ctx context.Context, anio int) ([]model.Campana, error)
	// ListCeldas orders by CampanaCelda.Orden, the first-insert position.
	ListCeldas(ctx context.Context, campanaID uuid.UUID) ([]model.CampanaCelda, error)
	UpsertCeldasTx(tx *gorm.DB, celdas []model.CampanaCelda) error
	DeleteCelda(ctx context.Context, campanaID, celdaID uuid.UUID) error
	DB() *gorm.DB
}

type campanaRepo struct{ db *gorm.DB }

func NewCampanaRepository(db *gorm.DB) CampanaRepository { return &campanaRepo{db: db} }

func (r *campanaRepo) DB() *gorm.DB { return r.db }

func (r *campanaRepo) Create(ctx context.Context, c *model.Campana) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *campanaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Campana, error) {
	var c model.Campana
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *campanaRepo) FindByNombreAnio(ctx context.Context, nombre string, anio int) (*model.Campana, error) {
	var c model.Campana
	err := r.db.WithContext(ctx).Where("LOWER(nombre) = LOWER(?) AND anio = ?", nombre, anio).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *campanaRepo) List(ctx context.Context, anio int) ([]model.Campana, error) {
	var list []model.Campana
	q := r.db.WithContext(ctx)
	if anio > 0 {
		q = q.Where("anio = ?", anio)
	}
	err := q.Order("anio DESC, nombre ASC").Find(&list).Error
	return list, err
}

func (r *campanaRepo) ListCeldas(ctx context.Context, campanaID uuid.UUID) ([]model.CampanaCelda, error) {
	var list []model.CampanaCelda
	err := r.db.WithContext(ctx).Where("campana_id = ?", campanaID).
		Order("orden ASC").Find(&list).Error
	return list, err
}

func (r *campanaRepo) UpsertCeldasTx(tx *gorm.DB, celdas []model.CampanaCelda) error {
	if len(celdas) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campana_id"}, {Name: "fila"}, {Name: "columna"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "estado", "nota", "actualizado_por", "updated_at"}),
	}).Create(&celdas).Error
}

func (r *campanaRepo) DeleteCelda(ctx context.Context, campanaID, celdaID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND campana_id = ?", celdaID, campanaID).
		Delete(&model.CampanaCelda{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
