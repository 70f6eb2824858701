package repository

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	// CreateTx inserts the provider together with its Contactos.
	CreateTx(tx *gorm.DB, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	FindByRFC(ctx context.Context, rfc string) (*model.Proveedor, error)
	List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Proveedor, int64, error)
	UpdateTx(tx *gorm.DB, p *model.Proveedor) error
	ReemplazarContactosTx(tx *gorm.DB, proveedorID uuid.UUID, contactos []model.ContactoProveedor) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	DB() *gorm.DB
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) DB() *gorm.DB { return r.db }

func (r *proveedorRepo) CreateTx(tx *gorm.DB, p *model.Proveedor) error {
	return tx.Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).Preload("Contactos").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) FindByRFC(ctx context.Context, rfc string) (*model.Proveedor, error) {
	var p model.Proveedor
	if err := r.db.WithContext(ctx).Where("rfc = ?", rfc).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) List(ctx context.Context, filter dto.CatalogoFilter) ([]model.Proveedor, int64, error) {
	var list []model.Proveedor
	var total int64
	q := catalogoQuery(r.db.WithContext(ctx).Model(&model.Proveedor{}), filter, "nombre", "rfc")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Contactos").Order("nombre ASC").
		Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *proveedorRepo) UpdateTx(tx *gorm.DB, p *model.Proveedor) error {
	return tx.Omit("Contactos").Save(p).Error
}

func (r *proveedorRepo) ReemplazarContactosTx(tx *gorm.DB, proveedorID uuid.UUID, contactos []model.ContactoProveedor) error {
	if err := tx.Where("proveedor_id = ?", proveedorID).Delete(&model.ContactoProveedor{}).Error; err != nil {
		return err
	}
	if len(contactos) == 0 {
		return nil
	}
	for i := range contactos {
		contactos[i].ProveedorID = proveedorID
	}
	return tx.Create(&contactos).Error
}

func (r *proveedorRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return setActivo(ctx, r.db, &model.Proveedor{}, id, activo)
}
