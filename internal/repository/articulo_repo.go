package repository

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticuloRepository defines the data access contract for articles and their
// provider links. Stock is deliberately absent: it only changes through
// MovimientoRepository.AplicarTx.
type ArticuloRepository interface {
	CreateTx(tx *gorm.DB, a *model.Articulo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error)
	FindByEAN(ctx context.Context, ean string) (*model.Articulo, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Articulo, error)
	List(ctx context.Context, filter dto.ArticuloFilter) ([]model.Articulo, int64, error)
	ListAlertas(ctx context.Context) ([]model.Articulo, error)
	// ListTodos returns every active article for export, ordered by name.
	ListTodos(ctx context.Context) ([]model.Articulo, error)
	ListConImagen(ctx context.Context) ([]model.Articulo, error)
	// Update saves catalogue fields only; stock_actual is never written.
	Update(ctx context.Context, a *model.Articulo) error
	UpdateCostoTx(tx *gorm.DB, id uuid.UUID, costo decimal.Decimal) error
	UpdateImagen(ctx context.Context, id uuid.UUID, imagen, miniatura *string) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	// SiguienteSecuenciaEAN draws from articulo_ean_seq.
	SiguienteSecuenciaEAN(ctx context.Context) (int64, error)
	CountActivos(ctx context.Context) (int64, error)
	CountBajoStock(ctx context.Context) (int64, error)

	// Provider links
	FindLink(ctx context.Context, articuloID, proveedorID uuid.UUID) (*model.ArticuloProveedor, error)
	ListLinks(ctx context.Context, articuloID uuid.UUID) ([]model.ArticuloProveedor, error)
	SaveLinkTx(tx *gorm.DB, l *model.ArticuloProveedor) error
	// ClearPreferidoTx unsets es_preferido on every other link of the article.
	ClearPreferidoTx(tx *gorm.DB, articuloID, exceptoProveedorID uuid.UUID) error
	DeleteLink(ctx context.Context, articuloID, proveedorID uuid.UUID) error
	CreateHistorialCostoTx(tx *gorm.DB, h *model.HistorialCosto) error
	ListHistorialCostos(ctx context.Context, articuloID uuid.UUID) ([]model.HistorialCosto, error)

	DB() *gorm.DB
}

type articuloRepo struct{ db *gorm.DB }

func NewArticuloRepository(db *gorm.DB) ArticuloRepository { return &articuloRepo{db: db} }

func (r *articuloRepo) DB() *gorm.DB { return r.db }

func (r *articuloRepo) CreateTx(tx *gorm.DB, a *model.Articulo) error {
	return tx.Omit(clause.Associations).Create(a).Error
}

func (r *articuloRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Articulo, error) {
	var a model.Articulo
	err := r.db.WithContext(ctx).
		Preload("Categoria").Preload("Ubicacion").Preload("Proveedores.Proveedor").
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articuloRepo) FindByEAN(ctx context.Context, ean string) (*model.Articulo, error) {
	var a model.Articulo
	err := r.db.WithContext(ctx).Preload("Categoria").Preload("Ubicacion").
		Where("codigo_ean13 = ?", ean).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articuloRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Articulo, error) {
	var list []model.Articulo
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *articuloRepo) List(ctx context.Context, filter dto.ArticuloFilter) ([]model.Articulo, int64, error) {
	var list []model.Articulo
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Articulo{})
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
	default:
		q = q.Where("activo = true")
	}
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where("nombre ILIKE ? OR codigo_ean13 LIKE ?", like, like)
	}
	if filter.CategoriaID != "" {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.UbicacionID != "" {
		q = q.Where("ubicacion_id = ?", filter.UbicacionID)
	}
	if filter.BajoStock {
		q = q.Where("stock_actual <= stock_minimo")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Categoria").Preload("Ubicacion").
		Order("nombre ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *articuloRepo) ListAlertas(ctx context.Context) ([]model.Articulo, error) {
	var list []model.Articulo
	err := r.db.WithContext(ctx).Preload("Categoria").Preload("Ubicacion").
		Where("activo = true AND stock_actual <= stock_minimo").
		Order("stock_actual - stock_minimo ASC, nombre ASC").Find(&list).Error
	return list, err
}

func (r *articuloRepo) ListTodos(ctx context.Context) ([]model.Articulo, error) {
	var list []model.Articulo
	err := r.db.WithContext(ctx).Preload("Categoria").Preload("Ubicacion").
		Where("activo = true").Order("nombre ASC").Find(&list).Error
	return list, err
}

func (r *articuloRepo) ListConImagen(ctx context.Context) ([]model.Articulo, error) {
	var list []model.Articulo
	err := r.db.WithContext(ctx).Where("activo = true AND imagen_path IS NOT NULL").Find(&list).Error
	return list, err
}

func (r *articuloRepo) Update(ctx context.Context, a *model.Articulo) error {
	return r.db.WithContext(ctx).Model(a).Omit(clause.Associations).
		Select("codigo_ean13", "nombre", "descripcion", "categoria_id", "ubicacion_id", "unidad",
			"stock_minimo", "stock_maximo", "costo_unitario", "es_herramienta", "updated_at").
		Updates(a).Error
}

func (r *articuloRepo) UpdateCostoTx(tx *gorm.DB, id uuid.UUID, costo decimal.Decimal) error {
	return tx.Model(&model.Articulo{}).Where("id = ?", id).Update("costo_unitario", costo).Error
}

func (r *articuloRepo) UpdateImagen(ctx context.Context, id uuid.UUID, imagen, miniatura *string) error {
	updates := map[string]interface{}{}
	if imagen != nil {
		updates["imagen_path"] = *imagen
	}
	if miniatura != nil {
		updates["miniatura_path"] = *miniatura
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Articulo{}).Where("id = ?", id).Updates(updates).Error
}

func (r *articuloRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return setActivo(ctx, r.db, &model.Articulo{}, id, activo)
}

func (r *articuloRepo) SiguienteSecuenciaEAN(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('articulo_ean_seq')").Scan(&n).Error
	return n, err
}

func (r *articuloRepo) CountActivos(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Articulo{}).Where("activo = true").Count(&n).Error
	return n, err
}

func (r *articuloRepo) CountBajoStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Articulo{}).
		Where("activo = true AND stock_actual <= stock_minimo").Count(&n).Error
	return n, err
}

func (r *articuloRepo) FindLink(ctx context.Context, articuloID, proveedorID uuid.UUID) (*model.ArticuloProveedor, error) {
	var l model.ArticuloProveedor
	err := r.db.WithContext(ctx).
		Where("articulo_id = ? AND proveedor_id = ?", articuloID, proveedorID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *articuloRepo) ListLinks(ctx context.Context, articuloID uuid.UUID) ([]model.ArticuloProveedor, error) {
	var links []model.ArticuloProveedor
	err := r.db.WithContext(ctx).Preload("Proveedor").
		Where("articulo_id = ?", articuloID).
		Order("es_preferido DESC, costo ASC").Find(&links).Error
	return links, err
}

func (r *articuloRepo) SaveLinkTx(tx *gorm.DB, l *model.ArticuloProveedor) error {
	return tx.Omit("Proveedor").Save(l).Error
}

func (r *articuloRepo) ClearPreferidoTx(tx *gorm.DB, articuloID, exceptoProveedorID uuid.UUID) error {
	return tx.Model(&model.ArticuloProveedor{}).
		Where("articulo_id = ? AND proveedor_id <> ? AND es_preferido", articuloID, exceptoProveedorID).
		Update("es_preferido", false).Error
}

func (r *articuloRepo) DeleteLink(ctx context.Context, articuloID, proveedorID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("articulo_id = ? AND proveedor_id = ?", articuloID, proveedorID).
		Delete(&model.ArticuloProveedor{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *articuloRepo) CreateHistorialCostoTx(tx *gorm.DB, h *model.HistorialCosto) error {
	return tx.Omit("Proveedor").Create(h).Error
}

func (r *articuloRepo) ListHistorialCostos(ctx context.Context, articuloID uuid.UUID) ([]model.HistorialCosto, error) {
	var list []model.HistorialCosto
	err := r.db.WithContext(ctx).Preload("Proveedor").
		Where("articulo_id = ?", articuloID).Order("created_at DESC").Find(&list).Error
	return list, err
}
