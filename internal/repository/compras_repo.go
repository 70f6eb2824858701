package repository

import (
	"context"
	"fmt"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ─── Solicitudes de compra ───────────────────────────────────────────────────

type SolicitudRepository interface {
	CreateTx(tx *gorm.DB, s *model.SolicitudCompra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SolicitudCompra, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SolicitudCompra, error)
	List(ctx context.Context, filter dto.SolicitudFilter) ([]model.SolicitudCompra, int64, error)
	// ExisteAbiertaTx reports whether the article has a pendiente or en_orden request.
	ExisteAbiertaTx(tx *gorm.DB, articuloID uuid.UUID) (bool, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
	VincularOrdenTx(tx *gorm.DB, ids []uuid.UUID, ordenID uuid.UUID) error
	CompletarPorOrdenTx(tx *gorm.DB, ordenID uuid.UUID) error
	// ListPorOrdenTx locks the non-cancelled requests linked to the order.
	ListPorOrdenTx(tx *gorm.DB, ordenID uuid.UUID) ([]model.SolicitudCompra, error)
	// FindPendienteTx locks the unlinked pendiente request of that origin for
	// the article, skipping excluir. gorm.ErrRecordNotFound when there is none.
	FindPendienteTx(tx *gorm.DB, articuloID uuid.UUID, origen string, excluir uuid.UUID) (*model.SolicitudCompra, error)
	// UpdateTx writes estado, cantidad and orden_compra_id.
	UpdateTx(tx *gorm.DB, s *model.SolicitudCompra) error
	CountPendientes(ctx context.Context) (int64, error)
}

type solicitudRepo struct{ db *gorm.DB }

func NewSolicitudRepository(db *gorm.DB) SolicitudRepository { return &solicitudRepo{db: db} }

func (r *solicitudRepo) CreateTx(tx *gorm.DB, s *model.SolicitudCompra) error {
	return tx.Omit("Articulo").Create(s).Error
}

func (r *solicitudRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SolicitudCompra, error) {
	var s model.SolicitudCompra
	if err := r.db.WithContext(ctx).Preload("Articulo").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *solicitudRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SolicitudCompra, error) {
	var list []model.SolicitudCompra
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Preload("Articulo").Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *solicitudRepo) List(ctx context.Context, filter dto.SolicitudFilter) ([]model.SolicitudCompra, int64, error) {
	var list []model.SolicitudCompra
	var total int64
	q := r.db.WithContext(ctx).Model(&model.SolicitudCompra{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ArticuloID != "" {
		q = q.Where("articulo_id = ?", filter.ArticuloID)
	}
	if filter.Origen != "" {
		q = q.Where("origen = ?", filter.Origen)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Articulo").Order("created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *solicitudRepo) ExisteAbiertaTx(tx *gorm.DB, articuloID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.SolicitudCompra{}).
		Where("articulo_id = ? AND estado IN ?", articuloID,
			[]string{model.SolicitudPendiente, model.SolicitudEnOrden}).
		Count(&n).Error
	return n > 0, err
}

func (r *solicitudRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).Model(&model.SolicitudCompra{}).Where("id = ?", id).
		Update("estado", estado).Error
}

func (r *solicitudRepo) VincularOrdenTx(tx *gorm.DB, ids []uuid.UUID, ordenID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Model(&model.SolicitudCompra{}).Where("id IN ?", ids).
		Updates(map[string]interface{}{"estado": model.SolicitudEnOrden, "orden_compra_id": ordenID}).Error
}

func (r *solicitudRepo) CompletarPorOrdenTx(tx *gorm.DB, ordenID uuid.UUID) error {
	return tx.Model(&model.SolicitudCompra{}).
		Where("orden_compra_id = ? AND estado = ?", ordenID, model.SolicitudEnOrden).
		Update("estado", model.SolicitudCompletada).Error
}

func (r *solicitudRepo) ListPorOrdenTx(tx *gorm.DB, ordenID uuid.UUID) ([]model.SolicitudCompra, error) {
	var list []model.SolicitudCompra
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("orden_compra_id = ? AND estado <> ?", ordenID, model.SolicitudCancelada).
		Order("created_at ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *solicitudRepo) FindPendienteTx(tx *gorm.DB, articuloID uuid.UUID, origen string, excluir uuid.UUID) (*model.SolicitudCompra, error) {
	var s model.SolicitudCompra
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("articulo_id = ? AND origen = ? AND estado = ? AND orden_compra_id IS NULL AND id <> ?",
			articuloID, origen, model.SolicitudPendiente, excluir).
		Order("created_at ASC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *solicitudRepo) UpdateTx(tx *gorm.DB, s *model.SolicitudCompra) error {
	return tx.Model(s).Select("estado", "cantidad", "orden_compra_id").Updates(s).Error
}

func (r *solicitudRepo) CountPendientes(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SolicitudCompra{}).
		Where("estado = ?", model.SolicitudPendiente).Count(&n).Error
	return n, err
}

// ─── Ordenes de compra ───────────────────────────────────────────────────────

type OrdenCompraRepository interface {
	CreateTx(tx *gorm.DB, o *model.OrdenCompra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenCompra, error)
	// FindByIDTx locks the order row so concurrent receptions serialize.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.OrdenCompra, error)
	List(ctx context.Context, filter dto.OrdenFilter) ([]model.OrdenCompra, int64, error)
	// SiguienteFolioTx returns the next OC-YYYY-NNNN for the year.
	SiguienteFolioTx(tx *gorm.DB, anio int) (string, error)
	UpdateTx(tx *gorm.DB, o *model.OrdenCompra) error
	ReemplazarItemsTx(tx *gorm.DB, ordenID uuid.UUID, items []model.OrdenCompraItem) error
	UpdateItemRecibidoTx(tx *gorm.DB, itemID uuid.UUID, recibida int) error
	CountPorEstado(ctx context.Context) (map[string]int64, error)
	DB() *gorm.DB
}

type ordenCompraRepo struct{ db *gorm.DB }

func NewOrdenCompraRepository(db *gorm.DB) OrdenCompraRepository { return &ordenCompraRepo{db: db} }

func (r *ordenCompraRepo) DB() *gorm.DB { return r.db }

func (r *ordenCompraRepo) CreateTx(tx *gorm.DB, o *model.OrdenCompra) error {
	return tx.Omit("Proveedor", "Solicitudes", "Items.Articulo").Create(o).Error
}

func preloadOrden(db *gorm.DB) *gorm.DB {
	return db.Preload("Proveedor").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Items.Articulo").
		Preload("Solicitudes")
}

func (r *ordenCompraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenCompra, error) {
	var o model.OrdenCompra
	if err := preloadOrden(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ordenCompraRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.OrdenCompra, error) {
	var lock model.OrdenCompra
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&lock, "id = ?", id).Error; err != nil {
		return nil, err
	}
	var o model.OrdenCompra
	if err := preloadOrden(tx).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ordenCompraRepo) List(ctx context.Context, filter dto.OrdenFilter) ([]model.OrdenCompra, int64, error) {
	var list []model.OrdenCompra
	var total int64
	q := r.db.WithContext(ctx).Model(&model.OrdenCompra{})
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ProveedorID != "" {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	if filter.Q != "" {
		q = q.Where("folio ILIKE ?", "%"+filter.Q+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Proveedor").Preload("Items").Order("created_at DESC").
		Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *ordenCompraRepo) SiguienteFolioTx(tx *gorm.DB, anio int) (string, error) {
	// serialize folio allocation per year for the rest of the tx
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(0x4f43)<<16|int64(anio)).Error; err != nil {
		return "", err
	}
	prefijo := fmt.Sprintf("OC-%d-", anio)
	// numeric max: OC-2026-10000 sorts before OC-2026-9999 as text
	var ultimo int
	err := tx.Model(&model.OrdenCompra{}).
		Where("folio LIKE ?", prefijo+"%").
		Select("COALESCE(MAX(CAST(split_part(folio, '-', 3) AS integer)), 0)").Scan(&ultimo).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefijo, ultimo+1), nil
}

func (r *ordenCompraRepo) UpdateTx(tx *gorm.DB, o *model.OrdenCompra) error {
	return tx.Omit(clause.Associations).Save(o).Error
}

func (r *ordenCompraRepo) ReemplazarItemsTx(tx *gorm.DB, ordenID uuid.UUID, items []model.OrdenCompraItem) error {
	if err := tx.Where("orden_compra_id = ?", ordenID).Delete(&model.OrdenCompraItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrdenCompraID = ordenID
	}
	return tx.Omit("Articulo").Create(&items).Error
}

func (r *ordenCompraRepo) UpdateItemRecibidoTx(tx *gorm.DB, itemID uuid.UUID, recibida int) error {
	return tx.Model(&model.OrdenCompraItem{}).Where("id = ?", itemID).
		Update("cantidad_recibida", recibida).Error
}

func (r *ordenCompraRepo) CountPorEstado(ctx context.Context) (map[string]int64, error) {
	return countPorEstado(ctx, r.db, &model.OrdenCompra{})
}

// countPorEstado groups a table with an estado column.
func countPorEstado(ctx context.Context, db *gorm.DB, m interface{}) (map[string]int64, error) {
	var rows []struct {
		Estado string
		Total  int64
	}
	err := db.WithContext(ctx).Model(m).Select("estado, COUNT(*) AS total").Group("estado").Scan(&rows).Error
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Estado] = row.Total
	}
	return out, err
}
