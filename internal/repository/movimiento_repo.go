package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStockInsuficiente is returned by AplicarTx when a delta would leave
// stock_actual below zero.
var ErrStockInsuficiente = errors.New("stock insuficiente")

type MovimientoRepository interface {
	// StockActualTx reads stock_actual holding a row lock until the tx ends.
	StockActualTx(tx *gorm.DB, articuloID uuid.UUID) (int, error)
	// AplicarTx is the only way stock changes. It locks the article row,
	// applies m.Cantidad as a signed delta, fills StockAnterior/StockNuevo
	// and inserts m.
	AplicarTx(tx *gorm.DB, m *model.Movimiento) error
	List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error)
	ListByReferencia(ctx context.Context, referenciaID uuid.UUID, tipo string) ([]model.Movimiento, error)
	DB() *gorm.DB
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) DB() *gorm.DB { return r.db }

func (r *movimientoRepo) StockActualTx(tx *gorm.DB, articuloID uuid.UUID) (int, error) {
	var a model.Articulo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "stock_actual").First(&a, "id = ?", articuloID).Error
	return a.StockActual, err
}

func (r *movimientoRepo) AplicarTx(tx *gorm.DB, m *model.Movimiento) error {
	actual, err := r.StockActualTx(tx, m.ArticuloID)
	if err != nil {
		return err
	}
	nuevo := actual + m.Cantidad
	if nuevo < 0 {
		return fmt.Errorf("articulo %s: disponible %d, requerido %d: %w",
			m.ArticuloID, actual, -m.Cantidad, ErrStockInsuficiente)
	}
	if err := tx.Model(&model.Articulo{}).Where("id = ?", m.ArticuloID).
		Updates(map[string]interface{}{"stock_actual": nuevo, "updated_at": time.Now()}).Error; err != nil {
		return err
	}
	m.StockAnterior = actual
	m.StockNuevo = nuevo
	return tx.Omit(clause.Associations).Create(m).Error
}

func (r *movimientoRepo) List(ctx context.Context, filter dto.MovimientoFilter) ([]model.Movimiento, int64, error) {
	var list []model.Movimiento
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Movimiento{})
	if filter.ArticuloID != "" {
		q = q.Where("articulo_id = ?", filter.ArticuloID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.UsuarioID != "" {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.EquipoID != "" {
		q = q.Where("equipo_id = ?", filter.EquipoID)
	}
	if filter.CamionetaID != "" {
		q = q.Where("camioneta_id = ?", filter.CamionetaID)
	}
	if filter.Folio != "" {
		q = q.Where("folio = ?", filter.Folio)
	}
	if filter.Desde != "" {
		if t, err := time.Parse("2006-01-02", filter.Desde); err == nil {
			q = q.Where("created_at >= ?", t)
		}
	}
	if filter.Hasta != "" {
		if t, err := time.Parse("2006-01-02", filter.Hasta); err == nil {
			q = q.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Articulo").Preload("Usuario").
		Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *movimientoRepo) ListByReferencia(ctx context.Context, referenciaID uuid.UUID, tipo string) ([]model.Movimiento, error) {
	var list []model.Movimiento
	err := r.db.WithContext(ctx).Preload("Articulo").
		Where("referencia_id = ? AND tipo = ?", referenciaID, tipo).
		Order("created_at ASC").Find(&list).Error
	return list, err
}
