package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Articulo is an inventory SKU. StockActual is only ever changed through
// MovimientoRepository so that every change leaves a Movimiento row.
type Articulo struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CodigoEAN13   *string   `gorm:"column:codigo_ean13;uniqueIndex"`
	Nombre        string    `gorm:"index;not null"`
	Descripcion   *string
	CategoriaID   *uuid.UUID `gorm:"type:uuid;index"`
	UbicacionID   *uuid.UUID `gorm:"type:uuid;index"`
	Unidad        string     `gorm:"not null;default:'pieza'"`
	StockActual   int        `gorm:"not null;default:0;check:stock_actual >= 0"`
	StockMinimo   int        `gorm:"not null;default:0;check:stock_minimo >= 0"`
	StockMaximo   *int
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ImagenPath    *string
	MiniaturaPath *string
	EsHerramienta bool `gorm:"not null;default:false"`
	Activo        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Categoria   *Categoria          `gorm:"foreignKey:CategoriaID"`
	Ubicacion   *Ubicacion          `gorm:"foreignKey:UbicacionID"`
	Proveedores []ArticuloProveedor `gorm:"foreignKey:ArticuloID"`
}

// BajoStock reports whether the article sits at or under its minimum.
func (a Articulo) BajoStock() bool { return a.StockActual <= a.StockMinimo }

// CantidadReposicion is how many units bring the article back to its
// maximum (or twice the minimum when no maximum is set). Never below 1.
func (a Articulo) CantidadReposicion() int {
	objetivo := a.StockMinimo * 2
	if a.StockMaximo != nil && *a.StockMaximo > objetivo {
		objetivo = *a.StockMaximo
	}
	if n := objetivo - a.StockActual; n > 1 {
		return n
	}
	return 1
}
