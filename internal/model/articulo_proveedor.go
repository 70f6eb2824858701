package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ArticuloProveedor links an article with a provider that sells it.
// At most one link per article has EsPreferido=true (partial unique index
// idx_articulo_proveedor_preferido, see infra/database.go).
type ArticuloProveedor struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_articulo_proveedor"`
	ProveedorID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_articulo_proveedor"`
	Costo           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CodigoProveedor *string
	EsPreferido     bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (ArticuloProveedor) TableName() string { return "articulo_proveedores" }

// HistorialCosto registra cada cambio de costo de un articulo con un proveedor.
// Los registros son inmutables.
type HistorialCosto struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProveedorID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostoAntes   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoDespues decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo       string          `gorm:"not null;default:'manual'"` // manual | recepcion_oc
	UsuarioID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt    time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (HistorialCosto) TableName() string { return "historial_costos" }
