package model

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de movimiento de stock.
const (
	MovEntrada     = "entrada"
	MovSalida      = "salida"
	MovAjuste      = "ajuste"
	MovDevolucion  = "devolucion"
	MovRecepcionOC = "recepcion_oc"
	MovAnulacionOC = "anulacion_oc"
)

// Movimiento registra cada cambio de stock en un articulo.
// Lines registered together share the same Folio.
type Movimiento struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio         string     `gorm:"index;not null"`
	Tipo          string     `gorm:"type:varchar(20);not null;index"`
	ArticuloID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Cantidad      int        `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int        `gorm:"not null"`
	StockNuevo    int        `gorm:"not null"`
	UsuarioID     *uuid.UUID `gorm:"type:uuid;index"`
	EquipoID      *uuid.UUID `gorm:"type:uuid;index"`
	CamionetaID   *uuid.UUID `gorm:"type:uuid;index"`
	ReferenciaID  *uuid.UUID `gorm:"type:uuid;index"` // orden_compra_id when applicable
	Motivo        string
	CreatedAt     time.Time

	Articulo *Articulo `gorm:"foreignKey:ArticuloID"`
	Usuario  *Usuario  `gorm:"foreignKey:UsuarioID"`
}

func (Movimiento) TableName() string { return "movimientos" }
