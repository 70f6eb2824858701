package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de SolicitudCompra.
const (
	SolicitudPendiente  = "pendiente"
	SolicitudEnOrden    = "en_orden"
	SolicitudCompletada = "completada"
	SolicitudCancelada  = "cancelada"
)

// Origen de SolicitudCompra.
const (
	OrigenManual     = "manual"
	OrigenAutomatica = "automatica"
)

// SolicitudCompra is a request to buy an article. Automatic requests are
// raised when a salida leaves the article under its minimum.
type SolicitudCompra struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Cantidad      int        `gorm:"not null;check:cantidad > 0"`
	SolicitanteID *uuid.UUID `gorm:"type:uuid"`
	Motivo        string
	Origen        string     `gorm:"type:varchar(12);not null;default:'manual'"`
	Estado        string     `gorm:"type:varchar(12);not null;default:'pendiente';index"`
	OrdenCompraID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Articulo *Articulo `gorm:"foreignKey:ArticuloID"`
}

func (SolicitudCompra) TableName() string { return "solicitudes_compra" }

// Estados de OrdenCompra.
const (
	OrdenBorrador  = "borrador"
	OrdenEnviada   = "enviada"
	OrdenParcial   = "parcial"
	OrdenRecibida  = "recibida"
	OrdenCancelada = "cancelada"
)

var transicionesOrden = map[string][]string{
	OrdenBorrador: {OrdenEnviada, OrdenCancelada},
	OrdenEnviada:  {OrdenParcial, OrdenRecibida, OrdenCancelada},
	OrdenParcial:  {OrdenParcial, OrdenRecibida, OrdenCancelada},
	OrdenRecibida: {OrdenCancelada},
}

// PuedeTransicionarOrden reports whether a purchase order may move from → to.
func PuedeTransicionarOrden(from, to string) bool {
	for _, s := range transicionesOrden[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrdenCompra is a purchase order sent to one provider.
type OrdenCompra struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Folio           string          `gorm:"uniqueIndex;not null"`
	ProveedorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreadoPor       uuid.UUID       `gorm:"type:uuid;not null"`
	Estado          string          `gorm:"type:varchar(12);not null;default:'borrador';index"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Observaciones   *string
	FechaEnvio      *time.Time
	FechaRecepcion  *time.Time
	MotivoAnulacion *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Proveedor   *Proveedor        `gorm:"foreignKey:ProveedorID"`
	Items       []OrdenCompraItem `gorm:"foreignKey:OrdenCompraID"`
	Solicitudes []SolicitudCompra `gorm:"foreignKey:OrdenCompraID"`
}

func (OrdenCompra) TableName() string { return "ordenes_compra" }

// RecibidaCompleta reports whether every line has been fully received.
func (o OrdenCompra) RecibidaCompleta() bool {
	for _, it := range o.Items {
		if it.CantidadRecibida < it.CantidadSolicitada {
			return false
		}
	}
	return len(o.Items) > 0
}

// CalcularTotal sums quantity × cost over all lines.
func (o OrdenCompra) CalcularTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// OrdenCompraItem is one line of an OrdenCompra.
type OrdenCompraItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrdenCompraID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ArticuloID         uuid.UUID       `gorm:"type:uuid;not null"`
	CantidadSolicitada int             `gorm:"not null;check:cantidad_solicitada > 0"`
	CantidadRecibida   int             `gorm:"not null;default:0"`
	CostoUnitario      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt          time.Time

	Articulo *Articulo `gorm:"foreignKey:ArticuloID"`
}

func (OrdenCompraItem) TableName() string { return "orden_compra_items" }

// Pendiente is the quantity still to be received.
func (it OrdenCompraItem) Pendiente() int { return it.CantidadSolicitada - it.CantidadRecibida }

func (it OrdenCompraItem) Subtotal() decimal.Decimal {
	return it.CostoUnitario.Mul(decimal.NewFromInt(int64(it.CantidadSolicitada)))
}
