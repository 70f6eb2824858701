package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Solicitudes ─────────────────────────────────────────────────────────────

type CrearSolicitudRequest struct {
	ArticuloID string `json:"articulo_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
	Motivo     string `json:"motivo"      validate:"max=255"`
}

type SolicitudFilter struct {
	Paginacion
	Estado     string `form:"estado"      validate:"omitempty,oneof=pendiente en_orden completada cancelada"`
	ArticuloID string `form:"articulo_id" validate:"omitempty,uuid"`
	Origen     string `form:"origen"      validate:"omitempty,oneof=manual automatica"`
}

type SolicitudResponse struct {
	ID             string    `json:"id"`
	ArticuloID     string    `json:"articulo_id"`
	ArticuloNombre string    `json:"articulo_nombre,omitempty"`
	Cantidad       int       `json:"cantidad"`
	SolicitanteID  *string   `json:"solicitante_id"`
	Motivo         string    `json:"motivo"`
	Origen         string    `json:"origen"`
	Estado         string    `json:"estado"`
	OrdenCompraID  *string   `json:"orden_compra_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// ─── Ordenes de compra ───────────────────────────────────────────────────────

type ItemOrdenRequest struct {
	ArticuloID    string           `json:"articulo_id"    validate:"required,uuid"`
	Cantidad      int              `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario"`
}

type CrearOrdenRequest struct {
	ProveedorID   string             `json:"proveedor_id"  validate:"required,uuid"`
	Items         []ItemOrdenRequest `json:"items"         validate:"omitempty,dive"`
	SolicitudIDs  []string           `json:"solicitud_ids" validate:"omitempty,dive,uuid"`
	Observaciones *string            `json:"observaciones" validate:"omitempty,max=500"`
}

type ActualizarOrdenRequest struct {
	ProveedorID   *string             `json:"proveedor_id"  validate:"omitempty,uuid"`
	Items         *[]ItemOrdenRequest `json:"items"         validate:"omitempty,min=1,dive"`
	Observaciones *string             `json:"observaciones" validate:"omitempty,max=500"`
}

type ItemRecepcionRequest struct {
	ItemID   string `json:"item_id"  validate:"required,uuid"`
	Cantidad int    `json:"cantidad" validate:"required,min=1"`
}

type RecibirOrdenRequest struct {
	Items []ItemRecepcionRequest `json:"items" validate:"required,min=1,dive"`
}

type AnularOrdenRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=255"`
}

type OrdenFilter struct {
	Paginacion
	Estado      string `form:"estado"       validate:"omitempty,oneof=borrador enviada parcial recibida cancelada"`
	ProveedorID string `form:"proveedor_id" validate:"omitempty,uuid"`
	Q           string `form:"q"`
}

type OrdenItemResponse struct {
	ID                 string          `json:"id"`
	ArticuloID         string          `json:"articulo_id"`
	ArticuloNombre     string          `json:"articulo_nombre,omitempty"`
	CantidadSolicitada int             `json:"cantidad_solicitada"`
	CantidadRecibida   int             `json:"cantidad_recibida"`
	Pendiente          int             `json:"pendiente"`
	CostoUnitario      decimal.Decimal `json:"costo_unitario"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

type OrdenResponse struct {
	ID              string              `json:"id"`
	Folio           string              `json:"folio"`
	ProveedorID     string              `json:"proveedor_id"`
	ProveedorNombre string              `json:"proveedor_nombre,omitempty"`
	CreadoPor       string              `json:"creado_por"`
	Estado          string              `json:"estado"`
	Total           decimal.Decimal     `json:"total"`
	Observaciones   *string             `json:"observaciones"`
	FechaEnvio      *time.Time          `json:"fecha_envio"`
	FechaRecepcion  *time.Time          `json:"fecha_recepcion"`
	MotivoAnulacion *string             `json:"motivo_anulacion"`
	Items           []OrdenItemResponse `json:"items"`
	SolicitudIDs    []string            `json:"solicitud_ids"`
	CreatedAt       time.Time           `json:"created_at"`
}

type RecepcionResponse struct {
	Orden       OrdenResponse        `json:"orden"`
	Movimientos []MovimientoResponse `json:"movimientos"`
}

type AnulacionResponse struct {
	Orden                  OrdenResponse        `json:"orden"`
	MovimientosRevertidos  []MovimientoResponse `json:"movimientos_revertidos"`
	SolicitudesReactivadas int                  `json:"solicitudes_reactivadas"`
	// SolicitudesFusionadas counts requests folded into an already open one.
	SolicitudesFusionadas int `json:"solicitudes_fusionadas"`
}
