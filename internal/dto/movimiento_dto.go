package dto

import "time"

type ItemMovimientoRequest struct {
	ArticuloID string `json:"articulo_id" validate:"required,uuid"`
	// Cantidad is the delta for entrada/salida/devolucion and the counted
	// value for ajuste.
	Cantidad int `json:"cantidad" validate:"min=0"`
}

type RegistrarMovimientosRequest struct {
	Tipo        string                  `json:"tipo"         validate:"required,oneof=entrada salida ajuste devolucion"`
	Items       []ItemMovimientoRequest `json:"items"        validate:"required,min=1,max=200,dive"`
	EquipoID    *string                 `json:"equipo_id"    validate:"omitempty,uuid"`
	CamionetaID *string                 `json:"camioneta_id" validate:"omitempty,uuid"`
	Motivo      string                  `json:"motivo"       validate:"max=255"`
}

type MovimientoFilter struct {
	Paginacion
	ArticuloID  string `form:"articulo_id"  validate:"omitempty,uuid"`
	Tipo        string `form:"tipo"`
	UsuarioID   string `form:"usuario_id"   validate:"omitempty,uuid"`
	EquipoID    string `form:"equipo_id"    validate:"omitempty,uuid"`
	CamionetaID string `form:"camioneta_id" validate:"omitempty,uuid"`
	Folio       string `form:"folio"`
	Desde       string `form:"desde"        validate:"omitempty,datetime=2006-01-02"`
	Hasta       string `form:"hasta"        validate:"omitempty,datetime=2006-01-02"`
}

type MovimientoResponse struct {
	ID             string    `json:"id"`
	Folio          string    `json:"folio"`
	Tipo           string    `json:"tipo"`
	ArticuloID     string    `json:"articulo_id"`
	ArticuloNombre string    `json:"articulo_nombre,omitempty"`
	Cantidad       int       `json:"cantidad"`
	StockAnterior  int       `json:"stock_anterior"`
	StockNuevo     int       `json:"stock_nuevo"`
	UsuarioID      *string   `json:"usuario_id"`
	UsuarioNombre  string    `json:"usuario_nombre,omitempty"`
	EquipoID       *string   `json:"equipo_id"`
	CamionetaID    *string   `json:"camioneta_id"`
	ReferenciaID   *string   `json:"referencia_id"`
	Motivo         string    `json:"motivo"`
	CreatedAt      time.Time `json:"created_at"`
}

type RegistroMovimientosResponse struct {
	Folio                string               `json:"folio"`
	Movimientos          []MovimientoResponse `json:"movimientos"`
	SolicitudesGeneradas []SolicitudResponse  `json:"solicitudes_generadas"`
}
