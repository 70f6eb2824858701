package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearArticuloRequest struct {
	CodigoEAN13   *string         `json:"codigo_ean13"   validate:"omitempty,len=13,numeric"`
	Nombre        string          `json:"nombre"         validate:"required,min=2,max=150"`
	Descripcion   *string         `json:"descripcion"    validate:"omitempty,max=500"`
	CategoriaID   *string         `json:"categoria_id"   validate:"omitempty,uuid"`
	UbicacionID   *string         `json:"ubicacion_id"   validate:"omitempty,uuid"`
	Unidad        string          `json:"unidad"         validate:"omitempty,max=20"`
	StockActual   int             `json:"stock_actual"   validate:"min=0"`
	StockMinimo   int             `json:"stock_minimo"   validate:"min=0"`
	StockMaximo   *int            `json:"stock_maximo"   validate:"omitempty,min=0"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"min=0"`
	EsHerramienta bool            `json:"es_herramienta"`
}

// ActualizarArticuloRequest never touches stock_actual; that only moves
// through Movimientos.
type ActualizarArticuloRequest struct {
	CodigoEAN13   *string          `json:"codigo_ean13"   validate:"omitempty,len=13,numeric"`
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2,max=150"`
	Descripcion   *string          `json:"descripcion"    validate:"omitempty,max=500"`
	CategoriaID   *string          `json:"categoria_id"   validate:"omitempty,uuid"`
	UbicacionID   *string          `json:"ubicacion_id"   validate:"omitempty,uuid"`
	Unidad        *string          `json:"unidad"         validate:"omitempty,max=20"`
	StockMinimo   *int             `json:"stock_minimo"   validate:"omitempty,min=0"`
	StockMaximo   *int             `json:"stock_maximo"   validate:"omitempty,min=0"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario"`
	EsHerramienta *bool            `json:"es_herramienta"`
}

type AsignarProveedorRequest struct {
	ProveedorID     string          `json:"proveedor_id"     validate:"required,uuid"`
	Costo           decimal.Decimal `json:"costo"            validate:"min=0"`
	CodigoProveedor *string         `json:"codigo_proveedor" validate:"omitempty,max=60"`
	EsPreferido     bool            `json:"es_preferido"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ArticuloFilter struct {
	Paginacion
	Q           string `form:"q"`
	CategoriaID string `form:"categoria_id" validate:"omitempty,uuid"`
	UbicacionID string `form:"ubicacion_id" validate:"omitempty,uuid"`
	BajoStock   bool   `form:"bajo_stock"`
	// Activo: "false" = inactivos, "all" = todos, otherwise activos.
	Activo string `form:"activo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ArticuloResponse struct {
	ID              string                      `json:"id"`
	CodigoEAN13     *string                     `json:"codigo_ean13"`
	Nombre          string                      `json:"nombre"`
	Descripcion     *string                     `json:"descripcion"`
	CategoriaID     *string                     `json:"categoria_id"`
	CategoriaNombre *string                     `json:"categoria_nombre,omitempty"`
	UbicacionID     *string                     `json:"ubicacion_id"`
	UbicacionCodigo *string                     `json:"ubicacion_codigo,omitempty"`
	Unidad          string                      `json:"unidad"`
	StockActual     int                         `json:"stock_actual"`
	StockMinimo     int                         `json:"stock_minimo"`
	StockMaximo     *int                        `json:"stock_maximo"`
	CostoUnitario   decimal.Decimal             `json:"costo_unitario"`
	TieneImagen     bool                        `json:"tiene_imagen"`
	TieneMiniatura  bool                        `json:"tiene_miniatura"`
	EsHerramienta   bool                        `json:"es_herramienta"`
	BajoStock       bool                        `json:"bajo_stock"`
	Activo          bool                        `json:"activo"`
	Proveedores     []ArticuloProveedorResponse `json:"proveedores,omitempty"`
}

type ArticuloProveedorResponse struct {
	ProveedorID     string          `json:"proveedor_id"`
	ProveedorNombre string          `json:"proveedor_nombre"`
	Costo           decimal.Decimal `json:"costo"`
	CodigoProveedor *string         `json:"codigo_proveedor"`
	EsPreferido     bool            `json:"es_preferido"`
}

type HistorialCostoResponse struct {
	ID              string          `json:"id"`
	ProveedorID     string          `json:"proveedor_id"`
	ProveedorNombre string          `json:"proveedor_nombre"`
	CostoAntes      decimal.Decimal `json:"costo_antes"`
	CostoDespues    decimal.Decimal `json:"costo_despues"`
	Motivo          string          `json:"motivo"`
	UsuarioID       *string         `json:"usuario_id"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ErrorImportacion describes one rejected spreadsheet row.
type ErrorImportacion struct {
	Fila    int    `json:"fila"`
	Codigo  string `json:"codigo"`
	Mensaje string `json:"mensaje"`
}

type ImportacionResponse struct {
	Creados      int                `json:"creados"`
	Actualizados int                `json:"actualizados"`
	Errores      []ErrorImportacion `json:"errores"`
}
