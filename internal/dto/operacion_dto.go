package dto

import "inventario3g/internal/codigobarras"

// ─── Escaneo ─────────────────────────────────────────────────────────────────

type EscaneoRequest struct {
	Codigo   string `json:"codigo"   validate:"required,max=128"`
	Contexto string `json:"contexto" validate:"omitempty,oneof=consulta entrada salida ajuste herramienta"`
}

type EscaneoResponse struct {
	Codigo      string                     `json:"codigo"`
	Tipo        codigobarras.Tipo          `json:"tipo"`
	Valido      bool                       `json:"valido"`
	Contexto    string                     `json:"contexto,omitempty"`
	Articulo    *ArticuloResponse          `json:"articulo,omitempty"`
	Herramienta *UnidadHerramientaResponse `json:"herramienta,omitempty"`
}

// ─── Procesamiento de imagenes ───────────────────────────────────────────────

type ProcesamientoMasivoRequest struct {
	SoloPendientes bool `json:"solo_pendientes"`
}

type ProcesamientoMasivoResponse struct {
	Encolados int `json:"encolados"`
}

type EstadoProcesamientoResponse struct {
	PorEstado map[string]int64 `json:"por_estado"`
	EnCola    int64            `json:"en_cola"`
	EnDLQ     int64            `json:"en_dlq"`
}

type TrabajoImagenResponse struct {
	ID         string `json:"id"`
	ArticuloID string `json:"articulo_id"`
	Estado     string `json:"estado"`
	Intentos   int    `json:"intentos"`
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

type ResumenResponse struct {
	ArticulosActivos      int64            `json:"articulos_activos"`
	ArticulosBajoStock    int64            `json:"articulos_bajo_stock"`
	SolicitudesPendientes int64            `json:"solicitudes_pendientes"`
	OrdenesPorEstado      map[string]int64 `json:"ordenes_por_estado"`
	HerramientasPorEstado map[string]int64 `json:"herramientas_por_estado"`
}
