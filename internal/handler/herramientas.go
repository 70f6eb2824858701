package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

type HerramientasHandler struct{ svc service.HerramientaService }

func NewHerramientasHandler(svc service.HerramientaService) *HerramientasHandler {
	return &HerramientasHandler{svc: svc}
}

// ── Tipos ────────────────────────────────────────────────────────────────────

func (h *HerramientasHandler) CrearTipo(c *gin.Context) {
	var req dto.CrearTipoHerramientaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearTipo(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err, "Error al crear tipo de herramienta")
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *HerramientasHandler) ListarTipos(c *gin.Context) {
	resp, err := h.svc.ListarTipos(c.Request.Context(), c.Query("incluir_inactivos") == "true")
	if err != nil {
		responderError(c, err, "Error al listar tipos de herramienta")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *HerramientasHandler) ActualizarTipo(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarTipoHerramientaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarTipo(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar tipo de herramienta")
		return
	}
	ok(c, http.StatusOK, resp)
}

// CrearUnidades POST /api/herramientas-renta/tipos/:id/unidades
func (h *HerramientasHandler) CrearUnidades(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.CrearUnidadesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUnidades(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al crear unidades")
		return
	}
	ok(c, http.StatusCreated, resp)
}

// ── Unidades ─────────────────────────────────────────────────────────────────

func (h *HerramientasHandler) ListarUnidades(c *gin.Context) {
	var filter dto.UnidadFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarUnidades(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar herramientas")
		return
	}
	lista(c, resp)
}

// ObtenerPorCodigo GET /api/herramientas-renta/codigo/:codigo
func (h *HerramientasHandler) ObtenerPorCodigo(c *gin.Context) {
	resp, err := h.svc.ObtenerPorCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		responderError(c, err, "Error al buscar herramienta")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *HerramientasHandler) Asignar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.AsignarHerramientaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Asignar(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al asignar herramienta")
		return
	}
	okMsg(c, http.StatusOK, resp, "Herramienta asignada")
}

func (h *HerramientasHandler) Devolver(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.DevolverHerramientaRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Devolver(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al devolver herramienta")
		return
	}
	okMsg(c, http.StatusOK, resp, "Herramienta devuelta")
}

// CambiarEstado PATCH /api/herramientas-renta/:id/estado
func (h *HerramientasHandler) CambiarEstado(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.CambiarEstadoHerramientaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al cambiar estado")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *HerramientasHandler) Historial(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener historial")
		return
	}
	ok(c, http.StatusOK, resp)
}

// CodigoBarras GET /api/herramientas-renta/:id/codigo-barras → image/png (Code128)
func (h *HerramientasHandler) CodigoBarras(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	png, err := h.svc.CodigoBarrasPNG(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al generar codigo de barras")
		return
	}
	c.Data(http.StatusOK, mimePNG, png)
}
