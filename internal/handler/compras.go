package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

// ── Solicitudes de compra ────────────────────────────────────────────────────

type SolicitudesHandler struct{ svc service.SolicitudService }

func NewSolicitudesHandler(svc service.SolicitudService) *SolicitudesHandler {
	return &SolicitudesHandler{svc: svc}
}

func (h *SolicitudesHandler) Crear(c *gin.Context) {
	var req dto.CrearSolicitudRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err, "Error al crear solicitud")
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *SolicitudesHandler) Listar(c *gin.Context) {
	var filter dto.SolicitudFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar solicitudes")
		return
	}
	lista(c, resp)
}

// Cancelar POST /api/solicitudes-compra/:id/cancelar
func (h *SolicitudesHandler) Cancelar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Cancelar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al cancelar solicitud")
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Ordenes de compra ────────────────────────────────────────────────────────

type OrdenesHandler struct{ svc service.OrdenCompraService }

func NewOrdenesHandler(svc service.OrdenCompraService) *OrdenesHandler {
	return &OrdenesHandler{svc: svc}
}

// Crear godoc
// @Summary Crear orden de compra (borrador)
// @Tags ordenes-compra
// @Accept json
// @Produce json
// @Param body body dto.CrearOrdenRequest true "Orden"
// @Success 201 {object} dto.OrdenResponse
// @Router /api/ordenes-compra [post]
func (h *OrdenesHandler) Crear(c *gin.Context) {
	var req dto.CrearOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err, "Error al crear orden de compra")
		return
	}
	okMsg(c, http.StatusCreated, resp, "Orden creada")
}

func (h *OrdenesHandler) Listar(c *gin.Context) {
	var filter dto.OrdenFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar ordenes de compra")
		return
	}
	lista(c, resp)
}

func (h *OrdenesHandler) ObtenerPorID(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener orden de compra")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *OrdenesHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar orden de compra")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Enviar POST /api/ordenes-compra/:id/enviar
func (h *OrdenesHandler) Enviar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.Enviar(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al enviar orden de compra")
		return
	}
	okMsg(c, http.StatusOK, resp, "Orden enviada")
}

// Recibir POST /api/ordenes-compra/:id/recibir
func (h *OrdenesHandler) Recibir(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.RecibirOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Recibir(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al recibir orden de compra")
		return
	}
	okMsg(c, http.StatusOK, resp, "Recepcion registrada")
}

// Anular POST /api/ordenes-compra/:id/anular
func (h *OrdenesHandler) Anular(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.AnularOrdenRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Anular(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al anular orden de compra")
		return
	}
	okMsg(c, http.StatusOK, resp, "Orden anulada")
}

// PDF GET /api/ordenes-compra/:id/pdf
func (h *OrdenesHandler) PDF(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	data, folio, err := h.svc.PDF(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al generar PDF")
		return
	}
	adjunto(c, mimePDF, folio+".pdf", data)
}
