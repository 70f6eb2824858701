package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

// ── Equipos ──────────────────────────────────────────────────────────────────

type EquiposHandler struct{ svc service.EquipoService }

func NewEquiposHandler(svc service.EquipoService) *EquiposHandler {
	return &EquiposHandler{svc: svc}
}

func (h *EquiposHandler) Crear(c *gin.Context) {
	var req dto.CrearEquipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear equipo")
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *EquiposHandler) Listar(c *gin.Context) {
	var filter dto.CatalogoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar equipos")
		return
	}
	lista(c, resp)
}

func (h *EquiposHandler) ObtenerPorID(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener equipo")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *EquiposHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarEquipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar equipo")
		return
	}
	ok(c, http.StatusOK, resp)
}

// AsignarMiembros PUT /api/equipos/:id/miembros
func (h *EquiposHandler) AsignarMiembros(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.AsignarMiembrosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AsignarMiembros(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al asignar miembros")
		return
	}
	okMsg(c, http.StatusOK, resp, "Miembros actualizados")
}

func (h *EquiposHandler) Desactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al desactivar equipo")
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Camionetas ───────────────────────────────────────────────────────────────

type CamionetasHandler struct{ svc service.CamionetaService }

func NewCamionetasHandler(svc service.CamionetaService) *CamionetasHandler {
	return &CamionetasHandler{svc: svc}
}

func (h *CamionetasHandler) Crear(c *gin.Context) {
	var req dto.CrearCamionetaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear camioneta")
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *CamionetasHandler) Listar(c *gin.Context) {
	var filter dto.CatalogoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar camionetas")
		return
	}
	lista(c, resp)
}

func (h *CamionetasHandler) ObtenerPorID(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener camioneta")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *CamionetasHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarCamionetaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar camioneta")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *CamionetasHandler) Desactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al desactivar camioneta")
		return
	}
	c.Status(http.StatusNoContent)
}

// Herramientas GET /api/camionetas/:id/herramientas
func (h *CamionetasHandler) Herramientas(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.Herramientas(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al listar herramientas de la camioneta")
		return
	}
	ok(c, http.StatusOK, resp)
}
