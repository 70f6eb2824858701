package handler

import (
	"net/http"
	"strconv"

	"inventario3g/internal/apierror"
	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

type CampanasHandler struct{ svc service.CampanaService }

func NewCampanasHandler(svc service.CampanaService) *CampanasHandler {
	return &CampanasHandler{svc: svc}
}

func (h *CampanasHandler) Crear(c *gin.Context) {
	var req dto.CrearCampanaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear campana")
		return
	}
	ok(c, http.StatusCreated, resp)
}

// Listar GET /api/campana-control?anio=2026
func (h *CampanasHandler) Listar(c *gin.Context) {
	anio := 0
	if s := c.Query("anio"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, apierror.New("anio invalido"))
			return
		}
		anio = n
	}
	resp, err := h.svc.Listar(c.Request.Context(), anio)
	if err != nil {
		responderError(c, err, "Error al listar campanas")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Tablero GET /api/campana-control/:id/tablero
func (h *CampanasHandler) Tablero(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ObtenerTablero(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener tablero")
		return
	}
	ok(c, http.StatusOK, resp)
}

// ActualizarCeldas PUT /api/campana-control/:id/celdas
func (h *CampanasHandler) ActualizarCeldas(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarCeldasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarCeldas(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar celdas")
		return
	}
	ok(c, http.StatusOK, resp)
}

// EliminarCelda DELETE /api/campana-control/:id/celdas/:celda_id
func (h *CampanasHandler) EliminarCelda(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	celdaID, valid := parseID(c, "celda_id")
	if !valid {
		return
	}
	if err := h.svc.EliminarCelda(c.Request.Context(), id, celdaID); err != nil {
		responderError(c, err, "Error al eliminar celda")
		return
	}
	c.Status(http.StatusNoContent)
}

// Exportar GET /api/campana-control/:id/exportar → xlsx
func (h *CampanasHandler) Exportar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	data, nombre, err := h.svc.ExportarExcel(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al exportar campana")
		return
	}
	adjunto(c, mimeXLSX, nombre, data)
}
