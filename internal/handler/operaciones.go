package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

// ── Escaneo ──────────────────────────────────────────────────────────────────

type EscaneoHandler struct{ svc service.EscaneoService }

func NewEscaneoHandler(svc service.EscaneoService) *EscaneoHandler {
	return &EscaneoHandler{svc: svc}
}

// Escanear godoc
// @Summary Resolver una lectura del escaner
// @Description Clasifica el codigo y lo resuelve a un articulo o una herramienta.
// @Tags escaneo
// @Accept json
// @Produce json
// @Param body body dto.EscaneoRequest true "Lectura"
// @Success 200 {object} dto.EscaneoResponse
// @Failure 409 {object} apierror.APIError "Escaneo repetido"
// @Router /api/escaneo [post]
func (h *EscaneoHandler) Escanear(c *gin.Context) {
	var req dto.EscaneoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Escanear(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err, "Error al procesar el escaneo")
		return
	}
	ok(c, http.StatusOK, resp)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Resumen GET /api/dashboard/resumen
func (h *DashboardHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.Resumen(c.Request.Context())
	if err != nil {
		responderError(c, err, "Error al obtener el resumen")
		return
	}
	ok(c, http.StatusOK, resp)
}
