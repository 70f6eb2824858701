package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

type MovimientosHandler struct{ svc service.MovimientoService }

func NewMovimientosHandler(svc service.MovimientoService) *MovimientosHandler {
	return &MovimientosHandler{svc: svc}
}

// Registrar godoc
// @Summary Registrar movimientos de stock en lote
// @Description Todas las lineas se aplican en una transaccion con un solo folio.
// @Tags movimientos
// @Accept json
// @Produce json
// @Param body body dto.RegistrarMovimientosRequest true "Lote"
// @Success 201 {object} dto.RegistroMovimientosResponse
// @Failure 409 {object} apierror.APIError "Stock insuficiente"
// @Router /api/movimientos [post]
func (h *MovimientosHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarMovimientosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err, "Error al registrar movimientos")
		return
	}
	okMsg(c, http.StatusCreated, resp, "Movimientos registrados")
}

func (h *MovimientosHandler) Listar(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar movimientos")
		return
	}
	lista(c, resp)
}
