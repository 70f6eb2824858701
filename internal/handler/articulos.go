package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

// maxImportBytes caps spreadsheet uploads.
const maxImportBytes = 5 << 20

type ArticulosHandler struct{ svc service.ArticuloService }

func NewArticulosHandler(svc service.ArticuloService) *ArticulosHandler {
	return &ArticulosHandler{svc: svc}
}

// Crear godoc
// @Summary Crear articulo
// @Description Genera un EAN-13 interno cuando no se envia codigo_ean13.
// @Tags articulos
// @Accept json
// @Produce json
// @Param body body dto.CrearArticuloRequest true "Articulo"
// @Success 201 {object} dto.ArticuloResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /api/articulos [post]
func (h *ArticulosHandler) Crear(c *gin.Context) {
	var req dto.CrearArticuloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), usuarioActual(c), req)
	if err != nil {
		responderError(c, err, "Error al crear articulo")
		return
	}
	okMsg(c, http.StatusCreated, resp, "Articulo creado")
}

func (h *ArticulosHandler) Listar(c *gin.Context) {
	var filter dto.ArticuloFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar articulos")
		return
	}
	lista(c, resp)
}

func (h *ArticulosHandler) ObtenerPorID(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener articulo")
		return
	}
	ok(c, http.StatusOK, resp)
}

// ObtenerPorCodigo GET /api/articulos/codigo/:codigo
func (h *ArticulosHandler) ObtenerPorCodigo(c *gin.Context) {
	resp, err := h.svc.ObtenerPorCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		responderError(c, err, "Error al buscar articulo")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *ArticulosHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarArticuloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar articulo")
		return
	}
	okMsg(c, http.StatusOK, resp, "Articulo actualizado")
}

func (h *ArticulosHandler) Desactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al desactivar articulo")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticulosHandler) Reactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al reactivar articulo")
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Proveedores del articulo ─────────────────────────────────────────────────

// AsignarProveedor PUT /api/articulos/:id/proveedores
func (h *ArticulosHandler) AsignarProveedor(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.AsignarProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AsignarProveedor(c.Request.Context(), usuarioActual(c), id, req)
	if err != nil {
		responderError(c, err, "Error al asignar proveedor")
		return
	}
	ok(c, http.StatusOK, resp)
}

// QuitarProveedor DELETE /api/articulos/:id/proveedores/:proveedor_id
func (h *ArticulosHandler) QuitarProveedor(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	proveedorID, valid := parseID(c, "proveedor_id")
	if !valid {
		return
	}
	if err := h.svc.QuitarProveedor(c.Request.Context(), id, proveedorID); err != nil {
		responderError(c, err, "Error al quitar proveedor")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ArticulosHandler) ListarProveedores(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ListarProveedores(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al listar proveedores del articulo")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *ArticulosHandler) HistorialCostos(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.HistorialCostos(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener historial de costos")
		return
	}
	ok(c, http.StatusOK, resp)
}

// ── Archivos ─────────────────────────────────────────────────────────────────

// CodigoBarras GET /api/articulos/:id/codigo-barras → image/png
func (h *ArticulosHandler) CodigoBarras(c *gin.Context) {
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

// Exportar GET /api/articulos/exportar → xlsx
func (h *ArticulosHandler) Exportar(c *gin.Context) {
	data, err := h.svc.ExportarExcel(c.Request.Context())
	if err != nil {
		responderError(c, err, "Error al exportar articulos")
		return
	}
	adjunto(c, mimeXLSX, fmt.Sprintf("articulos-%s.xlsx", time.Now().Format("20060102")), data)
}

// Importar POST /api/articulos/importar (multipart "archivo")
func (h *ArticulosHandler) Importar(c *gin.Context) {
	data, valid := leerArchivo(c, "archivo", maxImportBytes)
	if !valid {
		return
	}
	resp, err := h.svc.ImportarExcel(c.Request.Context(), bytes.NewReader(data))
	if err != nil {
		responderError(c, err, "Error al importar articulos")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Alertas GET /api/articulos/alertas
func (h *ArticulosHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.Alertas(c.Request.Context())
	if err != nil {
		responderError(c, err, "Error al obtener alertas de stock")
		return
	}
	ok(c, http.StatusOK, resp)
}
