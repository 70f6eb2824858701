package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

// ── Categorias ───────────────────────────────────────────────────────────────

type CategoriasHandler struct{ svc service.CategoriaService }

func NewCategoriasHandler(svc service.CategoriaService) *CategoriasHandler {
	return &CategoriasHandler{svc: svc}
}

// Crear POST /api/categorias
func (h *CategoriasHandler) Crear(c *gin.Context) {
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear categoria")
		return
	}
	ok(c, http.StatusCreated, resp)
}

// Listar GET /api/categorias
func (h *CategoriasHandler) Listar(c *gin.Context) {
	var filter dto.CatalogoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar categorias")
		return
	}
	lista(c, resp)
}

// Actualizar PUT /api/categorias/:id
func (h *CategoriasHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar categoria")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Desactivar DELETE /api/categorias/:id
func (h *CategoriasHandler) Desactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al desactivar categoria")
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Ubicaciones ──────────────────────────────────────────────────────────────

type UbicacionesHandler struct{ svc service.UbicacionService }

func NewUbicacionesHandler(svc service.UbicacionService) *UbicacionesHandler {
	return &UbicacionesHandler{svc: svc}
}

func (h *UbicacionesHandler) Crear(c *gin.Context) {
	var req dto.CrearUbicacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear ubicacion")
		return
	}
	ok(c, http.StatusCreated, resp)
}

func (h *UbicacionesHandler) Listar(c *gin.Context) {
	var filter dto.CatalogoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar ubicaciones")
		return
	}
	lista(c, resp)
}

func (h *UbicacionesHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarUbicacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar ubicacion")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *UbicacionesHandler) Desactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al desactivar ubicacion")
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Proveedores ──────────────────────────────────────────────────────────────

type ProveedoresHandler struct{ svc service.ProveedorService }

func NewProveedoresHandler(svc service.ProveedorService) *ProveedoresHandler {
	return &ProveedoresHandler{svc: svc}
}

func (h *ProveedoresHandler) Crear(c *gin.Context) {
	var req dto.CrearProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear proveedor")
		return
	}
	okMsg(c, http.StatusCreated, resp, "Proveedor creado")
}

func (h *ProveedoresHandler) Listar(c *gin.Context) {
	var filter dto.CatalogoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar proveedores")
		return
	}
	lista(c, resp)
}

func (h *ProveedoresHandler) ObtenerPorID(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener proveedor")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Actualizar PUT /api/proveedores/:id; a contactos array replaces the current list.
func (h *ProveedoresHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarProveedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar proveedor")
		return
	}
	okMsg(c, http.StatusOK, resp, "Proveedor actualizado")
}

func (h *ProveedoresHandler) Desactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al desactivar proveedor")
		return
	}
	c.Status(http.StatusNoContent)
}
