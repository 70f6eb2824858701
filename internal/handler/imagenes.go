package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

type ImagenesHandler struct{ svc service.ImagenService }

func NewImagenesHandler(svc service.ImagenService) *ImagenesHandler {
	return &ImagenesHandler{svc: svc}
}

// Subir POST /api/articulos/:id/imagen (multipart "imagen")
func (h *ImagenesHandler) Subir(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	data, valid := leerArchivo(c, "imagen", service.MaxImagenBytes)
	if !valid {
		return
	}
	resp, err := h.svc.Subir(c.Request.Context(), id, data)
	if err != nil {
		responderError(c, err, "Error al subir imagen")
		return
	}
	okMsg(c, http.StatusAccepted, resp, "Imagen en proceso")
}

// Imagen GET /api/articulos/:id/imagen
func (h *ImagenesHandler) Imagen(c *gin.Context) { h.servir(c, false) }

// Miniatura GET /api/articulos/:id/miniatura
func (h *ImagenesHandler) Miniatura(c *gin.Context) { h.servir(c, true) }

func (h *ImagenesHandler) servir(c *gin.Context, miniatura bool) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	path, err := h.svc.Ruta(c.Request.Context(), id, miniatura)
	if err != nil {
		responderError(c, err, "Error al obtener imagen")
		return
	}
	c.File(path)
}

// Masivo POST /api/procesamiento-imagenes/masivo
func (h *ImagenesHandler) Masivo(c *gin.Context) {
	var req dto.ProcesamientoMasivoRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Masivo(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al encolar imagenes")
		return
	}
	ok(c, http.StatusAccepted, resp)
}

// Estado GET /api/procesamiento-imagenes/estado
func (h *ImagenesHandler) Estado(c *gin.Context) {
	resp, err := h.svc.Estado(c.Request.Context())
	if err != nil {
		responderError(c, err, "Error al consultar la cola de imagenes")
		return
	}
	ok(c, http.StatusOK, resp)
}
