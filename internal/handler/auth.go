package handler

import (
	"net/http"

	"inventario3g/internal/dto"
	"inventario3g/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al iniciar sesion")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		responderError(c, err, "Error al renovar la sesion")
		return
	}
	ok(c, http.StatusOK, resp)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.svc.Me(c.Request.Context(), usuarioActual(c))
	if err != nil {
		responderError(c, err, "Error al obtener el usuario")
		return
	}
	ok(c, http.StatusOK, resp)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.UsuarioService }

func NewUsuariosHandler(svc service.UsuarioService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err, "Error al crear usuario")
		return
	}
	okMsg(c, http.StatusCreated, resp, "Usuario creado")
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	var filter dto.UsuarioFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err, "Error al listar usuarios")
		return
	}
	lista(c, resp)
}

func (h *UsuariosHandler) ObtenerPorID(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err, "Error al obtener usuario")
		return
	}
	ok(c, http.StatusOK, resp)
}

func (h *UsuariosHandler) Actualizar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	var req dto.ActualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err, "Error al actualizar usuario")
		return
	}
	okMsg(c, http.StatusOK, resp, "Usuario actualizado")
}

func (h *UsuariosHandler) Desactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), usuarioActual(c), id); err != nil {
		responderError(c, err, "Error al desactivar usuario")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UsuariosHandler) Reactivar(c *gin.Context) {
	id, valid := parseID(c, "id")
	if !valid {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		responderError(c, err, "Error al reactivar usuario")
		return
	}
	c.Status(http.StatusNoContent)
}
