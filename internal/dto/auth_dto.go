package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	Usuario      UsuarioResponse `json:"usuario"`
}

// ─── Usuarios ────────────────────────────────────────────────────────────────

type CrearUsuarioRequest struct {
	Nombre   string  `json:"nombre"    validate:"required,min=2,max=120"`
	Email    string  `json:"email"     validate:"required,email"`
	Password string  `json:"password"  validate:"required,min=8"`
	Rol      string  `json:"rol"       validate:"required,oneof=administrador almacen compras encargado"`
	Telefono *string `json:"telefono"  validate:"omitempty,max=20"`
	EquipoID *string `json:"equipo_id" validate:"omitempty,uuid"`
}

type ActualizarUsuarioRequest struct {
	Nombre   *string `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email"     validate:"omitempty,email"`
	Password *string `json:"password"  validate:"omitempty,min=8"`
	Rol      *string `json:"rol"       validate:"omitempty,oneof=administrador almacen compras encargado"`
	Telefono *string `json:"telefono"  validate:"omitempty,max=20"`
	EquipoID *string `json:"equipo_id" validate:"omitempty,uuid"`
}

type UsuarioFilter struct {
	Paginacion
	Q                string `form:"q"`
	Rol              string `form:"rol"`
	IncluirInactivos bool   `form:"incluir_inactivos"`
}

type UsuarioResponse struct {
	ID        string    `json:"id"`
	Nombre    string    `json:"nombre"`
	Email     string    `json:"email"`
	Rol       string    `json:"rol"`
	Telefono  *string   `json:"telefono"`
	EquipoID  *string   `json:"equipo_id"`
	Activo    bool      `json:"activo"`
	CreatedAt time.Time `json:"created_at"`
}
