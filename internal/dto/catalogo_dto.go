package dto

// ─── Categorias ──────────────────────────────────────────────────────────────

type CrearCategoriaRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=80"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=255"`
	Color       *string `json:"color"       validate:"omitempty,hexcolor"`
}

type ActualizarCategoriaRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=80"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=255"`
	Color       *string `json:"color"       validate:"omitempty,hexcolor"`
}

type CategoriaResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Color       *string `json:"color"`
	Activo      bool    `json:"activo"`
}

// CatalogoFilter is shared by the simple catalogues (categorias, ubicaciones,
// proveedores, camionetas, equipos).
type CatalogoFilter struct {
	Paginacion
	Q                string `form:"q"`
	IncluirInactivos bool   `form:"incluir_inactivos"`
}

// ─── Ubicaciones ─────────────────────────────────────────────────────────────

type CrearUbicacionRequest struct {
	Codigo      string  `json:"codigo"      validate:"omitempty,max=40"`
	Almacen     string  `json:"almacen"     validate:"omitempty,max=40"`
	Pasillo     string  `json:"pasillo"     validate:"omitempty,max=20"`
	Estante     string  `json:"estante"     validate:"omitempty,max=20"`
	Nivel       string  `json:"nivel"       validate:"omitempty,max=20"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=255"`
}

type ActualizarUbicacionRequest struct {
	Codigo      *string `json:"codigo"      validate:"omitempty,min=1,max=40"`
	Almacen     *string `json:"almacen"     validate:"omitempty,max=40"`
	Pasillo     *string `json:"pasillo"     validate:"omitempty,max=20"`
	Estante     *string `json:"estante"     validate:"omitempty,max=20"`
	Nivel       *string `json:"nivel"       validate:"omitempty,max=20"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=255"`
}

type UbicacionResponse struct {
	ID          string  `json:"id"`
	Codigo      string  `json:"codigo"`
	Almacen     string  `json:"almacen"`
	Pasillo     string  `json:"pasillo"`
	Estante     string  `json:"estante"`
	Nivel       string  `json:"nivel"`
	Descripcion *string `json:"descripcion"`
	Activo      bool    `json:"activo"`
}

// ─── Proveedores ─────────────────────────────────────────────────────────────

type ContactoRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=120"`
	Cargo    *string `json:"cargo"    validate:"omitempty,max=80"`
	Telefono *string `json:"telefono" validate:"omitempty,max=20"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

type CrearProveedorRequest struct {
	Nombre    string            `json:"nombre"    validate:"required,min=2,max=150"`
	RFC       string            `json:"rfc"       validate:"required,min=12,max=13,alphanum"`
	Telefono  *string           `json:"telefono"  validate:"omitempty,max=20"`
	Email     *string           `json:"email"     validate:"omitempty,email"`
	Direccion *string           `json:"direccion" validate:"omitempty,max=255"`
	Contactos []ContactoRequest `json:"contactos" validate:"omitempty,dive"`
}

type ActualizarProveedorRequest struct {
	Nombre    *string            `json:"nombre"    validate:"omitempty,min=2,max=150"`
	RFC       *string            `json:"rfc"       validate:"omitempty,min=12,max=13,alphanum"`
	Telefono  *string            `json:"telefono"  validate:"omitempty,max=20"`
	Email     *string            `json:"email"     validate:"omitempty,email"`
	Direccion *string            `json:"direccion" validate:"omitempty,max=255"`
	Contactos *[]ContactoRequest `json:"contactos" validate:"omitempty,dive"`
}

type ContactoResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	Cargo    *string `json:"cargo"`
	Telefono *string `json:"telefono"`
	Email    *string `json:"email"`
}

type ProveedorResponse struct {
	ID        string             `json:"id"`
	Nombre    string             `json:"nombre"`
	RFC       string             `json:"rfc"`
	Telefono  *string            `json:"telefono"`
	Email     *string            `json:"email"`
	Direccion *string            `json:"direccion"`
	Activo    bool               `json:"activo"`
	Contactos []ContactoResponse `json:"contactos"`
}
