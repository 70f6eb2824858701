package dto

// ─── Equipos ─────────────────────────────────────────────────────────────────

type CrearEquipoRequest struct {
	Nombre      string  `json:"nombre"       validate:"required,min=2,max=80"`
	Descripcion *string `json:"descripcion"  validate:"omitempty,max=255"`
	EncargadoID *string `json:"encargado_id" validate:"omitempty,uuid"`
}

type ActualizarEquipoRequest struct {
	Nombre      *string `json:"nombre"       validate:"omitempty,min=2,max=80"`
	Descripcion *string `json:"descripcion"  validate:"omitempty,max=255"`
	EncargadoID *string `json:"encargado_id" validate:"omitempty,uuid"`
}

type AsignarMiembrosRequest struct {
	UsuarioIDs []string `json:"usuario_ids" validate:"required,dive,uuid"`
}

type EquipoResponse struct {
	ID            string            `json:"id"`
	Nombre        string            `json:"nombre"`
	Descripcion   *string           `json:"descripcion"`
	EncargadoID   *string           `json:"encargado_id"`
	Activo        bool              `json:"activo"`
	TotalMiembros int64             `json:"total_miembros"`
	Miembros      []UsuarioResponse `json:"miembros,omitempty"`
}

// ─── Camionetas ──────────────────────────────────────────────────────────────

type CrearCamionetaRequest struct {
	Nombre        string  `json:"nombre"         validate:"required,min=2,max=80"`
	Placas        string  `json:"placas"         validate:"required,min=5,max=10"`
	Marca         *string `json:"marca"          validate:"omitempty,max=40"`
	Modelo        *string `json:"modelo"         validate:"omitempty,max=40"`
	Anio          *int    `json:"anio"           validate:"omitempty,min=1980,max=2100"`
	EquipoID      *string `json:"equipo_id"      validate:"omitempty,uuid"`
	ResponsableID *string `json:"responsable_id" validate:"omitempty,uuid"`
}

type ActualizarCamionetaRequest struct {
	Nombre        *string `json:"nombre"         validate:"omitempty,min=2,max=80"`
	Placas        *string `json:"placas"         validate:"omitempty,min=5,max=10"`
	Marca         *string `json:"marca"          validate:"omitempty,max=40"`
	Modelo        *string `json:"modelo"         validate:"omitempty,max=40"`
	Anio          *int    `json:"anio"           validate:"omitempty,min=1980,max=2100"`
	EquipoID      *string `json:"equipo_id"      validate:"omitempty,uuid"`
	ResponsableID *string `json:"responsable_id" validate:"omitempty,uuid"`
}

type CamionetaResponse struct {
	ID            string  `json:"id"`
	Nombre        string  `json:"nombre"`
	Placas        string  `json:"placas"`
	Marca         *string `json:"marca"`
	Modelo        *string `json:"modelo"`
	Anio          *int    `json:"anio"`
	EquipoID      *string `json:"equipo_id"`
	EquipoNombre  *string `json:"equipo_nombre,omitempty"`
	ResponsableID *string `json:"responsable_id"`
	Activo        bool    `json:"activo"`
}
