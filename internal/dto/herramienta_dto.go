package dto

import "time"

type CrearTipoHerramientaRequest struct {
	Nombre          string  `json:"nombre"           validate:"required,min=2,max=80"`
	Prefijo         string  `json:"prefijo"          validate:"required,min=2,max=6,alpha"`
	Descripcion     *string `json:"descripcion"      validate:"omitempty,max=255"`
	ArticuloID      *string `json:"articulo_id"      validate:"omitempty,uuid"`
	CantidadInicial int     `json:"cantidad_inicial" validate:"min=0,max=500"`
}

type ActualizarTipoHerramientaRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=80"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=255"`
	ArticuloID  *string `json:"articulo_id" validate:"omitempty,uuid"`
	Activo      *bool   `json:"activo"`
}

type CrearUnidadesRequest struct {
	Cantidad      int     `json:"cantidad"      validate:"required,min=1,max=500"`
	Observaciones *string `json:"observaciones" validate:"omitempty,max=255"`
}

type UnidadFilter struct {
	Paginacion
	TipoID      string `form:"tipo_id"      validate:"omitempty,uuid"`
	Estado      string `form:"estado"       validate:"omitempty,oneof=disponible asignada en_reparacion perdida baja"`
	CamionetaID string `form:"camioneta_id" validate:"omitempty,uuid"`
	UsuarioID   string `form:"usuario_id"   validate:"omitempty,uuid"`
	EquipoID    string `form:"equipo_id"    validate:"omitempty,uuid"`
}

type AsignarHerramientaRequest struct {
	UsuarioID   *string `json:"usuario_id"   validate:"omitempty,uuid"`
	EquipoID    *string `json:"equipo_id"    validate:"omitempty,uuid"`
	CamionetaID *string `json:"camioneta_id" validate:"omitempty,uuid"`
	Nota        *string `json:"nota"         validate:"omitempty,max=255"`
}

type DevolverHerramientaRequest struct {
	Nota *string `json:"nota" validate:"omitempty,max=255"`
}

type CambiarEstadoHerramientaRequest struct {
	Estado string  `json:"estado" validate:"required,oneof=disponible asignada en_reparacion perdida baja"`
	Nota   *string `json:"nota"   validate:"omitempty,max=255"`
}

type TipoHerramientaResponse struct {
	ID          string           `json:"id"`
	Nombre      string           `json:"nombre"`
	Prefijo     string           `json:"prefijo"`
	Descripcion *string          `json:"descripcion"`
	ArticuloID  *string          `json:"articulo_id"`
	Activo      bool             `json:"activo"`
	Total       int64            `json:"total"`
	PorEstado   map[string]int64 `json:"por_estado"`
}

type UnidadHerramientaResponse struct {
	ID              string     `json:"id"`
	Codigo          string     `json:"codigo"`
	TipoID          string     `json:"tipo_id"`
	TipoNombre      string     `json:"tipo_nombre,omitempty"`
	Estado          string     `json:"estado"`
	UsuarioID       *string    `json:"usuario_id"`
	UsuarioNombre   *string    `json:"usuario_nombre,omitempty"`
	EquipoID        *string    `json:"equipo_id"`
	CamionetaID     *string    `json:"camioneta_id"`
	CamionetaNombre *string    `json:"camioneta_nombre,omitempty"`
	FechaAsignacion *time.Time `json:"fecha_asignacion"`
	Observaciones   *string    `json:"observaciones"`
}

type HistorialHerramientaResponse struct {
	ID             string    `json:"id"`
	Accion         string    `json:"accion"`
	EstadoAnterior string    `json:"estado_anterior"`
	EstadoNuevo    string    `json:"estado_nuevo"`
	UsuarioID      *string   `json:"usuario_id"`
	EquipoID       *string   `json:"equipo_id"`
	CamionetaID    *string   `json:"camioneta_id"`
	RealizadoPor   *string   `json:"realizado_por"`
	Nota           *string   `json:"nota"`
	CreatedAt      time.Time `json:"created_at"`
}
