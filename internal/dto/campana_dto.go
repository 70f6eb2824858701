package dto

import "time"

type CrearCampanaRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=120"`
	Anio        int     `json:"anio"        validate:"required,min=2000,max=2100"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=255"`
}

type CeldaRequest struct {
	Fila    string  `json:"fila"    validate:"required,max=120"`
	Columna string  `json:"columna" validate:"required,max=120"`
	Valor   string  `json:"valor"   validate:"max=255"`
	Estado  string  `json:"estado"  validate:"omitempty,oneof=pendiente en_proceso completado"`
	Nota    *string `json:"nota"    validate:"omitempty,max=255"`
}

type ActualizarCeldasRequest struct {
	Celdas []CeldaRequest `json:"celdas" validate:"required,min=1,max=500,dive"`
}

type CampanaResponse struct {
	ID          string    `json:"id"`
	Nombre      string    `json:"nombre"`
	Anio        int       `json:"anio"`
	Descripcion *string   `json:"descripcion"`
	Activa      bool      `json:"activa"`
	CreatedAt   time.Time `json:"created_at"`
}

type CeldaResponse struct {
	ID             string    `json:"id"`
	Fila           string    `json:"fila"`
	Columna        string    `json:"columna"`
	Valor          string    `json:"valor"`
	Estado         string    `json:"estado"`
	Nota           *string   `json:"nota"`
	ActualizadoPor *string   `json:"actualizado_por"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableroResponse is the campaign grid. Filas and Columnas keep the order in
// which each label first appeared.
type TableroResponse struct {
	Campana  CampanaResponse `json:"campana"`
	Filas    []string        `json:"filas"`
	Columnas []string        `json:"columnas"`
	Celdas   []CeldaResponse `json:"celdas"`
}
