package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Estados de UnidadHerramienta.
const (
	HerramientaDisponible   = "disponible"
	HerramientaAsignada     = "asignada"
	HerramientaEnReparacion = "en_reparacion"
	HerramientaPerdida      = "perdida"
	HerramientaBaja         = "baja"
)

// EstadosHerramienta lists every unit state in display order.
var EstadosHerramienta = []string{
	HerramientaDisponible, HerramientaAsignada, HerramientaEnReparacion,
	HerramientaPerdida, HerramientaBaja,
}

var transicionesHerramienta = map[string][]string{
	HerramientaDisponible:   {HerramientaAsignada, HerramientaEnReparacion, HerramientaPerdida, HerramientaBaja},
	HerramientaAsignada:     {HerramientaDisponible, HerramientaEnReparacion, HerramientaPerdida},
	HerramientaEnReparacion: {HerramientaDisponible, HerramientaBaja},
	HerramientaPerdida:      {HerramientaDisponible, HerramientaBaja},
}

// PuedeTransicionarHerramienta reports whether a tool unit may move from → to.
// baja is terminal.
func PuedeTransicionarHerramienta(from, to string) bool {
	for _, s := range transicionesHerramienta[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TipoHerramienta is a kind of rentable tool (e.g. "Taladro", prefix TAL).
type TipoHerramienta struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Prefijo     string    `gorm:"type:varchar(6);uniqueIndex;not null"`
	Descripcion *string
	ArticuloID  *uuid.UUID `gorm:"type:uuid"`
	Activo      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Unidades []UnidadHerramienta `gorm:"foreignKey:TipoID"`
}

func (TipoHerramienta) TableName() string { return "tipos_herramienta" }

// CodigoUnidad formats the barcode of the n-th unit of this type.
func (t TipoHerramienta) CodigoUnidad(n int) string {
	return fmt.Sprintf("%s-%03d", t.Prefijo, n)
}

// UnidadHerramienta is one physical, individually barcoded tool.
type UnidadHerramienta struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo          string     `gorm:"uniqueIndex;not null"`
	TipoID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	Estado          string     `gorm:"type:varchar(16);not null;default:'disponible';index"`
	UsuarioID       *uuid.UUID `gorm:"type:uuid;index"`
	EquipoID        *uuid.UUID `gorm:"type:uuid;index"`
	CamionetaID     *uuid.UUID `gorm:"type:uuid;index"`
	FechaAsignacion *time.Time
	Observaciones   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Tipo      *TipoHerramienta `gorm:"foreignKey:TipoID"`
	Usuario   *Usuario         `gorm:"foreignKey:UsuarioID"`
	Camioneta *Camioneta       `gorm:"foreignKey:CamionetaID"`
}

func (UnidadHerramienta) TableName() string { return "unidades_herramienta" }

// LiberarResponsables clears every holder of the unit.
func (u *UnidadHerramienta) LiberarResponsables() {
	u.UsuarioID = nil
	u.EquipoID = nil
	u.CamionetaID = nil
	u.FechaAsignacion = nil
}

// HistorialHerramienta records every state change of a unit. Append-only.
type HistorialHerramienta struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UnidadID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Accion         string    `gorm:"not null"` // alta | asignacion | devolucion | cambio_estado
	EstadoAnterior string
	EstadoNuevo    string     `gorm:"not null"`
	UsuarioID      *uuid.UUID `gorm:"type:uuid"`
	EquipoID       *uuid.UUID `gorm:"type:uuid"`
	CamionetaID    *uuid.UUID `gorm:"type:uuid"`
	RealizadoPor   *uuid.UUID `gorm:"type:uuid"`
	Nota           *string
	CreatedAt      time.Time
}

func (HistorialHerramienta) TableName() string { return "historial_herramientas" }
