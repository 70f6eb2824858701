package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados de CampanaCelda.
const (
	CeldaPendiente  = "pendiente"
	CeldaEnProceso  = "en_proceso"
	CeldaCompletado = "completado"
)

// Campana is a tracking board (rows × columns of cells), e.g. one per season.
type Campana struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"not null;uniqueIndex:idx_campana_nombre_anio"`
	Anio        int       `gorm:"not null;uniqueIndex:idx_campana_nombre_anio"`
	Descripcion *string
	Activa      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Campana) TableName() string { return "campanas" }

// CampanaCelda is one cell of a Campana board.
type CampanaCelda struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CampanaID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_campana_celda"`
	Fila           string    `gorm:"not null;uniqueIndex:idx_campana_celda"`
	Columna        string    `gorm:"not null;uniqueIndex:idx_campana_celda"`
	Valor          string
	Estado         string `gorm:"type:varchar(12);not null;default:'pendiente'"`
	Nota           *string
	ActualizadoPor *uuid.UUID `gorm:"type:uuid"`
	// Orden is a bigserial (see schema patches) filled on first insert and
	// never rewritten by upserts: first-appearance order within a batch.
	Orden     int64 `gorm:"-:migration;<-:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CampanaCelda) TableName() string { return "campana_celdas" }
