package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados de TrabajoImagen.
const (
	ImagenPendiente  = "pendiente"
	ImagenProcesando = "procesando"
	ImagenCompletado = "completado"
	ImagenError      = "error"
)

// TrabajoImagen tracks the resize job of an article's uploaded image.
type TrabajoImagen struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Estado           string    `gorm:"type:varchar(12);not null;default:'pendiente';index"`
	Intentos         int       `gorm:"not null;default:0"`
	UltimoError      *string
	SiguienteIntento *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (TrabajoImagen) TableName() string { return "trabajos_imagen" }
