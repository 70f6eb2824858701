package model

import (
	"time"

	"github.com/google/uuid"
)

// Camioneta is a work truck; tool units can be assigned to it.
type Camioneta struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre        string    `gorm:"not null"`
	Placas        string    `gorm:"uniqueIndex;not null"`
	Marca         *string
	Modelo        *string
	Anio          *int
	EquipoID      *uuid.UUID `gorm:"type:uuid;index"`
	ResponsableID *uuid.UUID `gorm:"type:uuid"`
	Activo        bool       `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Equipo *Equipo `gorm:"foreignKey:EquipoID"`
}

func (Camioneta) TableName() string { return "camionetas" }
