package model

import (
	"time"

	"github.com/google/uuid"
)

// Equipo is a field crew. Members are Usuario rows pointing at it.
type Equipo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	EncargadoID *uuid.UUID `gorm:"type:uuid"`
	Activo      bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Miembros []Usuario `gorm:"foreignKey:EquipoID"`
}

func (Equipo) TableName() string { return "equipos" }
