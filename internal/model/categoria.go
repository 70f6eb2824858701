package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria names are unique ignoring case (idx_categorias_nombre_lower).
type Categoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"type:varchar(80);not null"`
	Descripcion *string
	Color       *string `gorm:"type:varchar(9)"` // #RRGGBB or #RRGGBBAA
	Activo      bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Categoria) TableName() string { return "categorias" }
