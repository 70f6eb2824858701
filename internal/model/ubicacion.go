package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ubicacion is a physical slot inside the warehouse.
type Ubicacion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo      string    `gorm:"uniqueIndex;not null"`
	Almacen     string    `gorm:"not null;default:'principal'"`
	Pasillo     string
	Estante     string
	Nivel       string
	Descripcion *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Ubicacion) TableName() string { return "ubicaciones" }

// CodigoDerivado joins the non-empty address parts, e.g. "PRINCIPAL-A-03-2".
func (u Ubicacion) CodigoDerivado() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{u.Almacen, u.Pasillo, u.Estante, u.Nivel} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, strings.ToUpper(p))
		}
	}
	return strings.Join(parts, "-")
}
