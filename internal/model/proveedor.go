package model

import (
	"time"

	"github.com/google/uuid"
)

// Proveedor is a supplier. RFC is stored upper-case.
type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	RFC       string    `gorm:"column:rfc;uniqueIndex;not null"`
	Telefono  *string
	Email     *string
	Direccion *string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Contactos []ContactoProveedor `gorm:"foreignKey:ProveedorID;constraint:OnDelete:CASCADE"`
}

func (Proveedor) TableName() string { return "proveedores" }

// ContactoProveedor belongs to exactly one Proveedor; updates replace the set.
type ContactoProveedor struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre      string    `gorm:"not null"`
	Cargo       *string
	Telefono    *string
	Email       *string
	CreatedAt   time.Time
}

func (ContactoProveedor) TableName() string { return "contactos_proveedor" }
