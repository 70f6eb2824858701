package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles recognised by RequireRole.
const (
	RolAdministrador = "administrador"
	RolAlmacen       = "almacen"
	RolCompras       = "compras"
	RolEncargado     = "encargado"
)

// Usuario stores system users with role-based access.
// Login is by email; EquipoID links the user to a field team.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	Telefono     *string
	EquipoID     *uuid.UUID `gorm:"type:uuid;index"`
	Activo       bool       `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Equipo *Equipo `gorm:"foreignKey:EquipoID"`
}
