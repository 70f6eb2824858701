// cmd/seeduser/main.go: Crea/actualiza el administrador inicial.
// Uso: SEED_EMAIL=... SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"

	"inventario3g/internal/config"
	"inventario3g/internal/infra"
	"inventario3g/internal/model"
	"inventario3g/internal/service"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	email := getenv("SEED_EMAIL", "admin@inventario3g.local")
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		log.Fatal().Msg("SEED_PASSWORD is required")
	}
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD must have at least 8 characters")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	// NewDatabase migrates the schema, so a fresh database works too.
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	u := model.Usuario{
		Nombre:       getenv("SEED_NOMBRE", "Administrador"),
		Email:        email,
		PasswordHash: hash,
		Rol:          model.RolAdministrador,
		Activo:       true,
	}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "nombre", "rol", "activo", "updated_at"}),
	}).Create(&u).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert error")
	}
	log.Info().Str("email", email).Msg("administrador creado/actualizado")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
