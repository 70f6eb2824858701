package infra

import (
	"fmt"

	"inventario3g/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema and applies patches. Safe to call repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.Equipo{},
		&model.Usuario{},
		&model.Categoria{},
		&model.Ubicacion{},
		&model.Proveedor{},
		&model.ContactoProveedor{},
		&model.Articulo{},
		&model.ArticuloProveedor{},
		&model.HistorialCosto{},
		&model.Movimiento{},
		&model.Camioneta{},
		&model.SolicitudCompra{},
		&model.OrdenCompra{},
		&model.OrdenCompraItem{},
		&model.TipoHerramienta{},
		&model.UnidadHerramienta{},
		&model.HistorialHerramienta{},
		&model.Campana{},
		&model.CampanaCelda{},
		&model.TrabajoImagen{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// handle on its own. Each statement uses IF NOT EXISTS semantics so re-running
// on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// one preferred provider per article
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_articulo_proveedor_preferido
		    ON articulo_proveedores (articulo_id)
		    WHERE es_preferido`,
		// retry cron query
		`CREATE INDEX IF NOT EXISTS idx_trabajos_imagen_reintento
		    ON trabajos_imagen (siguiente_intento)
		    WHERE estado = 'error' AND siguiente_intento IS NOT NULL`,
		// at most one open request per article
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_solicitud_abierta_articulo
		    ON solicitudes_compra (articulo_id)
		    WHERE estado = 'pendiente' AND origen = 'automatica'`,
		// category names are unique ignoring case
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_categorias_nombre_lower
		    ON categorias (LOWER(nombre))`,
		// board cells keep their first-insert position
		`ALTER TABLE campana_celdas ADD COLUMN IF NOT EXISTS orden BIGSERIAL`,
		`CREATE INDEX IF NOT EXISTS idx_campana_celdas_orden
		    ON campana_celdas (campana_id, orden)`,
		// internal EAN-13 sequence
		`CREATE SEQUENCE IF NOT EXISTS articulo_ean_seq START 1`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
