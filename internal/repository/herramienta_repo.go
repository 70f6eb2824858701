package repository

import (
	"context"
	"errors"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEstadoCambiado reports a unit whose estado moved since it was read.
var ErrEstadoCambiado = errors.New("la unidad cambio de estado")

type HerramientaRepository interface {
	CreateTipoTx(tx *gorm.DB, t *model.TipoHerramienta) error
	FindTipoByID(ctx context.Context, id uuid.UUID) (*model.TipoHerramienta, error)
	FindTipoByPrefijo(ctx context.Context, prefijo string) (*model.TipoHerramienta, error)
	FindTipoByNombre(ctx context.Context, nombre string) (*model.TipoHerramienta, error)
	ListTipos(ctx context.Context, incluirInactivos bool) ([]model.TipoHerramienta, error)
	// ConteoPorTipo returns unit counts per tipo and estado.
	ConteoPorTipo(ctx context.Context) (map[uuid.UUID]map[string]int64, error)
	UpdateTipo(ctx context.Context, t *model.TipoHerramienta) error

	// SiguienteNumeroTx locks the tipo row and returns the next unit number.
	SiguienteNumeroTx(tx *gorm.DB, tipoID uuid.UUID) (int, error)
	CreateUnidadesTx(tx *gorm.DB, unidades []model.UnidadHerramienta) error
	FindUnidadByID(ctx context.Context, id uuid.UUID) (*model.UnidadHerramienta, error)
	// FindUnidadByIDTx locks the unit row without preloading relations.
	FindUnidadByIDTx(tx *gorm.DB, id uuid.UUID) (*model.UnidadHerramienta, error)
	FindUnidadByCodigo(ctx context.Context, codigo string) (*model.UnidadHerramienta, error)
	ListUnidades(ctx context.Context, filter dto.UnidadFilter) ([]model.UnidadHerramienta, int64, error)
	// UpdateUnidadTx persists estado and holder columns, NULLs included, only
	// while the row is still in estadoAnterior. ErrEstadoCambiado otherwise.
	UpdateUnidadTx(tx *gorm.DB, u *model.UnidadHerramienta, estadoAnterior string) error
	CountAsignadasCamioneta(ctx context.Context, camionetaID uuid.UUID) (int64, error)
	CountPorEstado(ctx context.Context) (map[string]int64, error)

	CreateHistorialTx(tx *gorm.DB, h *model.HistorialHerramienta) error
	ListHistorial(ctx context.Context, unidadID uuid.UUID) ([]model.HistorialHerramienta, error)

	DB() *gorm.DB
}

type herramientaRepo struct{ db *gorm.DB }

func NewHerramientaRepository(db *gorm.DB) HerramientaRepository { return &herramientaRepo{db: db} }

func (r *herramientaRepo) DB() *gorm.DB { return r.db }

func (r *herramientaRepo) CreateTipoTx(tx *gorm.DB, t *model.TipoHerramienta) error {
	return tx.Omit("Unidades").Create(t).Error
}

func (r *herramientaRepo) FindTipoByID(ctx context.Context, id uuid.UUID) (*model.TipoHerramienta, error) {
	var t model.TipoHerramienta
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *herramientaRepo) FindTipoByPrefijo(ctx context.Context, prefijo string) (*model.TipoHerramienta, error) {
	var t model.TipoHerramienta
	if err := r.db.WithContext(ctx).Where("prefijo = ?", prefijo).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *herramientaRepo) FindTipoByNombre(ctx context.Context, nombre string) (*model.TipoHerramienta, error) {
	var t model.TipoHerramienta
	if err := r.db.WithContext(ctx).Where("LOWER(nombre) = LOWER(?)", nombre).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *herramientaRepo) ListTipos(ctx context.Context, incluirInactivos bool) ([]model.TipoHerramienta, error) {
	var list []model.TipoHerramienta
	q := r.db.WithContext(ctx)
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&list).Error
	return list, err
}

func (r *herramientaRepo) ConteoPorTipo(ctx context.Context) (map[uuid.UUID]map[string]int64, error) {
	var rows []struct {
		TipoID uuid.UUID
		Estado string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.UnidadHerramienta{}).
		Select("tipo_id, estado, COUNT(*) AS total").Group("tipo_id, estado").Scan(&rows).Error
	out := make(map[uuid.UUID]map[string]int64)
	for _, row := range rows {
		if out[row.TipoID] == nil {
			out[row.TipoID] = make(map[string]int64)
		}
		out[row.TipoID][row.Estado] = row.Total
	}
	return out, err
}

func (r *herramientaRepo) UpdateTipo(ctx context.Context, t *model.TipoHerramienta) error {
	return r.db.WithContext(ctx).Omit("Unidades").Save(t).Error
}

func (r *herramientaRepo) SiguienteNumeroTx(tx *gorm.DB, tipoID uuid.UUID) (int, error) {
	var t model.TipoHerramienta
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&t, "id = ?", tipoID).Error; err != nil {
		return 0, err
	}
	var n int64
	err := tx.Model(&model.UnidadHerramienta{}).Where("tipo_id = ?", tipoID).Count(&n).Error
	return int(n) + 1, err
}

func (r *herramientaRepo) CreateUnidadesTx(tx *gorm.DB, unidades []model.UnidadHerramienta) error {
	if len(unidades) == 0 {
		return nil
	}
	return tx.Omit(clause.Associations).Create(&unidades).Error
}

func (r *herramientaRepo) FindUnidadByID(ctx context.Context, id uuid.UUID) (*model.UnidadHerramienta, error) {
	var u model.UnidadHerramienta
	err := r.db.WithContext(ctx).Preload("Tipo").Preload("Usuario").Preload("Camioneta").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *herramientaRepo) FindUnidadByCodigo(ctx context.Context, codigo string) (*model.UnidadHerramienta, error) {
	var u model.UnidadHerramienta
	err := r.db.WithContext(ctx).Preload("Tipo").Preload("Usuario").Preload("Camioneta").
		Where("codigo = ?", codigo).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *herramientaRepo) ListUnidades(ctx context.Context, filter dto.UnidadFilter) ([]model.UnidadHerramienta, int64, error) {
	var list []model.UnidadHerramienta
	var total int64
	q := r.db.WithContext(ctx).Model(&model.UnidadHerramienta{})
	if filter.TipoID != "" {
		q = q.Where("tipo_id = ?", filter.TipoID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.CamionetaID != "" {
		q = q.Where("camioneta_id = ?", filter.CamionetaID)
	}
	if filter.UsuarioID != "" {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.EquipoID != "" {
		q = q.Where("equipo_id = ?", filter.EquipoID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Tipo").Preload("Usuario").Preload("Camioneta").
		Order("codigo ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&list).Error
	return list, total, err
}

func (r *herramientaRepo) FindUnidadByIDTx(tx *gorm.DB, id uuid.UUID) (*model.UnidadHerramienta, error) {
	var u model.UnidadHerramienta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *herramientaRepo) UpdateUnidadTx(tx *gorm.DB, u *model.UnidadHerramienta, estadoAnterior string) error {
	res := tx.Model(&model.UnidadHerramienta{}).
		Where("id = ? AND estado = ?", u.ID, estadoAnterior).Updates(map[string]interface{}{
		"estado":           u.Estado,
		"usuario_id":       u.UsuarioID,
		"equipo_id":        u.EquipoID,
		"camioneta_id":     u.CamionetaID,
		"fecha_asignacion": u.FechaAsignacion,
		"observaciones":    u.Observaciones,
		"updated_at":       gorm.Expr("NOW()"),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEstadoCambiado
	}
	return nil
}

func (r *herramientaRepo) CountAsignadasCamioneta(ctx context.Context, camionetaID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.UnidadHerramienta{}).
		Where("camioneta_id = ? AND estado = ?", camionetaID, model.HerramientaAsignada).Count(&n).Error
	return n, err
}

func (r *herramientaRepo) CountPorEstado(ctx context.Context) (map[string]int64, error) {
	return countPorEstado(ctx, r.db, &model.UnidadHerramienta{})
}

func (r *herramientaRepo) CreateHistorialTx(tx *gorm.DB, h *model.HistorialHerramienta) error {
	return tx.Create(h).Error
}

func (r *herramientaRepo) ListHistorial(ctx context.Context, unidadID uuid.UUID) ([]model.HistorialHerramienta, error) {
	var list []model.HistorialHerramienta
	err := r.db.WithContext(ctx).Where("unidad_id = ?", unidadID).Order("created_at DESC").Find(&list).Error
	return list, err
}
