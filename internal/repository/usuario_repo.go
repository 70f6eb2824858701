package repository

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	// FindByEmail matches case-insensitively and includes inactive users.
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, int64, error)
	ListByEquipo(ctx context.Context, equipoID uuid.UUID) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	// AsignarEquipoTx makes usuarioIDs the exact member set of equipoID.
	AsignarEquipoTx(tx *gorm.DB, equipoID uuid.UUID, usuarioIDs []uuid.UUID) error
	CountByEquipos(ctx context.Context, equipoIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	DB() *gorm.DB
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) DB() *gorm.DB { return r.db }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) List(ctx context.Context, filter dto.UsuarioFilter) ([]model.Usuario, int64, error) {
	var users []model.Usuario
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Usuario{})
	if !filter.IncluirInactivos {
		q = q.Where("activo = true")
	}
	if filter.Rol != "" {
		q = q.Where("rol = ?", filter.Rol)
	}
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where("nombre ILIKE ? OR email ILIKE ?", like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(filter.Offset()).Find(&users).Error
	return users, total, err
}

func (r *usuarioRepo) ListByEquipo(ctx context.Context, equipoID uuid.UUID) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).Where("equipo_id = ?", equipoID).Order("nombre ASC").Find(&users).Error
	return users, err
}

func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Omit("Equipo").Save(u).Error
}

func (r *usuarioRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	return setActivo(ctx, r.db, &model.Usuario{}, id, activo)
}

func (r *usuarioRepo) AsignarEquipoTx(tx *gorm.DB, equipoID uuid.UUID, usuarioIDs []uuid.UUID) error {
	salen := tx.Model(&model.Usuario{}).Where("equipo_id = ?", equipoID)
	if len(usuarioIDs) > 0 {
		salen = salen.Where("id NOT IN ?", usuarioIDs)
	}
	if err := salen.Update("equipo_id", nil).Error; err != nil {
		return err
	}
	if len(usuarioIDs) == 0 {
		return nil
	}
	return tx.Model(&model.Usuario{}).Where("id IN ?", usuarioIDs).Update("equipo_id", equipoID).Error
}

func (r *usuarioRepo) CountByEquipos(ctx context.Context, equipoIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(equipoIDs))
	if len(equipoIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		EquipoID uuid.UUID
		Total    int64
	}
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Select("equipo_id, COUNT(*) AS total").
		Where("equipo_id IN ? AND activo = true", equipoIDs).
		Group("equipo_id").Scan(&rows).Error
	for _, row := range rows {
		out[row.EquipoID] = row.Total
	}
	return out, err
}
