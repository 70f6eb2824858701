package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

type UsuarioService interface {
	Crear(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	Listar(ctx context.Context, filter dto.UsuarioFilter) (*dto.ListResponse[dto.UsuarioResponse], error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	// Desactivar refuses to deactivate the acting user.
	Desactivar(ctx context.Context, actorID, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type usuarioService struct {
	repo repository.UsuarioRepository
}

func NewUsuarioService(repo repository.UsuarioRepository) UsuarioService {
	return &usuarioService{repo: repo}
}

func mapUsuario(u model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:        u.ID.String(),
		Nombre:    u.Nombre,
		Email:     u.Email,
		Rol:       u.Rol,
		Telefono:  u.Telefono,
		EquipoID:  uuidStr(u.EquipoID),
		Activo:    u.Activo,
		CreatedAt: u.CreatedAt,
	}
}

// HashPassword returns the bcrypt hash used for Usuario.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(hash), err
}

func (s *usuarioService) emailLibre(ctx context.Context, email string, excepto uuid.UUID) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excepto {
		return fmt.Errorf("%w: ya existe un usuario con el email %s", ErrDuplicado, email)
	}
	return nil
}

func (s *usuarioService) Crear(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.emailLibre(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}
	equipoID, err := parseUUIDOpt("equipo_id", req.EquipoID)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Nombre:       strings.TrimSpace(req.Nombre),
		Email:        email,
		PasswordHash: hash,
		Rol:          req.Rol,
		Telefono:     limpio(req.Telefono),
		EquipoID:     equipoID,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, traducir(err, "usuario")
	}
	resp := mapUsuario(*user)
	return &resp, nil
}

func (s *usuarioService) Listar(ctx context.Context, filter dto.UsuarioFilter) (*dto.ListResponse[dto.UsuarioResponse], error) {
	filter.Normalizar()
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(users))
	for _, u := range users {
		out = append(out, mapUsuario(u))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *usuarioService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "usuario")
	}
	resp := mapUsuario(*user)
	return &resp, nil
}

func (s *usuarioService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "usuario")
	}
	if req.Nombre != nil {
		user.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := s.emailLibre(ctx, email, user.ID); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if req.Rol != nil {
		user.Rol = *req.Rol
	}
	if req.Telefono != nil {
		user.Telefono = limpio(req.Telefono)
	}
	if req.EquipoID != nil {
		if user.EquipoID, err = parseUUIDOpt("equipo_id", req.EquipoID); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, traducir(err, "usuario")
	}
	resp := mapUsuario(*user)
	return &resp, nil
}

func (s *usuarioService) Desactivar(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return fmt.Errorf("%w: no puede desactivar su propio usuario", ErrConflicto)
	}
	return traducir(s.repo.SetActivo(ctx, id, false), "usuario")
}

func (s *usuarioService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return traducir(s.repo.SetActivo(ctx, id, true), "usuario")
}
