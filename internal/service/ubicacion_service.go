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
	"gorm.io/gorm"
)

type UbicacionService interface {
	Crear(ctx context.Context, req dto.CrearUbicacionRequest) (*dto.UbicacionResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.UbicacionResponse], error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarUbicacionRequest) (*dto.UbicacionResponse, error)
	// Desactivar is refused while active articles point at the location.
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type ubicacionService struct {
	repo repository.UbicacionRepository
}

func NewUbicacionService(repo repository.UbicacionRepository) UbicacionService {
	return &ubicacionService{repo: repo}
}

func mapUbicacion(u model.Ubicacion) dto.UbicacionResponse {
	return dto.UbicacionResponse{
		ID:          u.ID.String(),
		Codigo:      u.Codigo,
		Almacen:     u.Almacen,
		Pasillo:     u.Pasillo,
		Estante:     u.Estante,
		Nivel:       u.Nivel,
		Descripcion: u.Descripcion,
		Activo:      u.Activo,
	}
}

func (s *ubicacionService) codigoLibre(ctx context.Context, codigo string, excepto uuid.UUID) error {
	existing, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excepto {
		return fmt.Errorf("%w: ya existe la ubicacion %s", ErrDuplicado, codigo)
	}
	return nil
}

func (s *ubicacionService) Crear(ctx context.Context, req dto.CrearUbicacionRequest) (*dto.UbicacionResponse, error) {
	u := &model.Ubicacion{
		Almacen:     strings.TrimSpace(req.Almacen),
		Pasillo:     strings.TrimSpace(req.Pasillo),
		Estante:     strings.TrimSpace(req.Estante),
		Nivel:       strings.TrimSpace(req.Nivel),
		Descripcion: limpio(req.Descripcion),
		Activo:      true,
	}
	if u.Almacen == "" {
		u.Almacen = "principal"
	}
	u.Codigo = strings.ToUpper(strings.TrimSpace(req.Codigo))
	if u.Codigo == "" {
		u.Codigo = u.CodigoDerivado()
	}
	if err := s.codigoLibre(ctx, u.Codigo, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, traducir(err, "ubicacion")
	}
	resp := mapUbicacion(*u)
	return &resp, nil
}

func (s *ubicacionService) Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.UbicacionResponse], error) {
	filter.Normalizar()
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UbicacionResponse, 0, len(list))
	for _, u := range list {
		out = append(out, mapUbicacion(u))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *ubicacionService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarUbicacionRequest) (*dto.UbicacionResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "ubicacion")
	}
	if req.Almacen != nil {
		u.Almacen = strings.TrimSpace(*req.Almacen)
	}
	if req.Pasillo != nil {
		u.Pasillo = strings.TrimSpace(*req.Pasillo)
	}
	if req.Estante != nil {
		u.Estante = strings.TrimSpace(*req.Estante)
	}
	if req.Nivel != nil {
		u.Nivel = strings.TrimSpace(*req.Nivel)
	}
	if req.Descripcion != nil {
		u.Descripcion = limpio(req.Descripcion)
	}
	if req.Codigo != nil {
		codigo := strings.ToUpper(strings.TrimSpace(*req.Codigo))
		if err := s.codigoLibre(ctx, codigo, u.ID); err != nil {
			return nil, err
		}
		u.Codigo = codigo
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, traducir(err, "ubicacion")
	}
	resp := mapUbicacion(*u)
	return &resp, nil
}

func (s *ubicacionService) Desactivar(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountArticulosActivos(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: la ubicacion tiene %d articulos activos", ErrConflicto, n)
	}
	return traducir(s.repo.SetActivo(ctx, id, false), "ubicacion")
}
