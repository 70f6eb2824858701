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

// CategoriaService defines business operations for article categories.
type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.CategoriaResponse], error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

// mapCategoria converts a model to a DTO response.
func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID.String(),
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Color:       c.Color,
		Activo:      c.Activo,
	}
}

// nombreLibre fails with ErrDuplicado when another category already uses nombre.
func (s *categoriaService) nombreLibre(ctx context.Context, nombre string, excepto uuid.UUID) error {
	existing, err := s.repo.FindByNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excepto {
		return fmt.Errorf("%w: ya existe una categoria con ese nombre", ErrDuplicado)
	}
	return nil
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if err := s.nombreLibre(ctx, nombre, uuid.Nil); err != nil {
		return dto.CategoriaResponse{}, err
	}

	c := &model.Categoria{
		Nombre:      nombre,
		Descripcion: limpio(req.Descripcion),
		Color:       limpio(req.Color),
		Activo:      true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoriaResponse{}, traducir(err, "categoria")
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.CategoriaResponse], error) {
	filter.Normalizar()
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return dto.NewListResponse(result, total, filter.Paginacion), nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return dto.CategoriaResponse{}, traducir(err, "categoria")
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if err := s.nombreLibre(ctx, nombre, c.ID); err != nil {
			return dto.CategoriaResponse{}, err
		}
		c.Nombre = nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = limpio(req.Descripcion)
	}
	if req.Color != nil {
		c.Color = limpio(req.Color)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return dto.CategoriaResponse{}, traducir(err, "categoria")
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return traducir(s.repo.SetActivo(ctx, id, false), "categoria")
}
