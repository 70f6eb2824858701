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

type CamionetaService interface {
	Crear(ctx context.Context, req dto.CrearCamionetaRequest) (*dto.CamionetaResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.CamionetaResponse], error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CamionetaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCamionetaRequest) (*dto.CamionetaResponse, error)
	// Desactivar is refused while tool units are assigned to the truck.
	Desactivar(ctx context.Context, id uuid.UUID) error
	Herramientas(ctx context.Context, id uuid.UUID) ([]dto.UnidadHerramientaResponse, error)
}

type camionetaService struct {
	camionetas   repository.CamionetaRepository
	herramientas repository.HerramientaRepository
}

func NewCamionetaService(camionetas repository.CamionetaRepository, herramientas repository.HerramientaRepository) CamionetaService {
	return &camionetaService{camionetas: camionetas, herramientas: herramientas}
}

func mapCamioneta(c model.Camioneta) dto.CamionetaResponse {
	resp := dto.CamionetaResponse{
		ID:            c.ID.String(),
		Nombre:        c.Nombre,
		Placas:        c.Placas,
		Marca:         c.Marca,
		Modelo:        c.Modelo,
		Anio:          c.Anio,
		EquipoID:      uuidStr(c.EquipoID),
		ResponsableID: uuidStr(c.ResponsableID),
		Activo:        c.Activo,
	}
	if c.Equipo != nil {
		resp.EquipoNombre = &c.Equipo.Nombre
	}
	return resp
}

func normalizarPlacas(p string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(p), " ", ""))
}

func (s *camionetaService) placasLibres(ctx context.Context, placas string, excepto uuid.UUID) error {
	existing, err := s.camionetas.FindByPlacas(ctx, placas)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excepto {
		return fmt.Errorf("%w: ya existe una camioneta con placas %s", ErrDuplicado, placas)
	}
	return nil
}

func (s *camionetaService) Crear(ctx context.Context, req dto.CrearCamionetaRequest) (*dto.CamionetaResponse, error) {
	placas := normalizarPlacas(req.Placas)
	if err := s.placasLibres(ctx, placas, uuid.Nil); err != nil {
		return nil, err
	}
	equipoID, err := parseUUIDOpt("equipo_id", req.EquipoID)
	if err != nil {
		return nil, err
	}
	responsableID, err := parseUUIDOpt("responsable_id", req.ResponsableID)
	if err != nil {
		return nil, err
	}
	c := &model.Camioneta{
		Nombre:        strings.TrimSpace(req.Nombre),
		Placas:        placas,
		Marca:         limpio(req.Marca),
		Modelo:        limpio(req.Modelo),
		Anio:          req.Anio,
		EquipoID:      equipoID,
		ResponsableID: responsableID,
		Activo:        true,
	}
	if err := s.camionetas.Create(ctx, c); err != nil {
		return nil, traducir(err, "camioneta")
	}
	resp := mapCamioneta(*c)
	return &resp, nil
}

func (s *camionetaService) Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.CamionetaResponse], error) {
	filter.Normalizar()
	list, total, err := s.camionetas.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CamionetaResponse, 0, len(list))
	for _, c := range list {
		out = append(out, mapCamioneta(c))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *camionetaService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.CamionetaResponse, error) {
	c, err := s.camionetas.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "camioneta")
	}
	resp := mapCamioneta(*c)
	return &resp, nil
}

func (s *camionetaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCamionetaRequest) (*dto.CamionetaResponse, error) {
	c, err := s.camionetas.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "camioneta")
	}
	if req.Nombre != nil {
		c.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Placas != nil {
		placas := normalizarPlacas(*req.Placas)
		if err := s.placasLibres(ctx, placas, c.ID); err != nil {
			return nil, err
		}
		c.Placas = placas
	}
	if req.Marca != nil {
		c.Marca = limpio(req.Marca)
	}
	if req.Modelo != nil {
		c.Modelo = limpio(req.Modelo)
	}
	if req.Anio != nil {
		c.Anio = req.Anio
	}
	if req.EquipoID != nil {
		if c.EquipoID, err = parseUUIDOpt("equipo_id", req.EquipoID); err != nil {
			return nil, err
		}
		c.Equipo = nil
	}
	if req.ResponsableID != nil {
		if c.ResponsableID, err = parseUUIDOpt("responsable_id", req.ResponsableID); err != nil {
			return nil, err
		}
	}
	if err := s.camionetas.Update(ctx, c); err != nil {
		return nil, traducir(err, "camioneta")
	}
	resp := mapCamioneta(*c)
	return &resp, nil
}

func (s *camionetaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	n, err := s.herramientas.CountAsignadasCamioneta(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: la camioneta tiene %d herramientas asignadas", ErrConflicto, n)
	}
	return traducir(s.camionetas.SetActivo(ctx, id, false), "camioneta")
}

func (s *camionetaService) Herramientas(ctx context.Context, id uuid.UUID) ([]dto.UnidadHerramientaResponse, error) {
	if _, err := s.camionetas.FindByID(ctx, id); err != nil {
		return nil, traducir(err, "camioneta")
	}
	list, _, err := s.herramientas.ListUnidades(ctx, dto.UnidadFilter{
		Paginacion:  dto.Paginacion{Page: 1, Limit: 500},
		CamionetaID: id.String(),
	})
	if err != nil {
		return nil, err
	}
	return mapUnidades(list), nil
}
