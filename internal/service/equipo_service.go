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

type EquipoService interface {
	Crear(ctx context.Context, req dto.CrearEquipoRequest) (*dto.EquipoResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.EquipoResponse], error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EquipoResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEquipoRequest) (*dto.EquipoResponse, error)
	// AsignarMiembros makes req.UsuarioIDs the exact member list of the team.
	AsignarMiembros(ctx context.Context, id uuid.UUID, req dto.AsignarMiembrosRequest) (*dto.EquipoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type equipoService struct {
	equipos  repository.EquipoRepository
	usuarios repository.UsuarioRepository
}

func NewEquipoService(equipos repository.EquipoRepository, usuarios repository.UsuarioRepository) EquipoService {
	return &equipoService{equipos: equipos, usuarios: usuarios}
}

func mapEquipo(e model.Equipo, total int64) dto.EquipoResponse {
	resp := dto.EquipoResponse{
		ID:            e.ID.String(),
		Nombre:        e.Nombre,
		Descripcion:   e.Descripcion,
		EncargadoID:   uuidStr(e.EncargadoID),
		Activo:        e.Activo,
		TotalMiembros: total,
	}
	if len(e.Miembros) > 0 {
		resp.Miembros = make([]dto.UsuarioResponse, 0, len(e.Miembros))
		for _, u := range e.Miembros {
			resp.Miembros = append(resp.Miembros, mapUsuario(u))
		}
	}
	return resp
}

func (s *equipoService) nombreLibre(ctx context.Context, nombre string, excepto uuid.UUID) error {
	existing, err := s.equipos.FindByNombre(ctx, nombre)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excepto {
		return fmt.Errorf("%w: ya existe el equipo %s", ErrDuplicado, nombre)
	}
	return nil
}

func (s *equipoService) Crear(ctx context.Context, req dto.CrearEquipoRequest) (*dto.EquipoResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if err := s.nombreLibre(ctx, nombre, uuid.Nil); err != nil {
		return nil, err
	}
	encargadoID, err := parseUUIDOpt("encargado_id", req.EncargadoID)
	if err != nil {
		return nil, err
	}
	e := &model.Equipo{
		Nombre:      nombre,
		Descripcion: limpio(req.Descripcion),
		EncargadoID: encargadoID,
		Activo:      true,
	}
	if err := s.equipos.Create(ctx, e); err != nil {
		return nil, traducir(err, "equipo")
	}
	resp := mapEquipo(*e, 0)
	return &resp, nil
}

func (s *equipoService) Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.EquipoResponse], error) {
	filter.Normalizar()
	list, total, err := s.equipos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.ID)
	}
	conteo, err := s.usuarios.CountByEquipos(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EquipoResponse, 0, len(list))
	for _, e := range list {
		out = append(out, mapEquipo(e, conteo[e.ID]))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *equipoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.EquipoResponse, error) {
	e, err := s.equipos.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "equipo")
	}
	resp := mapEquipo(*e, int64(len(e.Miembros)))
	return &resp, nil
}

func (s *equipoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarEquipoRequest) (*dto.EquipoResponse, error) {
	e, err := s.equipos.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "equipo")
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if err := s.nombreLibre(ctx, nombre, e.ID); err != nil {
			return nil, err
		}
		e.Nombre = nombre
	}
	if req.Descripcion != nil {
		e.Descripcion = limpio(req.Descripcion)
	}
	if req.EncargadoID != nil {
		if e.EncargadoID, err = parseUUIDOpt("encargado_id", req.EncargadoID); err != nil {
			return nil, err
		}
	}
	if err := s.equipos.Update(ctx, e); err != nil {
		return nil, traducir(err, "equipo")
	}
	resp := mapEquipo(*e, int64(len(e.Miembros)))
	return &resp, nil
}

func (s *equipoService) AsignarMiembros(ctx context.Context, id uuid.UUID, req dto.AsignarMiembrosRequest) (*dto.EquipoResponse, error) {
	ids, err := parseUUIDs("usuario_ids", req.UsuarioIDs)
	if err != nil {
		return nil, err
	}
	e, err := s.equipos.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "equipo")
	}
	if !e.Activo {
		return nil, invalido("el equipo %s esta inactivo", e.Nombre)
	}
	for _, uid := range ids {
		u, err := s.usuarios.FindByID(ctx, uid)
		if err != nil {
			return nil, traducir(err, "usuario")
		}
		if !u.Activo {
			return nil, invalido("el usuario %s esta inactivo", u.Nombre)
		}
	}

	err = runTx(ctx, s.usuarios.DB(), func(tx *gorm.DB) error {
		return s.usuarios.AsignarEquipoTx(tx, id, ids)
	})
	if err != nil {
		return nil, err
	}
	miembros, err := s.usuarios.ListByEquipo(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Miembros = miembros
	resp := mapEquipo(*e, int64(len(miembros)))
	return &resp, nil
}

func (s *equipoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return traducir(s.equipos.SetActivo(ctx, id, false), "equipo")
}
