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

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.ProveedorResponse], error)
	// Actualizar replaces the contact list when req.Contactos is present.
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func mapProveedor(p model.Proveedor) dto.ProveedorResponse {
	contactos := make([]dto.ContactoResponse, 0, len(p.Contactos))
	for _, c := range p.Contactos {
		contactos = append(contactos, dto.ContactoResponse{
			ID:       c.ID.String(),
			Nombre:   c.Nombre,
			Cargo:    c.Cargo,
			Telefono: c.Telefono,
			Email:    c.Email,
		})
	}
	return dto.ProveedorResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		RFC:       p.RFC,
		Telefono:  p.Telefono,
		Email:     p.Email,
		Direccion: p.Direccion,
		Activo:    p.Activo,
		Contactos: contactos,
	}
}

func mapContactos(in []dto.ContactoRequest, proveedorID uuid.UUID) []model.ContactoProveedor {
	out := make([]model.ContactoProveedor, 0, len(in))
	for _, c := range in {
		out = append(out, model.ContactoProveedor{
			ProveedorID: proveedorID,
			Nombre:      strings.TrimSpace(c.Nombre),
			Cargo:       limpio(c.Cargo),
			Telefono:    limpio(c.Telefono),
			Email:       limpio(c.Email),
		})
	}
	return out
}

func (s *proveedorService) rfcLibre(ctx context.Context, rfc string, excepto uuid.UUID) error {
	existing, err := s.repo.FindByRFC(ctx, rfc)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.ID != excepto {
		return fmt.Errorf("%w: ya existe un proveedor con RFC %s", ErrDuplicado, rfc)
	}
	return nil
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	rfc := strings.ToUpper(strings.TrimSpace(req.RFC))
	if err := s.rfcLibre(ctx, rfc, uuid.Nil); err != nil {
		return nil, err
	}
	p := &model.Proveedor{
		Nombre:    strings.TrimSpace(req.Nombre),
		RFC:       rfc,
		Telefono:  limpio(req.Telefono),
		Email:     limpio(req.Email),
		Direccion: limpio(req.Direccion),
		Activo:    true,
		Contactos: mapContactos(req.Contactos, uuid.Nil),
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(tx, p)
	})
	if err != nil {
		return nil, traducir(err, "proveedor")
	}
	resp := mapProveedor(*p)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "proveedor")
	}
	resp := mapProveedor(*p)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context, filter dto.CatalogoFilter) (*dto.ListResponse[dto.ProveedorResponse], error) {
	filter.Normalizar()
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProveedorResponse, 0, len(list))
	for _, p := range list {
		out = append(out, mapProveedor(p))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "proveedor")
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.RFC != nil {
		rfc := strings.ToUpper(strings.TrimSpace(*req.RFC))
		if err := s.rfcLibre(ctx, rfc, p.ID); err != nil {
			return nil, err
		}
		p.RFC = rfc
	}
	if req.Telefono != nil {
		p.Telefono = limpio(req.Telefono)
	}
	if req.Email != nil {
		p.Email = limpio(req.Email)
	}
	if req.Direccion != nil {
		p.Direccion = limpio(req.Direccion)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		if req.Contactos == nil {
			return nil
		}
		p.Contactos = mapContactos(*req.Contactos, p.ID)
		return s.repo.ReemplazarContactosTx(tx, p.ID, p.Contactos)
	})
	if err != nil {
		return nil, traducir(err, "proveedor")
	}
	resp := mapProveedor(*p)
	return &resp, nil
}

func (s *proveedorService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return traducir(s.repo.SetActivo(ctx, id, false), "proveedor")
}
