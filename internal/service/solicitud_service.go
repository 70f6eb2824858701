package service

import (
	"context"
	"fmt"
	"strings"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SolicitudService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearSolicitudRequest) (*dto.SolicitudResponse, error)
	Listar(ctx context.Context, filter dto.SolicitudFilter) (*dto.ListResponse[dto.SolicitudResponse], error)
	// Cancelar only applies to pendiente requests.
	Cancelar(ctx context.Context, id uuid.UUID) error
}

type solicitudService struct {
	solicitudes repository.SolicitudRepository
	articulos   repository.ArticuloRepository
}

func NewSolicitudService(solicitudes repository.SolicitudRepository, articulos repository.ArticuloRepository) SolicitudService {
	return &solicitudService{solicitudes: solicitudes, articulos: articulos}
}

func mapSolicitud(s model.SolicitudCompra) dto.SolicitudResponse {
	resp := dto.SolicitudResponse{
		ID:            s.ID.String(),
		ArticuloID:    s.ArticuloID.String(),
		Cantidad:      s.Cantidad,
		SolicitanteID: uuidStr(s.SolicitanteID),
		Motivo:        s.Motivo,
		Origen:        s.Origen,
		Estado:        s.Estado,
		OrdenCompraID: uuidStr(s.OrdenCompraID),
		CreatedAt:     s.CreatedAt,
	}
	if s.Articulo != nil {
		resp.ArticuloNombre = s.Articulo.Nombre
	}
	return resp
}

func (s *solicitudService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearSolicitudRequest) (*dto.SolicitudResponse, error) {
	articuloID, err := uuid.Parse(req.ArticuloID)
	if err != nil {
		return nil, invalido("articulo_id no es un UUID")
	}
	if req.Cantidad <= 0 {
		return nil, invalido("cantidad debe ser mayor a cero")
	}
	a, err := s.articulos.FindByID(ctx, articuloID)
	if err != nil {
		return nil, traducir(err, "articulo")
	}
	if !a.Activo {
		return nil, invalido("el articulo %s esta inactivo", a.Nombre)
	}

	uid := usuarioID
	sol := &model.SolicitudCompra{
		ArticuloID:    articuloID,
		Cantidad:      req.Cantidad,
		SolicitanteID: &uid,
		Motivo:        strings.TrimSpace(req.Motivo),
		Origen:        model.OrigenManual,
		Estado:        model.SolicitudPendiente,
	}
	err = runTx(ctx, s.articulos.DB(), func(tx *gorm.DB) error {
		return s.solicitudes.CreateTx(tx, sol)
	})
	if err != nil {
		return nil, traducir(err, "solicitud")
	}
	sol.Articulo = a
	resp := mapSolicitud(*sol)
	return &resp, nil
}

func (s *solicitudService) Listar(ctx context.Context, filter dto.SolicitudFilter) (*dto.ListResponse[dto.SolicitudResponse], error) {
	filter.Normalizar()
	list, total, err := s.solicitudes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SolicitudResponse, 0, len(list))
	for _, sol := range list {
		out = append(out, mapSolicitud(sol))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *solicitudService) Cancelar(ctx context.Context, id uuid.UUID) error {
	sol, err := s.solicitudes.FindByID(ctx, id)
	if err != nil {
		return traducir(err, "solicitud")
	}
	if sol.Estado != model.SolicitudPendiente {
		return fmt.Errorf("%w: la solicitud esta %s", ErrTransicionInvalida, sol.Estado)
	}
	return s.solicitudes.UpdateEstado(ctx, id, model.SolicitudCancelada)
}
