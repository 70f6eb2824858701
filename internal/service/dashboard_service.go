package service

import (
	"context"

	"inventario3g/internal/dto"
	"inventario3g/internal/repository"
)

type DashboardService interface {
	Resumen(ctx context.Context) (*dto.ResumenResponse, error)
}

type dashboardService struct {
	articulos    repository.ArticuloRepository
	solicitudes  repository.SolicitudRepository
	ordenes      repository.OrdenCompraRepository
	herramientas repository.HerramientaRepository
}

func NewDashboardService(
	articulos repository.ArticuloRepository,
	solicitudes repository.SolicitudRepository,
	ordenes repository.OrdenCompraRepository,
	herramientas repository.HerramientaRepository,
) DashboardService {
	return &dashboardService{articulos: articulos, solicitudes: solicitudes, ordenes: ordenes, herramientas: herramientas}
}

func (s *dashboardService) Resumen(ctx context.Context) (*dto.ResumenResponse, error) {
	var resp dto.ResumenResponse
	var err error
	if resp.ArticulosActivos, err = s.articulos.CountActivos(ctx); err != nil {
		return nil, err
	}
	if resp.ArticulosBajoStock, err = s.articulos.CountBajoStock(ctx); err != nil {
		return nil, err
	}
	if resp.SolicitudesPendientes, err = s.solicitudes.CountPendientes(ctx); err != nil {
		return nil, err
	}
	if resp.OrdenesPorEstado, err = s.ordenes.CountPorEstado(ctx); err != nil {
		return nil, err
	}
	if resp.HerramientasPorEstado, err = s.herramientas.CountPorEstado(ctx); err != nil {
		return nil, err
	}
	return &resp, nil
}
