package service

import (
	"context"
	"fmt"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Foliador hands out movement batch folios. infra.FolioGenerator satisfies it.
type Foliador interface {
	Nuevo(prefijo string) string
}

// PrefijoFolioMovimiento prefixes every movement batch folio.
const PrefijoFolioMovimiento = "MOV"

type MovimientoService interface {
	// Registrar applies every line of the batch in one transaction under a
	// single folio. Any failing line aborts the whole batch.
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarMovimientosRequest) (*dto.RegistroMovimientosResponse, error)
	Listar(ctx context.Context, filter dto.MovimientoFilter) (*dto.ListResponse[dto.MovimientoResponse], error)
}

type movimientoService struct {
	movimientos repository.MovimientoRepository
	articulos   repository.ArticuloRepository
	solicitudes repository.SolicitudRepository
	folios      Foliador
	rdb         *redis.Client
}

func NewMovimientoService(
	movimientos repository.MovimientoRepository,
	articulos repository.ArticuloRepository,
	solicitudes repository.SolicitudRepository,
	folios Foliador,
	rdb *redis.Client,
) MovimientoService {
	return &movimientoService{
		movimientos: movimientos,
		articulos:   articulos,
		solicitudes: solicitudes,
		folios:      folios,
		rdb:         rdb,
	}
}

func mapMovimiento(m model.Movimiento) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:            m.ID.String(),
		Folio:         m.Folio,
		Tipo:          m.Tipo,
		ArticuloID:    m.ArticuloID.String(),
		Cantidad:      m.Cantidad,
		StockAnterior: m.StockAnterior,
		StockNuevo:    m.StockNuevo,
		UsuarioID:     uuidStr(m.UsuarioID),
		EquipoID:      uuidStr(m.EquipoID),
		CamionetaID:   uuidStr(m.CamionetaID),
		ReferenciaID:  uuidStr(m.ReferenciaID),
		Motivo:        m.Motivo,
		CreatedAt:     m.CreatedAt,
	}
	if m.Articulo != nil {
		resp.ArticuloNombre = m.Articulo.Nombre
	}
	if m.Usuario != nil {
		resp.UsuarioNombre = m.Usuario.Nombre
	}
	return resp
}

func mapMovimientos(list []model.Movimiento) []dto.MovimientoResponse {
	out := make([]dto.MovimientoResponse, 0, len(list))
	for _, m := range list {
		out = append(out, mapMovimiento(m))
	}
	return out
}

func (s *movimientoService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarMovimientosRequest) (*dto.RegistroMovimientosResponse, error) {
	equipoID, err := parseUUIDOpt("equipo_id", req.EquipoID)
	if err != nil {
		return nil, err
	}
	camionetaID, err := parseUUIDOpt("camioneta_id", req.CamionetaID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for i, it := range req.Items {
		id, err := uuid.Parse(it.ArticuloID)
		if err != nil {
			return nil, invalido("items[%d].articulo_id no es un UUID", i)
		}
		if it.Cantidad <= 0 && req.Tipo != model.MovAjuste {
			return nil, invalido("items[%d].cantidad debe ser mayor a cero", i)
		}
		ids = append(ids, id)
	}

	articulos, err := s.articulos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]model.Articulo, len(articulos))
	for _, a := range articulos {
		porID[a.ID] = a
	}
	for _, id := range ids {
		a, ok := porID[id]
		if !ok {
			return nil, fmt.Errorf("%w: articulo %s", ErrNoEncontrado, id)
		}
		if !a.Activo {
			return nil, invalido("el articulo %s esta inactivo", a.Nombre)
		}
	}

	folio := s.folios.Nuevo(PrefijoFolioMovimiento)
	uid := usuarioID
	var creados []model.Movimiento
	var generadas []model.SolicitudCompra

	err = runTx(ctx, s.movimientos.DB(), func(tx *gorm.DB) error {
		for i, it := range req.Items {
			delta := it.Cantidad
			switch req.Tipo {
			case model.MovSalida:
				delta = -it.Cantidad
			case model.MovAjuste:
				actual, err := s.movimientos.StockActualTx(tx, ids[i])
				if err != nil {
					return err
				}
				delta = it.Cantidad - actual
			}
			if delta == 0 {
				continue
			}

			m := model.Movimiento{
				Folio:       folio,
				Tipo:        req.Tipo,
				ArticuloID:  ids[i],
				Cantidad:    delta,
				UsuarioID:   &uid,
				EquipoID:    equipoID,
				CamionetaID: camionetaID,
				Motivo:      req.Motivo,
			}
			if err := s.movimientos.AplicarTx(tx, &m); err != nil {
				return err
			}
			creados = append(creados, m)

			if req.Tipo != model.MovSalida {
				continue
			}
			a := porID[ids[i]]
			a.StockActual = m.StockNuevo
			if !a.BajoStock() {
				continue
			}
			abierta, err := s.solicitudes.ExisteAbiertaTx(tx, a.ID)
			if err != nil {
				return err
			}
			if abierta {
				continue
			}
			sol := model.SolicitudCompra{
				ArticuloID:    a.ID,
				Cantidad:      a.CantidadReposicion(),
				SolicitanteID: &uid,
				Motivo:        fmt.Sprintf("stock bajo minimo tras salida %s", folio),
				Origen:        model.OrigenAutomatica,
				Estado:        model.SolicitudPendiente,
			}
			if err := s.solicitudes.CreateTx(tx, &sol); err != nil {
				return err
			}
			generadas = append(generadas, sol)
		}
		return nil
	})
	if err != nil {
		return nil, traducir(err, "articulo")
	}

	for _, m := range creados {
		if a, ok := porID[m.ArticuloID]; ok {
			invalidarCacheArticulo(ctx, s.rdb, a.CodigoEAN13)
		}
	}
	if len(generadas) > 0 {
		log.Info().Str("folio", folio).Int("solicitudes", len(generadas)).Msg("solicitudes de compra automaticas")
	}

	resp := &dto.RegistroMovimientosResponse{
		Folio:                folio,
		Movimientos:          mapMovimientos(creados),
		SolicitudesGeneradas: make([]dto.SolicitudResponse, 0, len(generadas)),
	}
	for _, sol := range generadas {
		resp.SolicitudesGeneradas = append(resp.SolicitudesGeneradas, mapSolicitud(sol))
	}
	return resp, nil
}

func (s *movimientoService) Listar(ctx context.Context, filter dto.MovimientoFilter) (*dto.ListResponse[dto.MovimientoResponse], error) {
	filter.Normalizar()
	list, total, err := s.movimientos.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListResponse(mapMovimientos(list), total, filter.Paginacion), nil
}
