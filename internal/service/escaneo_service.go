package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventario3g/internal/codigobarras"
	"inventario3g/internal/dto"
	"inventario3g/internal/infra"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EscaneoService interface {
	// Escanear classifies a scanner reading and resolves it to an article or
	// a tool unit. Unknown but well-formed codes return no entity.
	Escanear(ctx context.Context, usuarioID uuid.UUID, req dto.EscaneoRequest) (*dto.EscaneoResponse, error)
}

type escaneoService struct {
	articulos    ArticuloService
	herramientas HerramientaService
	guard        infra.ScanGuard
	cooldown     time.Duration
}

func NewEscaneoService(articulos ArticuloService, herramientas HerramientaService, guard infra.ScanGuard, cooldown time.Duration) EscaneoService {
	return &escaneoService{articulos: articulos, herramientas: herramientas, guard: guard, cooldown: cooldown}
}

func (s *escaneoService) Escanear(ctx context.Context, usuarioID uuid.UUID, req dto.EscaneoRequest) (*dto.EscaneoResponse, error) {
	res := codigobarras.Clasificar(req.Codigo)
	if res.Tipo == codigobarras.Desconocido {
		return nil, invalido("codigo ilegible")
	}

	if s.guard != nil && s.cooldown > 0 {
		ok, err := s.guard.Permitir(ctx, usuarioID.String()+":"+res.Codigo, s.cooldown)
		if err != nil {
			log.Warn().Err(err).Msg("escaneo: guard no disponible, se permite la lectura")
		} else if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEscaneoDuplicado, res.Codigo)
		}
	}

	resp := &dto.EscaneoResponse{
		Codigo:   res.Codigo,
		Tipo:     res.Tipo,
		Valido:   res.Valido,
		Contexto: req.Contexto,
	}
	if !res.Valido {
		return resp, nil
	}

	var err error
	switch res.Tipo {
	case codigobarras.Herramienta:
		resp.Herramienta, err = s.herramientas.ObtenerPorCodigo(ctx, res.Codigo)
	case codigobarras.UPCA:
		// UPC-A is EAN-13 with a leading zero
		resp.Articulo, err = s.articulos.ObtenerPorCodigo(ctx, "0"+res.Codigo)
	default:
		resp.Articulo, err = s.articulos.ObtenerPorCodigo(ctx, res.Codigo)
	}
	if err != nil && !errors.Is(err, ErrNoEncontrado) {
		return nil, err
	}
	return resp, nil
}
