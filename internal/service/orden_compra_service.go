package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventario3g/internal/dto"
	"inventario3g/internal/infra"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"
	"inventario3g/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PrefijoFolioRecepcion prefixes the movement folios of receptions and cancellations.
const PrefijoFolioRecepcion = "REC"

// ColaEmail is satisfied by *worker.Dispatcher.
type ColaEmail interface {
	EnqueueEmail(ctx context.Context, payload worker.EmailJobPayload) error
}

type OrdenCompraService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error)
	Listar(ctx context.Context, filter dto.OrdenFilter) (*dto.ListResponse[dto.OrdenResponse], error)
	// Actualizar is only allowed while the order is borrador.
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOrdenRequest) (*dto.OrdenResponse, error)
	Enviar(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error)
	Recibir(ctx context.Context, usuarioID, id uuid.UUID, req dto.RecibirOrdenRequest) (*dto.RecepcionResponse, error)
	Anular(ctx context.Context, usuarioID, id uuid.UUID, req dto.AnularOrdenRequest) (*dto.AnulacionResponse, error)
	// PDF renders the order and returns the bytes and its folio.
	PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// OrdenCompraDeps groups the collaborators of the purchase order service.
type OrdenCompraDeps struct {
	Ordenes     repository.OrdenCompraRepository
	Solicitudes repository.SolicitudRepository
	Articulos   repository.ArticuloRepository
	Proveedores repository.ProveedorRepository
	Movimientos repository.MovimientoRepository
	Storage     *infra.Storage
	Emails      ColaEmail
	Folios      Foliador
	Redis       *redis.Client
	Empresa     string
}

type ordenCompraService struct {
	OrdenCompraDeps
	now func() time.Time
}

func NewOrdenCompraService(deps OrdenCompraDeps) OrdenCompraService {
	return &ordenCompraService{OrdenCompraDeps: deps, now: time.Now}
}

func mapOrden(o model.OrdenCompra) dto.OrdenResponse {
	resp := dto.OrdenResponse{
		ID:              o.ID.String(),
		Folio:           o.Folio,
		ProveedorID:     o.ProveedorID.String(),
		CreadoPor:       o.CreadoPor.String(),
		Estado:          o.Estado,
		Total:           o.Total,
		Observaciones:   o.Observaciones,
		FechaEnvio:      o.FechaEnvio,
		FechaRecepcion:  o.FechaRecepcion,
		MotivoAnulacion: o.MotivoAnulacion,
		Items:           make([]dto.OrdenItemResponse, 0, len(o.Items)),
		SolicitudIDs:    make([]string, 0, len(o.Solicitudes)),
		CreatedAt:       o.CreatedAt,
	}
	if o.Proveedor != nil {
		resp.ProveedorNombre = o.Proveedor.Nombre
	}
	for _, it := range o.Items {
		item := dto.OrdenItemResponse{
			ID:                 it.ID.String(),
			ArticuloID:         it.ArticuloID.String(),
			CantidadSolicitada: it.CantidadSolicitada,
			CantidadRecibida:   it.CantidadRecibida,
			Pendiente:          it.Pendiente(),
			CostoUnitario:      it.CostoUnitario,
			Subtotal:           it.Subtotal(),
		}
		if it.Articulo != nil {
			item.ArticuloNombre = it.Articulo.Nombre
		}
		resp.Items = append(resp.Items, item)
	}
	for _, s := range o.Solicitudes {
		resp.SolicitudIDs = append(resp.SolicitudIDs, s.ID.String())
	}
	return resp
}

func (s *ordenCompraService) proveedorActivo(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, err := s.Proveedores.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "proveedor")
	}
	if !p.Activo {
		return nil, invalido("el proveedor %s esta inactivo", p.Nombre)
	}
	return p, nil
}

// construirItems merges explicit lines and request quantities per article,
// keeping first-appearance order. Missing costs default to the provider link
// cost, then to the article cost.
func (s *ordenCompraService) construirItems(ctx context.Context, proveedorID uuid.UUID, req []dto.ItemOrdenRequest, solicitudes []model.SolicitudCompra) ([]model.OrdenCompraItem, error) {
	type linea struct {
		cantidad int
		costo    *decimal.Decimal
	}
	orden := make([]uuid.UUID, 0, len(req)+len(solicitudes))
	lineas := map[uuid.UUID]*linea{}
	agregar := func(id uuid.UUID, cantidad int, costo *decimal.Decimal) {
		l, ok := lineas[id]
		if !ok {
			l = &linea{}
			lineas[id] = l
			orden = append(orden, id)
		}
		l.cantidad += cantidad
		if costo != nil {
			l.costo = costo
		}
	}

	for i, it := range req {
		id, err := uuid.Parse(it.ArticuloID)
		if err != nil {
			return nil, invalido("items[%d].articulo_id no es un UUID", i)
		}
		if it.Cantidad <= 0 {
			return nil, invalido("items[%d].cantidad debe ser mayor a cero", i)
		}
		if it.CostoUnitario != nil && it.CostoUnitario.IsNegative() {
			return nil, invalido("items[%d].costo_unitario no puede ser negativo", i)
		}
		agregar(id, it.Cantidad, it.CostoUnitario)
	}
	for _, sol := range solicitudes {
		agregar(sol.ArticuloID, sol.Cantidad, nil)
	}
	if len(orden) == 0 {
		return nil, invalido("la orden necesita al menos un articulo")
	}

	articulos, err := s.Articulos.FindByIDs(ctx, orden)
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]model.Articulo, len(articulos))
	for _, a := range articulos {
		porID[a.ID] = a
	}

	items := make([]model.OrdenCompraItem, 0, len(orden))
	for _, id := range orden {
		a, ok := porID[id]
		if !ok {
			return nil, fmt.Errorf("%w: articulo %s", ErrNoEncontrado, id)
		}
		l := lineas[id]
		costo := a.CostoUnitario
		if l.costo != nil {
			costo = *l.costo
		} else {
			link, err := s.Articulos.FindLink(ctx, id, proveedorID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if link != nil {
				costo = link.Costo
			}
		}
		art := a
		items = append(items, model.OrdenCompraItem{
			ArticuloID:         id,
			CantidadSolicitada: l.cantidad,
			CostoUnitario:      costo,
			Articulo:           &art,
		})
	}
	return items, nil
}

func (s *ordenCompraService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearOrdenRequest) (*dto.OrdenResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, invalido("proveedor_id no es un UUID")
	}
	prov, err := s.proveedorActivo(ctx, proveedorID)
	if err != nil {
		return nil, err
	}

	solIDs, err := parseUUIDs("solicitud_ids", req.SolicitudIDs)
	if err != nil {
		return nil, err
	}
	solicitudes, err := s.Solicitudes.FindByIDs(ctx, solIDs)
	if err != nil {
		return nil, err
	}
	if len(solicitudes) != len(solIDs) {
		return nil, fmt.Errorf("%w: alguna solicitud no existe", ErrNoEncontrado)
	}
	for _, sol := range solicitudes {
		if sol.Estado != model.SolicitudPendiente {
			return nil, fmt.Errorf("%w: la solicitud %s esta %s", ErrTransicionInvalida, sol.ID, sol.Estado)
		}
	}

	items, err := s.construirItems(ctx, proveedorID, req.Items, solicitudes)
	if err != nil {
		return nil, err
	}

	o := &model.OrdenCompra{
		ProveedorID:   proveedorID,
		CreadoPor:     usuarioID,
		Estado:        model.OrdenBorrador,
		Observaciones: limpio(req.Observaciones),
		Items:         items,
	}
	o.Total = o.CalcularTotal()

	err = runTx(ctx, s.Ordenes.DB(), func(tx *gorm.DB) error {
		folio, err := s.Ordenes.SiguienteFolioTx(tx, s.now().Year())
		if err != nil {
			return err
		}
		o.Folio = folio
		if err := s.Ordenes.CreateTx(tx, o); err != nil {
			return err
		}
		return s.Solicitudes.VincularOrdenTx(tx, solIDs, o.ID)
	})
	if err != nil {
		return nil, traducir(err, "orden de compra")
	}

	o.Proveedor = prov
	for i := range solicitudes {
		solicitudes[i].Estado = model.SolicitudEnOrden
	}
	o.Solicitudes = solicitudes
	log.Info().Str("folio", o.Folio).Str("proveedor", prov.Nombre).Msg("orden de compra creada")
	resp := mapOrden(*o)
	return &resp, nil
}

func (s *ordenCompraService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error) {
	o, err := s.Ordenes.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "orden de compra")
	}
	resp := mapOrden(*o)
	return &resp, nil
}

func (s *ordenCompraService) Listar(ctx context.Context, filter dto.OrdenFilter) (*dto.ListResponse[dto.OrdenResponse], error) {
	filter.Normalizar()
	list, total, err := s.Ordenes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrdenResponse, 0, len(list))
	for _, o := range list {
		out = append(out, mapOrden(o))
	}
	return dto.NewListResponse(out, total, filter.Paginacion), nil
}

func (s *ordenCompraService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarOrdenRequest) (*dto.OrdenResponse, error) {
	o, err := s.Ordenes.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "orden de compra")
	}
	if o.Estado != model.OrdenBorrador {
		return nil, fmt.Errorf("%w: solo se edita una orden en borrador (actual %s)", ErrTransicionInvalida, o.Estado)
	}

	if req.ProveedorID != nil {
		proveedorID, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, invalido("proveedor_id no es un UUID")
		}
		prov, err := s.proveedorActivo(ctx, proveedorID)
		if err != nil {
			return nil, err
		}
		o.ProveedorID = proveedorID
		o.Proveedor = prov
	}
	if req.Observaciones != nil {
		o.Observaciones = limpio(req.Observaciones)
	}
	reemplazar := req.Items != nil
	if reemplazar {
		if o.Items, err = s.construirItems(ctx, o.ProveedorID, *req.Items, nil); err != nil {
			return nil, err
		}
	}
	o.Total = o.CalcularTotal()

	err = runTx(ctx, s.Ordenes.DB(), func(tx *gorm.DB) error {
		if reemplazar {
			if err := s.Ordenes.ReemplazarItemsTx(tx, o.ID, o.Items); err != nil {
				return err
			}
		}
		return s.Ordenes.UpdateTx(tx, o)
	})
	if err != nil {
		return nil, traducir(err, "orden de compra")
	}
	resp := mapOrden(*o)
	return &resp, nil
}

// Enviar moves the order to enviada, stores its PDF once the state change is
// committed and, when the provider has an email address, queues the PDF for
// delivery. A failed write is logged; the PDF endpoint renders on demand.
func (s *ordenCompraService) Enviar(ctx context.Context, id uuid.UUID) (*dto.OrdenResponse, error) {
	var o *model.OrdenCompra
	var pdf []byte
	err := runTx(ctx, s.Ordenes.DB(), func(tx *gorm.DB) error {
		var err error
		if o, err = s.Ordenes.FindByIDTx(tx, id); err != nil {
			return err
		}
		if !model.PuedeTransicionarOrden(o.Estado, model.OrdenEnviada) {
			return fmt.Errorf("%w: %s -> %s", ErrTransicionInvalida, o.Estado, model.OrdenEnviada)
		}
		now := s.now()
		o.Estado = model.OrdenEnviada
		o.FechaEnvio = &now
		if err := s.Ordenes.UpdateTx(tx, o); err != nil {
			return err
		}
		pdf, err = infra.OrdenCompraPDF(o, s.Empresa)
		return err
	})
	if err != nil {
		return nil, traducir(err, "orden de compra")
	}

	// written after commit so a rolled back send leaves no file behind
	pdfPath, err := s.Storage.Save(infra.DirOrdenes, o.Folio+".pdf", pdf)
	if err != nil {
		log.Error().Err(err).Str("folio", o.Folio).Msg("no se pudo guardar el pdf de la orden")
		resp := mapOrden(*o)
		return &resp, nil
	}

	if o.Proveedor != nil && o.Proveedor.Email != nil && s.Emails != nil {
		job := worker.EmailJobPayload{
			ToEmail:     *o.Proveedor.Email,
			Subject:     fmt.Sprintf("Orden de compra %s - %s", o.Folio, s.Empresa),
			Body:        fmt.Sprintf("Estimado proveedor %s:\n\nAdjuntamos la orden de compra %s.\n\n%s", o.Proveedor.Nombre, o.Folio, s.Empresa),
			AdjuntoPath: pdfPath,
		}
		if err := s.Emails.EnqueueEmail(ctx, job); err != nil {
			log.Warn().Err(err).Str("folio", o.Folio).Msg("no se pudo encolar el email de la orden")
		}
	}
	resp := mapOrden(*o)
	return &resp, nil
}

// Recibir books received quantities into stock. Each line is capped at its
// pending quantity; the order ends recibida when nothing is pending.
func (s *ordenCompraService) Recibir(ctx context.Context, usuarioID, id uuid.UUID, req dto.RecibirOrdenRequest) (*dto.RecepcionResponse, error) {
	cantidades := map[uuid.UUID]int{}
	ids := make([]uuid.UUID, 0, len(req.Items))
	for i, it := range req.Items {
		itemID, err := uuid.Parse(it.ItemID)
		if err != nil {
			return nil, invalido("items[%d].item_id no es un UUID", i)
		}
		if it.Cantidad <= 0 {
			return nil, invalido("items[%d].cantidad debe ser mayor a cero", i)
		}
		if _, ok := cantidades[itemID]; !ok {
			ids = append(ids, itemID)
		}
		cantidades[itemID] += it.Cantidad
	}
	if len(ids) == 0 {
		return nil, invalido("la recepcion necesita al menos una linea")
	}

	uid := usuarioID
	var o *model.OrdenCompra
	var movimientos []model.Movimiento
	err := runTx(ctx, s.Ordenes.DB(), func(tx *gorm.DB) error {
		var err error
		if o, err = s.Ordenes.FindByIDTx(tx, id); err != nil {
			return err
		}
		if o.Estado != model.OrdenEnviada && o.Estado != model.OrdenParcial {
			return fmt.Errorf("%w: no se puede recibir una orden %s", ErrTransicionInvalida, o.Estado)
		}

		folio := s.Folios.Nuevo(PrefijoFolioRecepcion)
		for _, itemID := range ids {
			idx := -1
			for i := range o.Items {
				if o.Items[i].ID == itemID {
					idx = i
					break
				}
			}
			if idx < 0 {
				return invalido("el item %s no pertenece a la orden %s", itemID, o.Folio)
			}
			it := &o.Items[idx]
			cantidad := cantidades[itemID]
			if cantidad > it.Pendiente() {
				return invalido("item %s: se reciben %d pero quedan %d pendientes", itemID, cantidad, it.Pendiente())
			}

			m := model.Movimiento{
				Folio:        folio,
				Tipo:         model.MovRecepcionOC,
				ArticuloID:   it.ArticuloID,
				Cantidad:     cantidad,
				UsuarioID:    &uid,
				ReferenciaID: &o.ID,
				Motivo:       "recepcion " + o.Folio,
				Articulo:     it.Articulo,
			}
			if err := s.Movimientos.AplicarTx(tx, &m); err != nil {
				return err
			}
			movimientos = append(movimientos, m)

			it.CantidadRecibida += cantidad
			if err := s.Ordenes.UpdateItemRecibidoTx(tx, it.ID, it.CantidadRecibida); err != nil {
				return err
			}
			if err := s.actualizarCostoTx(ctx, tx, uid, o, it); err != nil {
				return err
			}
		}

		if o.RecibidaCompleta() {
			now := s.now()
			o.Estado = model.OrdenRecibida
			o.FechaRecepcion = &now
			if err := s.Solicitudes.CompletarPorOrdenTx(tx, o.ID); err != nil {
				return err
			}
		} else {
			o.Estado = model.OrdenParcial
		}
		return s.Ordenes.UpdateTx(tx, o)
	})
	if err != nil {
		return nil, traducir(err, "orden de compra")
	}

	for _, it := range o.Items {
		if it.Articulo != nil {
			invalidarCacheArticulo(ctx, s.Redis, it.Articulo.CodigoEAN13)
		}
	}
	log.Info().Str("folio", o.Folio).Str("estado", o.Estado).Int("lineas", len(movimientos)).Msg("recepcion de orden")
	return &dto.RecepcionResponse{Orden: mapOrden(*o), Movimientos: mapMovimientos(movimientos)}, nil
}

// actualizarCostoTx sets the article cost to the received item cost and keeps
// the provider link in sync, recording the change in HistorialCosto.
func (s *ordenCompraService) actualizarCostoTx(ctx context.Context, tx *gorm.DB, uid uuid.UUID, o *model.OrdenCompra, it *model.OrdenCompraItem) error {
	if err := s.Articulos.UpdateCostoTx(tx, it.ArticuloID, it.CostoUnitario); err != nil {
		return err
	}
	link, err := s.Articulos.FindLink(ctx, it.ArticuloID, o.ProveedorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if link.Costo.Equal(it.CostoUnitario) {
		return nil
	}
	h := &model.HistorialCosto{
		ArticuloID:   it.ArticuloID,
		ProveedorID:  o.ProveedorID,
		CostoAntes:   link.Costo,
		CostoDespues: it.CostoUnitario,
		Motivo:       "recepcion_oc",
		UsuarioID:    &uid,
	}
	link.Costo = it.CostoUnitario
	link.Proveedor = nil
	if err := s.Articulos.SaveLinkTx(tx, link); err != nil {
		return err
	}
	return s.Articulos.CreateHistorialCostoTx(tx, h)
}

// Anular cancels the order, reversing every received quantity. When stock
// already left the warehouse the whole cancellation fails.
func (s *ordenCompraService) Anular(ctx context.Context, usuarioID, id uuid.UUID, req dto.AnularOrdenRequest) (*dto.AnulacionResponse, error) {
	motivo := strings.TrimSpace(req.Motivo)
	if len(motivo) < 3 {
		return nil, invalido("el motivo de anulacion es obligatorio")
	}

	uid := usuarioID
	var o *model.OrdenCompra
	var revertidos []model.Movimiento
	var reactivadas, fusionadas int
	err := runTx(ctx, s.Ordenes.DB(), func(tx *gorm.DB) error {
		var err error
		if o, err = s.Ordenes.FindByIDTx(tx, id); err != nil {
			return err
		}
		if !model.PuedeTransicionarOrden(o.Estado, model.OrdenCancelada) {
			return fmt.Errorf("%w: %s -> %s", ErrTransicionInvalida, o.Estado, model.OrdenCancelada)
		}

		folio := s.Folios.Nuevo(PrefijoFolioRecepcion)
		for _, it := range o.Items {
			if it.CantidadRecibida == 0 {
				continue
			}
			m := model.Movimiento{
				Folio:        folio,
				Tipo:         model.MovAnulacionOC,
				ArticuloID:   it.ArticuloID,
				Cantidad:     -it.CantidadRecibida,
				UsuarioID:    &uid,
				ReferenciaID: &o.ID,
				Motivo:       "anulacion " + o.Folio + ": " + motivo,
				Articulo:     it.Articulo,
			}
			if err := s.Movimientos.AplicarTx(tx, &m); err != nil {
				return err
			}
			revertidos = append(revertidos, m)
		}

		if reactivadas, fusionadas, err = s.reactivarSolicitudes(tx, o.ID); err != nil {
			return err
		}
		o.Estado = model.OrdenCancelada
		o.MotivoAnulacion = &motivo
		o.Solicitudes = nil
		return s.Ordenes.UpdateTx(tx, o)
	})
	if err != nil {
		return nil, traducir(err, "orden de compra")
	}

	for _, m := range revertidos {
		if m.Articulo != nil {
			invalidarCacheArticulo(ctx, s.Redis, m.Articulo.CodigoEAN13)
		}
	}
	log.Info().Str("folio", o.Folio).Int("revertidos", len(revertidos)).
		Int("reactivadas", reactivadas).Int("fusionadas", fusionadas).Msg("orden anulada")
	return &dto.AnulacionResponse{
		Orden:                  mapOrden(*o),
		MovimientosRevertidos:  mapMovimientos(revertidos),
		SolicitudesReactivadas: reactivadas,
		SolicitudesFusionadas:  fusionadas,
	}, nil
}

// reactivarSolicitudes returns the order's requests to pendiente. A request
// whose article already has another pendiente request of the same origin is
// folded into it and cancelled, so an article never ends with two open
// automatic requests.
func (s *ordenCompraService) reactivarSolicitudes(tx *gorm.DB, ordenID uuid.UUID) (reactivadas, fusionadas int, err error) {
	vinculadas, err := s.Solicitudes.ListPorOrdenTx(tx, ordenID)
	if err != nil {
		return 0, 0, err
	}
	for i := range vinculadas {
		sol := &vinculadas[i]
		abierta, err := s.Solicitudes.FindPendienteTx(tx, sol.ArticuloID, sol.Origen, sol.ID)
		switch {
		case err == nil:
			abierta.Cantidad += sol.Cantidad
			if err := s.Solicitudes.UpdateTx(tx, abierta); err != nil {
				return 0, 0, err
			}
			sol.Estado = model.SolicitudCancelada
			fusionadas++
		case errors.Is(err, gorm.ErrRecordNotFound):
			sol.Estado = model.SolicitudPendiente
			reactivadas++
		default:
			return 0, 0, err
		}
		sol.OrdenCompraID = nil
		if err := s.Solicitudes.UpdateTx(tx, sol); err != nil {
			return 0, 0, err
		}
	}
	return reactivadas, fusionadas, nil
}

func (s *ordenCompraService) PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	o, err := s.Ordenes.FindByID(ctx, id)
	if err != nil {
		return nil, "", traducir(err, "orden de compra")
	}
	pdf, err := infra.OrdenCompraPDF(o, s.Empresa)
	if err != nil {
		return nil, "", err
	}
	return pdf, o.Folio, nil
}
