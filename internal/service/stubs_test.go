package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inventario3g/internal/codigobarras"
	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"
	"inventario3g/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Shared in-memory store ────────────────────────────────────────────────────

// memDB backs every stub so stock, links and orders stay consistent across
// repositories the way one database would.
type memDB struct {
	usuarios    map[uuid.UUID]*model.Usuario
	articulos   map[uuid.UUID]*model.Articulo
	proveedores map[uuid.UUID]*model.Proveedor
	links       []*model.ArticuloProveedor
	historial   []model.HistorialCosto
	movimientos []model.Movimiento
	solicitudes map[uuid.UUID]*model.SolicitudCompra
	ordenes     map[uuid.UUID]*model.OrdenCompra
	eanSeq      int64
}

func newMemDB() *memDB {
	return &memDB{
		usuarios:    map[uuid.UUID]*model.Usuario{},
		articulos:   map[uuid.UUID]*model.Articulo{},
		proveedores: map[uuid.UUID]*model.Proveedor{},
		solicitudes: map[uuid.UUID]*model.SolicitudCompra{},
		ordenes:     map[uuid.UUID]*model.OrdenCompra{},
	}
}

func (db *memDB) seedArticulo(nombre string, stock, minimo int, costo float64) *model.Articulo {
	db.eanSeq++
	ean, _ := codigobarras.GenerarEAN13Interno(db.eanSeq)
	a := &model.Articulo{
		ID:            uuid.New(),
		CodigoEAN13:   &ean,
		Nombre:        nombre,
		Unidad:        "pieza",
		StockActual:   stock,
		StockMinimo:   minimo,
		CostoUnitario: decimal.NewFromFloat(costo),
		Activo:        true,
	}
	db.articulos[a.ID] = a
	return a
}

func (db *memDB) seedProveedor(nombre string, email *string) *model.Proveedor {
	p := &model.Proveedor{ID: uuid.New(), Nombre: nombre, RFC: strings.ToUpper(nombre[:3]) + "010101AAA", Email: email, Activo: true}
	db.proveedores[p.ID] = p
	return p
}

func (db *memDB) copiaArticulo(id uuid.UUID) *model.Articulo {
	a, ok := db.articulos[id]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// ── ArticuloRepository ────────────────────────────────────────────────────────

type stubArticuloRepo struct {
	repository.ArticuloRepository
	db *memDB
}

func (r *stubArticuloRepo) DB() *gorm.DB { return nil }

func (r *stubArticuloRepo) CreateTx(_ *gorm.DB, a *model.Articulo) error {
	if a.CodigoEAN13 != nil {
		for _, x := range r.db.articulos {
			if x.CodigoEAN13 != nil && *x.CodigoEAN13 == *a.CodigoEAN13 {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.db.articulos[a.ID] = &cp
	return nil
}

func (r *stubArticuloRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Articulo, error) {
	a := r.db.copiaArticulo(id)
	if a == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubArticuloRepo) FindByEAN(_ context.Context, ean string) (*model.Articulo, error) {
	for id, a := range r.db.articulos {
		if a.CodigoEAN13 != nil && *a.CodigoEAN13 == ean {
			return r.db.copiaArticulo(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubArticuloRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Articulo, error) {
	var out []model.Articulo
	for _, id := range ids {
		if a := r.db.copiaArticulo(id); a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubArticuloRepo) ListAlertas(_ context.Context) ([]model.Articulo, error) {
	var out []model.Articulo
	for _, a := range r.db.articulos {
		if a.Activo && a.BajoStock() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *stubArticuloRepo) ListConImagen(_ context.Context) ([]model.Articulo, error) {
	var out []model.Articulo
	for _, a := range r.db.articulos {
		if a.Activo && a.ImagenPath != nil {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *stubArticuloRepo) Update(_ context.Context, a *model.Articulo) error {
	stored, ok := r.db.articulos[a.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stock := stored.StockActual
	*stored = *a
	stored.StockActual = stock
	stored.Categoria, stored.Ubicacion, stored.Proveedores = nil, nil, nil
	return nil
}

func (r *stubArticuloRepo) UpdateCostoTx(_ *gorm.DB, id uuid.UUID, costo decimal.Decimal) error {
	r.db.articulos[id].CostoUnitario = costo
	return nil
}

func (r *stubArticuloRepo) UpdateImagen(_ context.Context, id uuid.UUID, imagen, miniatura *string) error {
	a := r.db.articulos[id]
	if imagen != nil {
		a.ImagenPath = imagen
	}
	if miniatura != nil {
		a.MiniaturaPath = miniatura
	}
	return nil
}

func (r *stubArticuloRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	a, ok := r.db.articulos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Activo = activo
	return nil
}

func (r *stubArticuloRepo) SiguienteSecuenciaEAN(_ context.Context) (int64, error) {
	r.db.eanSeq++
	return r.db.eanSeq, nil
}

func (r *stubArticuloRepo) CountActivos(_ context.Context) (int64, error) {
	var n int64
	for _, a := range r.db.articulos {
		if a.Activo {
			n++
		}
	}
	return n, nil
}

func (r *stubArticuloRepo) CountBajoStock(ctx context.Context) (int64, error) {
	list, _ := r.ListAlertas(ctx)
	return int64(len(list)), nil
}

func (r *stubArticuloRepo) FindLink(_ context.Context, articuloID, proveedorID uuid.UUID) (*model.ArticuloProveedor, error) {
	for _, l := range r.db.links {
		if l.ArticuloID == articuloID && l.ProveedorID == proveedorID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubArticuloRepo) ListLinks(_ context.Context, articuloID uuid.UUID) ([]model.ArticuloProveedor, error) {
	var out []model.ArticuloProveedor
	for _, l := range r.db.links {
		if l.ArticuloID == articuloID {
			cp := *l
			cp.Proveedor = r.db.proveedores[l.ProveedorID]
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *stubArticuloRepo) SaveLinkTx(_ *gorm.DB, l *model.ArticuloProveedor) error {
	for i, x := range r.db.links {
		if x.ArticuloID == l.ArticuloID && x.ProveedorID == l.ProveedorID {
			cp := *l
			r.db.links[i] = &cp
			return nil
		}
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	cp := *l
	r.db.links = append(r.db.links, &cp)
	return nil
}

func (r *stubArticuloRepo) ClearPreferidoTx(_ *gorm.DB, articuloID, excepto uuid.UUID) error {
	for _, l := range r.db.links {
		if l.ArticuloID == articuloID && l.ProveedorID != excepto {
			l.EsPreferido = false
		}
	}
	return nil
}

func (r *stubArticuloRepo) CreateHistorialCostoTx(_ *gorm.DB, h *model.HistorialCosto) error {
	h.ID = uuid.New()
	r.db.historial = append(r.db.historial, *h)
	return nil
}

func (r *stubArticuloRepo) ListHistorialCostos(_ context.Context, articuloID uuid.UUID) ([]model.HistorialCosto, error) {
	var out []model.HistorialCosto
	for _, h := range r.db.historial {
		if h.ArticuloID == articuloID {
			out = append(out, h)
		}
	}
	return out, nil
}

// ── MovimientoRepository ──────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	repository.MovimientoRepository
	db *memDB
}

func (r *stubMovimientoRepo) DB() *gorm.DB { return nil }

func (r *stubMovimientoRepo) StockActualTx(_ *gorm.DB, id uuid.UUID) (int, error) {
	a, ok := r.db.articulos[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return a.StockActual, nil
}

func (r *stubMovimientoRepo) AplicarTx(_ *gorm.DB, m *model.Movimiento) error {
	a, ok := r.db.articulos[m.ArticuloID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	nuevo := a.StockActual + m.Cantidad
	if nuevo < 0 {
		return fmt.Errorf("articulo %s: %w", a.Nombre, repository.ErrStockInsuficiente)
	}
	m.ID = uuid.New()
	m.StockAnterior = a.StockActual
	m.StockNuevo = nuevo
	m.CreatedAt = time.Now()
	a.StockActual = nuevo
	r.db.movimientos = append(r.db.movimientos, *m)
	return nil
}

// ── ProveedorRepository ───────────────────────────────────────────────────────

type stubProveedorRepo struct {
	repository.ProveedorRepository
	db *memDB
}

func (r *stubProveedorRepo) DB() *gorm.DB { return nil }

func (r *stubProveedorRepo) CreateTx(_ *gorm.DB, p *model.Proveedor) error {
	p.ID = uuid.New()
	for i := range p.Contactos {
		p.Contactos[i].ID = uuid.New()
		p.Contactos[i].ProveedorID = p.ID
	}
	cp := *p
	r.db.proveedores[p.ID] = &cp
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.db.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProveedorRepo) FindByRFC(_ context.Context, rfc string) (*model.Proveedor, error) {
	for _, p := range r.db.proveedores {
		if p.RFC == rfc {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProveedorRepo) UpdateTx(_ *gorm.DB, p *model.Proveedor) error {
	contactos := r.db.proveedores[p.ID].Contactos
	cp := *p
	cp.Contactos = contactos
	r.db.proveedores[p.ID] = &cp
	return nil
}

func (r *stubProveedorRepo) ReemplazarContactosTx(_ *gorm.DB, id uuid.UUID, contactos []model.ContactoProveedor) error {
	for i := range contactos {
		contactos[i].ID = uuid.New()
		contactos[i].ProveedorID = id
	}
	r.db.proveedores[id].Contactos = append([]model.ContactoProveedor(nil), contactos...)
	return nil
}

// ── SolicitudRepository ───────────────────────────────────────────────────────

type stubSolicitudRepo struct {
	repository.SolicitudRepository
	db *memDB
}

func (r *stubSolicitudRepo) CreateTx(_ *gorm.DB, s *model.SolicitudCompra) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	r.db.solicitudes[s.ID] = &cp
	return nil
}

func (r *stubSolicitudRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SolicitudCompra, error) {
	s, ok := r.db.solicitudes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSolicitudRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.SolicitudCompra, error) {
	var out []model.SolicitudCompra
	for _, id := range ids {
		if s, ok := r.db.solicitudes[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSolicitudRepo) ExisteAbiertaTx(_ *gorm.DB, articuloID uuid.UUID) (bool, error) {
	for _, s := range r.db.solicitudes {
		if s.ArticuloID == articuloID && (s.Estado == model.SolicitudPendiente || s.Estado == model.SolicitudEnOrden) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSolicitudRepo) UpdateEstado(_ context.Context, id uuid.UUID, estado string) error {
	r.db.solicitudes[id].Estado = estado
	return nil
}

func (r *stubSolicitudRepo) VincularOrdenTx(_ *gorm.DB, ids []uuid.UUID, ordenID uuid.UUID) error {
	for _, id := range ids {
		oid := ordenID
		r.db.solicitudes[id].Estado = model.SolicitudEnOrden
		r.db.solicitudes[id].OrdenCompraID = &oid
	}
	return nil
}

func (r *stubSolicitudRepo) CompletarPorOrdenTx(_ *gorm.DB, ordenID uuid.UUID) error {
	for _, s := range r.db.solicitudes {
		if s.OrdenCompraID != nil && *s.OrdenCompraID == ordenID && s.Estado == model.SolicitudEnOrden {
			s.Estado = model.SolicitudCompletada
		}
	}
	return nil
}

func (r *stubSolicitudRepo) ListPorOrdenTx(_ *gorm.DB, ordenID uuid.UUID) ([]model.SolicitudCompra, error) {
	var out []model.SolicitudCompra
	for _, s := range r.db.solicitudes {
		if s.OrdenCompraID != nil && *s.OrdenCompraID == ordenID && s.Estado != model.SolicitudCancelada {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubSolicitudRepo) FindPendienteTx(_ *gorm.DB, articuloID uuid.UUID, origen string, excluir uuid.UUID) (*model.SolicitudCompra, error) {
	for _, s := range r.db.solicitudes {
		if s.ArticuloID == articuloID && s.Origen == origen && s.Estado == model.SolicitudPendiente &&
			s.OrdenCompraID == nil && s.ID != excluir {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// UpdateTx enforces the single open automatic request per article.
func (r *stubSolicitudRepo) UpdateTx(_ *gorm.DB, s *model.SolicitudCompra) error {
	if s.Estado == model.SolicitudPendiente && s.Origen == model.OrigenAutomatica {
		for id, o := range r.db.solicitudes {
			if id != s.ID && o.ArticuloID == s.ArticuloID && o.Origen == model.OrigenAutomatica &&
				o.Estado == model.SolicitudPendiente {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	stored, ok := r.db.solicitudes[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Estado, stored.Cantidad, stored.OrdenCompraID = s.Estado, s.Cantidad, s.OrdenCompraID
	return nil
}

func (r *stubSolicitudRepo) CountPendientes(_ context.Context) (int64, error) {
	var n int64
	for _, s := range r.db.solicitudes {
		if s.Estado == model.SolicitudPendiente {
			n++
		}
	}
	return n, nil
}

// ── OrdenCompraRepository ─────────────────────────────────────────────────────

type stubOrdenRepo struct {
	repository.OrdenCompraRepository
	db        *memDB
	errUpdate error
}

func (r *stubOrdenRepo) DB() *gorm.DB { return nil }

func (r *stubOrdenRepo) CreateTx(_ *gorm.DB, o *model.OrdenCompra) error {
	o.ID = uuid.New()
	o.CreatedAt = time.Now()
	for i := range o.Items {
		o.Items[i].ID = uuid.New()
		o.Items[i].OrdenCompraID = o.ID
	}
	cp := *o
	cp.Items = append([]model.OrdenCompraItem(nil), o.Items...)
	cp.Proveedor, cp.Solicitudes = nil, nil
	r.db.ordenes[o.ID] = &cp
	return nil
}

func (r *stubOrdenRepo) FindByID(_ context.Context, id uuid.UUID) (*model.OrdenCompra, error) {
	o, ok := r.db.ordenes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	cp.Items = make([]model.OrdenCompraItem, len(o.Items))
	for i, it := range o.Items {
		it.Articulo = r.db.copiaArticulo(it.ArticuloID)
		cp.Items[i] = it
	}
	if p, ok := r.db.proveedores[o.ProveedorID]; ok {
		pc := *p
		cp.Proveedor = &pc
	}
	for _, s := range r.db.solicitudes {
		if s.OrdenCompraID != nil && *s.OrdenCompraID == id {
			cp.Solicitudes = append(cp.Solicitudes, *s)
		}
	}
	return &cp, nil
}

func (r *stubOrdenRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.OrdenCompra, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubOrdenRepo) SiguienteFolioTx(_ *gorm.DB, anio int) (string, error) {
	return fmt.Sprintf("OC-%d-%04d", anio, len(r.db.ordenes)+1), nil
}

func (r *stubOrdenRepo) UpdateTx(_ *gorm.DB, o *model.OrdenCompra) error {
	if r.errUpdate != nil {
		return r.errUpdate
	}
	stored := r.db.ordenes[o.ID]
	items := stored.Items
	*stored = *o
	stored.Items = items
	stored.Proveedor, stored.Solicitudes = nil, nil
	return nil
}

func (r *stubOrdenRepo) ReemplazarItemsTx(_ *gorm.DB, ordenID uuid.UUID, items []model.OrdenCompraItem) error {
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrdenCompraID = ordenID
	}
	r.db.ordenes[ordenID].Items = append([]model.OrdenCompraItem(nil), items...)
	return nil
}

func (r *stubOrdenRepo) UpdateItemRecibidoTx(_ *gorm.DB, itemID uuid.UUID, recibida int) error {
	for _, o := range r.db.ordenes {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				o.Items[i].CantidadRecibida = recibida
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

// ── UsuarioRepository ─────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	repository.UsuarioRepository
	db *memDB
}

func (r *stubUsuarioRepo) DB() *gorm.DB { return nil }

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	u.ID = uuid.New()
	cp := *u
	r.db.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.db.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.db.usuarios {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	cp := *u
	r.db.usuarios[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	u, ok := r.db.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

func (r *stubUsuarioRepo) AsignarEquipoTx(_ *gorm.DB, equipoID uuid.UUID, ids []uuid.UUID) error {
	dentro := map[uuid.UUID]bool{}
	for _, id := range ids {
		dentro[id] = true
	}
	for id, u := range r.db.usuarios {
		switch {
		case dentro[id]:
			eid := equipoID
			u.EquipoID = &eid
		case u.EquipoID != nil && *u.EquipoID == equipoID:
			u.EquipoID = nil
		}
	}
	return nil
}

func (r *stubUsuarioRepo) ListByEquipo(_ context.Context, equipoID uuid.UUID) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.db.usuarios {
		if u.EquipoID != nil && *u.EquipoID == equipoID {
			out = append(out, *u)
		}
	}
	return out, nil
}

// ── Queues and folios ─────────────────────────────────────────────────────────

type fakeCola struct {
	mu       sync.Mutex
	imagenes []worker.ImagenJobPayload
	emails   []worker.EmailJobPayload
	err      error
}

func (c *fakeCola) EnqueueImagen(_ context.Context, p worker.ImagenJobPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.imagenes = append(c.imagenes, p)
	return nil
}

func (c *fakeCola) EnqueueEmail(_ context.Context, p worker.EmailJobPayload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.emails = append(c.emails, p)
	return nil
}

func (c *fakeCola) Longitudes(_ context.Context, _ string) (int64, int64, error) {
	return int64(len(c.imagenes)), 0, nil
}

type folios struct{ n int }

func (f *folios) Nuevo(prefijo string) string {
	f.n++
	return fmt.Sprintf("%s-T%03d", prefijo, f.n)
}

func movimientosDe(db *memDB, tipo string) []model.Movimiento {
	var out []model.Movimiento
	for _, m := range db.movimientos {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

var (
	_ repository.ArticuloRepository    = (*stubArticuloRepo)(nil)
	_ repository.MovimientoRepository  = (*stubMovimientoRepo)(nil)
	_ repository.ProveedorRepository   = (*stubProveedorRepo)(nil)
	_ repository.SolicitudRepository   = (*stubSolicitudRepo)(nil)
	_ repository.OrdenCompraRepository = (*stubOrdenRepo)(nil)
	_ repository.UsuarioRepository     = (*stubUsuarioRepo)(nil)
	_ dto.Paginacion                   = dto.Paginacion{}
)

func (r *stubOrdenRepo) CountPorEstado(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, o := range r.db.ordenes {
		out[o.Estado]++
	}
	return out, nil
}
