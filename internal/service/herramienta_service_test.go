package service_test

import (
	"context"
	"testing"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"
	"inventario3g/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ────────────────────────────────────────────────────────────────────

type stubHerramientaRepo struct {
	tipos     map[uuid.UUID]*model.TipoHerramienta
	unidades  map[uuid.UUID]*model.UnidadHerramienta
	historial []model.HistorialHerramienta
	// congeladas are returned by FindUnidadByID instead of the live row, as a
	// read that raced a concurrent request would.
	congeladas map[uuid.UUID]model.UnidadHerramienta
}

func newStubHerramientaRepo() *stubHerramientaRepo {
	return &stubHerramientaRepo{
		tipos:    map[uuid.UUID]*model.TipoHerramienta{},
		unidades: map[uuid.UUID]*model.UnidadHerramienta{},
	}
}

func (r *stubHerramientaRepo) DB() *gorm.DB { return nil }

func (r *stubHerramientaRepo) CreateTipoTx(_ *gorm.DB, t *model.TipoHerramienta) error {
	t.ID = uuid.New()
	cp := *t
	r.tipos[t.ID] = &cp
	return nil
}

func (r *stubHerramientaRepo) FindTipoByID(_ context.Context, id uuid.UUID) (*model.TipoHerramienta, error) {
	t, ok := r.tipos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *stubHerramientaRepo) buscarTipo(match func(*model.TipoHerramienta) bool) (*model.TipoHerramienta, error) {
	for _, t := range r.tipos {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubHerramientaRepo) FindTipoByPrefijo(_ context.Context, prefijo string) (*model.TipoHerramienta, error) {
	return r.buscarTipo(func(t *model.TipoHerramienta) bool { return t.Prefijo == prefijo })
}

func (r *stubHerramientaRepo) FindTipoByNombre(_ context.Context, nombre string) (*model.TipoHerramienta, error) {
	return r.buscarTipo(func(t *model.TipoHerramienta) bool { return t.Nombre == nombre })
}

func (r *stubHerramientaRepo) ListTipos(_ context.Context, incluirInactivos bool) ([]model.TipoHerramienta, error) {
	var out []model.TipoHerramienta
	for _, t := range r.tipos {
		if t.Activo || incluirInactivos {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *stubHerramientaRepo) ConteoPorTipo(_ context.Context) (map[uuid.UUID]map[string]int64, error) {
	out := map[uuid.UUID]map[string]int64{}
	for _, u := range r.unidades {
		if out[u.TipoID] == nil {
			out[u.TipoID] = map[string]int64{}
		}
		out[u.TipoID][u.Estado]++
	}
	return out, nil
}

func (r *stubHerramientaRepo) UpdateTipo(_ context.Context, t *model.TipoHerramienta) error {
	cp := *t
	r.tipos[t.ID] = &cp
	return nil
}

func (r *stubHerramientaRepo) SiguienteNumeroTx(_ *gorm.DB, tipoID uuid.UUID) (int, error) {
	n := 1
	for _, u := range r.unidades {
		if u.TipoID == tipoID {
			n++
		}
	}
	return n, nil
}

func (r *stubHerramientaRepo) CreateUnidadesTx(_ *gorm.DB, unidades []model.UnidadHerramienta) error {
	for i := range unidades {
		unidades[i].ID = uuid.New()
		cp := unidades[i]
		cp.Tipo = nil
		r.unidades[cp.ID] = &cp
	}
	return nil
}

func (r *stubHerramientaRepo) congelar(id uuid.UUID) {
	if r.congeladas == nil {
		r.congeladas = map[uuid.UUID]model.UnidadHerramienta{}
	}
	r.congeladas[id] = *r.unidades[id]
}

func (r *stubHerramientaRepo) FindUnidadByID(_ context.Context, id uuid.UUID) (*model.UnidadHerramienta, error) {
	if u, ok := r.congeladas[id]; ok {
		return &u, nil
	}
	u, ok := r.unidades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubHerramientaRepo) FindUnidadByCodigo(_ context.Context, codigo string) (*model.UnidadHerramienta, error) {
	for _, u := range r.unidades {
		if u.Codigo == codigo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubHerramientaRepo) ListUnidades(_ context.Context, filter dto.UnidadFilter) ([]model.UnidadHerramienta, int64, error) {
	var out []model.UnidadHerramienta
	for _, u := range r.unidades {
		if filter.Estado != "" && u.Estado != filter.Estado {
			continue
		}
		if filter.CamionetaID != "" && (u.CamionetaID == nil || u.CamionetaID.String() != filter.CamionetaID) {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *stubHerramientaRepo) FindUnidadByIDTx(_ *gorm.DB, id uuid.UUID) (*model.UnidadHerramienta, error) {
	u, ok := r.unidades[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubHerramientaRepo) UpdateUnidadTx(_ *gorm.DB, u *model.UnidadHerramienta, estadoAnterior string) error {
	if actual, ok := r.unidades[u.ID]; !ok || actual.Estado != estadoAnterior {
		return repository.ErrEstadoCambiado
	}
	cp := *u
	cp.Tipo, cp.Usuario, cp.Camioneta = nil, nil, nil
	r.unidades[u.ID] = &cp
	return nil
}

func (r *stubHerramientaRepo) CountAsignadasCamioneta(_ context.Context, camionetaID uuid.UUID) (int64, error) {
	var n int64
	for _, u := range r.unidades {
		if u.CamionetaID != nil && *u.CamionetaID == camionetaID {
			n++
		}
	}
	return n, nil
}

func (r *stubHerramientaRepo) CountPorEstado(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, u := range r.unidades {
		out[u.Estado]++
	}
	return out, nil
}

func (r *stubHerramientaRepo) CreateHistorialTx(_ *gorm.DB, h *model.HistorialHerramienta) error {
	h.ID = uuid.New()
	r.historial = append(r.historial, *h)
	return nil
}

func (r *stubHerramientaRepo) ListHistorial(_ context.Context, unidadID uuid.UUID) ([]model.HistorialHerramienta, error) {
	var out []model.HistorialHerramienta
	for _, h := range r.historial {
		if h.UnidadID == unidadID {
			out = append(out, h)
		}
	}
	return out, nil
}

var _ repository.HerramientaRepository = (*stubHerramientaRepo)(nil)

type stubCamionetaRepo struct {
	m map[uuid.UUID]*model.Camioneta
}

func newStubCamionetaRepo() *stubCamionetaRepo {
	return &stubCamionetaRepo{m: map[uuid.UUID]*model.Camioneta{}}
}

func (r *stubCamionetaRepo) Create(_ context.Context, c *model.Camioneta) error {
	c.ID = uuid.New()
	cp := *c
	r.m[c.ID] = &cp
	return nil
}

func (r *stubCamionetaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Camioneta, error) {
	c, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCamionetaRepo) FindByPlacas(_ context.Context, placas string) (*model.Camioneta, error) {
	for _, c := range r.m {
		if c.Placas == placas {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCamionetaRepo) List(_ context.Context, _ dto.CatalogoFilter) ([]model.Camioneta, int64, error) {
	var out []model.Camioneta
	for _, c := range r.m {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCamionetaRepo) Update(_ context.Context, c *model.Camioneta) error {
	cp := *c
	r.m[c.ID] = &cp
	return nil
}

func (r *stubCamionetaRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	c, ok := r.m[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Activo = activo
	return nil
}

var _ repository.CamionetaRepository = (*stubCamionetaRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

type herramientaFixture struct {
	repo       *stubHerramientaRepo
	db         *memDB
	camionetas *stubCamionetaRepo
	svc        service.HerramientaService
	tecnico    *model.Usuario
}

func newHerramientaFixture() *herramientaFixture {
	db := newMemDB()
	f := &herramientaFixture{repo: newStubHerramientaRepo(), db: db, camionetas: newStubCamionetaRepo()}
	f.tecnico = &model.Usuario{ID: uuid.New(), Nombre: "Luis Tecnico", Email: "luis@3g.mx", Rol: model.RolEncargado, Activo: true}
	db.usuarios[f.tecnico.ID] = f.tecnico
	f.svc = service.NewHerramientaService(f.repo, &stubUsuarioRepo{db: db}, f.camionetas)
	return f
}

func (f *herramientaFixture) tipoConUnidades(t *testing.T, n int) []dto.UnidadHerramientaResponse {
	t.Helper()
	tipo, err := f.svc.CrearTipo(context.Background(), uuid.New(), dto.CrearTipoHerramientaRequest{
		Nombre: "Taladro", Prefijo: "tal", CantidadInicial: n,
	})
	require.NoError(t, err)
	list, err := f.svc.ListarUnidades(context.Background(), dto.UnidadFilter{TipoID: tipo.ID})
	require.NoError(t, err)
	return list.Data
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHerramienta_CrearTipoConUnidadesIniciales(t *testing.T) {
	f := newHerramientaFixture()
	ctx := context.Background()

	tipo, err := f.svc.CrearTipo(ctx, uuid.New(), dto.CrearTipoHerramientaRequest{
		Nombre: "Taladro", Prefijo: "tal", CantidadInicial: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "TAL", tipo.Prefijo)
	assert.Equal(t, int64(3), tipo.Total)
	assert.Equal(t, int64(3), tipo.PorEstado[model.HerramientaDisponible])
	assert.Len(t, f.repo.historial, 3, "cada unidad nace con su alta")

	u, err := f.svc.ObtenerPorCodigo(ctx, "tal-003")
	require.NoError(t, err)
	assert.Equal(t, model.HerramientaDisponible, u.Estado)

	nuevas, err := f.svc.CrearUnidades(ctx, uuid.New(), uuid.MustParse(tipo.ID), dto.CrearUnidadesRequest{Cantidad: 2})
	require.NoError(t, err)
	require.Len(t, nuevas, 2)
	assert.Equal(t, "TAL-004", nuevas[0].Codigo)
	assert.Equal(t, "TAL-005", nuevas[1].Codigo)
}

func TestHerramienta_CrearTipoDuplicadoOPrefijoInvalido(t *testing.T) {
	f := newHerramientaFixture()
	ctx := context.Background()

	_, err := f.svc.CrearTipo(ctx, uuid.New(), dto.CrearTipoHerramientaRequest{Nombre: "Taladro", Prefijo: "TAL"})
	require.NoError(t, err)

	_, err = f.svc.CrearTipo(ctx, uuid.New(), dto.CrearTipoHerramientaRequest{Nombre: "Taladro", Prefijo: "TLD"})
	assert.ErrorIs(t, err, service.ErrDuplicado)
	_, err = f.svc.CrearTipo(ctx, uuid.New(), dto.CrearTipoHerramientaRequest{Nombre: "Taladro chico", Prefijo: "tal"})
	assert.ErrorIs(t, err, service.ErrDuplicado)
	_, err = f.svc.CrearTipo(ctx, uuid.New(), dto.CrearTipoHerramientaRequest{Nombre: "Pinza", Prefijo: "P1"})
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestHerramienta_AsignarYDevolver(t *testing.T) {
	f := newHerramientaFixture()
	ctx := context.Background()
	eq := uuid.New()
	cam := &model.Camioneta{Nombre: "Unidad 4", Placas: "ABC1234", EquipoID: &eq, Activo: true}
	require.NoError(t, f.camionetas.Create(ctx, cam))

	unidades := f.tipoConUnidades(t, 1)
	id := uuid.MustParse(unidades[0].ID)

	_, err := f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{})
	assert.ErrorIs(t, err, service.ErrValidacion, "se requiere al menos un responsable")

	tecnico, camID := f.tecnico.ID.String(), cam.ID.String()
	u, err := f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{UsuarioID: &tecnico, CamionetaID: &camID})
	require.NoError(t, err)
	assert.Equal(t, model.HerramientaAsignada, u.Estado)
	require.NotNil(t, u.EquipoID)
	assert.Equal(t, eq.String(), *u.EquipoID, "el equipo se toma de la camioneta")
	assert.NotNil(t, u.FechaAsignacion)

	_, err = f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{UsuarioID: &tecnico})
	assert.ErrorIs(t, err, service.ErrTransicionInvalida)

	u, err = f.svc.Devolver(ctx, uuid.New(), id, dto.DevolverHerramientaRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.HerramientaDisponible, u.Estado)
	assert.Nil(t, u.UsuarioID)
	assert.Nil(t, u.CamionetaID)

	hist, err := f.svc.Historial(ctx, id)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, service.AccionAlta, hist[0].Accion)
	assert.Equal(t, service.AccionAsignacion, hist[1].Accion)
	assert.Equal(t, service.AccionDevolucion, hist[2].Accion)
	require.NotNil(t, hist[2].UsuarioID, "la devolucion conserva quien la tenia")
	assert.Equal(t, tecnico, *hist[2].UsuarioID)
}

func TestHerramienta_AsignarConLecturaObsoletaNoDuplica(t *testing.T) {
	f := newHerramientaFixture()
	ctx := context.Background()
	otro := &model.Usuario{ID: uuid.New(), Nombre: "Ana Tecnica", Email: "ana@3g.mx", Rol: model.RolEncargado, Activo: true}
	f.db.usuarios[otro.ID] = otro
	unidades := f.tipoConUnidades(t, 1)
	id := uuid.MustParse(unidades[0].ID)
	f.repo.congelar(id)

	tecnico, ana := f.tecnico.ID.String(), otro.ID.String()
	_, err := f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{UsuarioID: &tecnico})
	require.NoError(t, err)
	_, err = f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{UsuarioID: &ana})
	assert.ErrorIs(t, err, service.ErrTransicionInvalida)

	require.NotNil(t, f.repo.unidades[id].UsuarioID)
	assert.Equal(t, f.tecnico.ID, *f.repo.unidades[id].UsuarioID)
	asignaciones := 0
	for _, h := range f.repo.historial {
		if h.Accion == service.AccionAsignacion {
			asignaciones++
		}
	}
	assert.Equal(t, 1, asignaciones)
}

func TestHerramienta_DevolverConResponsableCambiado(t *testing.T) {
	f := newHerramientaFixture()
	ctx := context.Background()
	otro := &model.Usuario{ID: uuid.New(), Nombre: "Ana Tecnica", Email: "ana@3g.mx", Rol: model.RolEncargado, Activo: true}
	f.db.usuarios[otro.ID] = otro
	unidades := f.tipoConUnidades(t, 1)
	id := uuid.MustParse(unidades[0].ID)
	tecnico, ana := f.tecnico.ID.String(), otro.ID.String()

	_, err := f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{UsuarioID: &tecnico})
	require.NoError(t, err)
	vieja := *f.repo.unidades[id]
	_, err = f.svc.Devolver(ctx, uuid.New(), id, dto.DevolverHerramientaRequest{})
	require.NoError(t, err)
	_, err = f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{UsuarioID: &ana})
	require.NoError(t, err)

	f.repo.congeladas = map[uuid.UUID]model.UnidadHerramienta{id: vieja}
	_, err = f.svc.Devolver(ctx, uuid.New(), id, dto.DevolverHerramientaRequest{})
	assert.ErrorIs(t, err, service.ErrTransicionInvalida)
	require.NotNil(t, f.repo.unidades[id].UsuarioID)
	assert.Equal(t, otro.ID, *f.repo.unidades[id].UsuarioID, "sigue a cargo de quien la tiene ahora")
}

func TestHerramienta_AsignarUsuarioInactivo(t *testing.T) {
	f := newHerramientaFixture()
	f.tecnico.Activo = false
	unidades := f.tipoConUnidades(t, 1)
	tecnico := f.tecnico.ID.String()

	_, err := f.svc.Asignar(context.Background(), uuid.New(), uuid.MustParse(unidades[0].ID), dto.AsignarHerramientaRequest{UsuarioID: &tecnico})
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestHerramienta_DevolverNoAsignada(t *testing.T) {
	f := newHerramientaFixture()
	unidades := f.tipoConUnidades(t, 1)
	_, err := f.svc.Devolver(context.Background(), uuid.New(), uuid.MustParse(unidades[0].ID), dto.DevolverHerramientaRequest{})
	assert.ErrorIs(t, err, service.ErrTransicionInvalida)
}

func TestHerramienta_CambiarEstado(t *testing.T) {
	f := newHerramientaFixture()
	ctx := context.Background()
	unidades := f.tipoConUnidades(t, 1)
	id := uuid.MustParse(unidades[0].ID)
	tecnico := f.tecnico.ID.String()

	_, err := f.svc.CambiarEstado(ctx, uuid.New(), id, dto.CambiarEstadoHerramientaRequest{Estado: model.HerramientaAsignada})
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = f.svc.Asignar(ctx, uuid.New(), id, dto.AsignarHerramientaRequest{UsuarioID: &tecnico})
	require.NoError(t, err)

	_, err = f.svc.CambiarEstado(ctx, uuid.New(), id, dto.CambiarEstadoHerramientaRequest{Estado: model.HerramientaBaja})
	assert.ErrorIs(t, err, service.ErrTransicionInvalida, "una asignada no pasa directo a baja")

	u, err := f.svc.CambiarEstado(ctx, uuid.New(), id, dto.CambiarEstadoHerramientaRequest{Estado: model.HerramientaPerdida})
	require.NoError(t, err)
	assert.Equal(t, model.HerramientaPerdida, u.Estado)
	assert.Nil(t, u.UsuarioID, "perder una herramienta libera al responsable")

	u, err = f.svc.CambiarEstado(ctx, uuid.New(), id, dto.CambiarEstadoHerramientaRequest{Estado: model.HerramientaBaja})
	require.NoError(t, err)
	assert.Equal(t, model.HerramientaBaja, u.Estado)

	_, err = f.svc.CambiarEstado(ctx, uuid.New(), id, dto.CambiarEstadoHerramientaRequest{Estado: model.HerramientaDisponible})
	assert.ErrorIs(t, err, service.ErrTransicionInvalida, "baja es terminal")
}

func TestHerramienta_NoEncontrada(t *testing.T) {
	f := newHerramientaFixture()
	_, err := f.svc.ObtenerPorCodigo(context.Background(), "ZZZ-001")
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
	_, err = f.svc.Historial(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}
