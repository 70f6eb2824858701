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

type stubCategoriaRepo struct {
	repository.CategoriaRepository
	m map[uuid.UUID]*model.Categoria
}

func (r *stubCategoriaRepo) Create(_ context.Context, c *model.Categoria) error {
	c.ID = uuid.New()
	cp := *c
	r.m[c.ID] = &cp
	return nil
}

func (r *stubCategoriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoriaRepo) FindByNombre(_ context.Context, nombre string) (*model.Categoria, error) {
	for _, c := range r.m {
		if c.Nombre == nombre {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) Update(_ context.Context, c *model.Categoria) error {
	cp := *c
	r.m[c.ID] = &cp
	return nil
}

type stubUbicacionRepo struct {
	repository.UbicacionRepository
	m         map[uuid.UUID]*model.Ubicacion
	articulos map[uuid.UUID]int64
}

func (r *stubUbicacionRepo) Create(_ context.Context, u *model.Ubicacion) error {
	u.ID = uuid.New()
	cp := *u
	r.m[u.ID] = &cp
	return nil
}

func (r *stubUbicacionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Ubicacion, error) {
	u, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUbicacionRepo) FindByCodigo(_ context.Context, codigo string) (*model.Ubicacion, error) {
	for _, u := range r.m {
		if u.Codigo == codigo {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUbicacionRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	u, ok := r.m[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

func (r *stubUbicacionRepo) CountArticulosActivos(_ context.Context, id uuid.UUID) (int64, error) {
	return r.articulos[id], nil
}

type stubEquipoRepo struct {
	repository.EquipoRepository
	m map[uuid.UUID]*model.Equipo
}

func (r *stubEquipoRepo) Create(_ context.Context, e *model.Equipo) error {
	e.ID = uuid.New()
	cp := *e
	r.m[e.ID] = &cp
	return nil
}

func (r *stubEquipoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Equipo, error) {
	e, ok := r.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubEquipoRepo) FindByNombre(_ context.Context, nombre string) (*model.Equipo, error) {
	for _, e := range r.m {
		if e.Nombre == nombre {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Categorias / Ubicaciones ─────────────────────────────────────────────────

func TestCategoria_NombreDuplicado(t *testing.T) {
	svc := service.NewCategoriaService(&stubCategoriaRepo{m: map[uuid.UUID]*model.Categoria{}})
	ctx := context.Background()

	c, err := svc.Crear(ctx, dto.CrearCategoriaRequest{Nombre: "Iluminacion", Color: strp("#FFCC00")})
	require.NoError(t, err)
	assert.Equal(t, "#FFCC00", *c.Color)

	_, err = svc.Crear(ctx, dto.CrearCategoriaRequest{Nombre: " Iluminacion "})
	assert.ErrorIs(t, err, service.ErrDuplicado)

	otra, err := svc.Crear(ctx, dto.CrearCategoriaRequest{Nombre: "Cableado"})
	require.NoError(t, err)
	_, err = svc.Actualizar(ctx, uuid.MustParse(otra.ID), dto.ActualizarCategoriaRequest{Nombre: strp("Iluminacion")})
	assert.ErrorIs(t, err, service.ErrDuplicado)
}

func TestUbicacion_CodigoDerivadoYDesactivar(t *testing.T) {
	repo := &stubUbicacionRepo{m: map[uuid.UUID]*model.Ubicacion{}, articulos: map[uuid.UUID]int64{}}
	svc := service.NewUbicacionService(repo)
	ctx := context.Background()

	u, err := svc.Crear(ctx, dto.CrearUbicacionRequest{Pasillo: "b", Estante: "02"})
	require.NoError(t, err)
	assert.Equal(t, "principal", u.Almacen)
	assert.Equal(t, "PRINCIPAL-B-02", u.Codigo)

	_, err = svc.Crear(ctx, dto.CrearUbicacionRequest{Codigo: "principal-b-02"})
	assert.ErrorIs(t, err, service.ErrDuplicado)

	id := uuid.MustParse(u.ID)
	repo.articulos[id] = 3
	assert.ErrorIs(t, svc.Desactivar(ctx, id), service.ErrConflicto)
	repo.articulos[id] = 0
	require.NoError(t, svc.Desactivar(ctx, id))
	assert.False(t, repo.m[id].Activo)
}

// ── Proveedores ──────────────────────────────────────────────────────────────

func TestProveedor_CrearConContactosYRFCDuplicado(t *testing.T) {
	db := newMemDB()
	svc := service.NewProveedorService(&stubProveedorRepo{db: db})
	ctx := context.Background()

	p, err := svc.Crear(ctx, dto.CrearProveedorRequest{
		Nombre:    "Electro Norte",
		RFC:       "enr010101ab1",
		Contactos: []dto.ContactoRequest{{Nombre: "Marta Ventas"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ENR010101AB1", p.RFC)
	require.Len(t, p.Contactos, 1)

	_, err = svc.Crear(ctx, dto.CrearProveedorRequest{Nombre: "Otro", RFC: "ENR010101AB1"})
	assert.ErrorIs(t, err, service.ErrDuplicado)

	contactos := []dto.ContactoRequest{{Nombre: "Jorge Credito"}, {Nombre: "Lucia Almacen"}}
	got, err := svc.Actualizar(ctx, uuid.MustParse(p.ID), dto.ActualizarProveedorRequest{Contactos: &contactos})
	require.NoError(t, err)
	assert.Len(t, got.Contactos, 2)
	assert.Len(t, db.proveedores[uuid.MustParse(p.ID)].Contactos, 2)
}

// ── Solicitudes ──────────────────────────────────────────────────────────────

func TestSolicitud_CrearYCancelar(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Cinta", 1, 5, 3)
	svc := service.NewSolicitudService(&stubSolicitudRepo{db: db}, &stubArticuloRepo{db: db})
	ctx := context.Background()

	sol, err := svc.Crear(ctx, uuid.New(), dto.CrearSolicitudRequest{ArticuloID: a.ID.String(), Cantidad: 10, Motivo: "obra nueva"})
	require.NoError(t, err)
	assert.Equal(t, model.OrigenManual, sol.Origen)
	assert.Equal(t, model.SolicitudPendiente, sol.Estado)

	id := uuid.MustParse(sol.ID)
	require.NoError(t, svc.Cancelar(ctx, id))
	assert.Equal(t, model.SolicitudCancelada, db.solicitudes[id].Estado)
	assert.ErrorIs(t, svc.Cancelar(ctx, id), service.ErrTransicionInvalida)

	a.Activo = false
	_, err = svc.Crear(ctx, uuid.New(), dto.CrearSolicitudRequest{ArticuloID: a.ID.String(), Cantidad: 1})
	assert.ErrorIs(t, err, service.ErrValidacion)
}

// ── Camionetas / Equipos ─────────────────────────────────────────────────────

func TestCamioneta_PlacasYHerramientasAsignadas(t *testing.T) {
	h := newHerramientaFixture()
	svc := service.NewCamionetaService(h.camionetas, h.repo)
	ctx := context.Background()

	c, err := svc.Crear(ctx, dto.CrearCamionetaRequest{Nombre: "Unidad 7", Placas: "abc 12 34"})
	require.NoError(t, err)
	assert.Equal(t, "ABC1234", c.Placas)
	_, err = svc.Crear(ctx, dto.CrearCamionetaRequest{Nombre: "Otra", Placas: "ABC1234"})
	assert.ErrorIs(t, err, service.ErrDuplicado)

	unidades := h.tipoConUnidades(t, 1)
	camID := c.ID
	_, err = h.svc.Asignar(ctx, uuid.New(), uuid.MustParse(unidades[0].ID), dto.AsignarHerramientaRequest{CamionetaID: &camID})
	require.NoError(t, err)

	herramientas, err := svc.Herramientas(ctx, uuid.MustParse(c.ID))
	require.NoError(t, err)
	assert.Len(t, herramientas, 1)
	assert.ErrorIs(t, svc.Desactivar(ctx, uuid.MustParse(c.ID)), service.ErrConflicto)
}

func TestEquipo_AsignarMiembrosReemplaza(t *testing.T) {
	db := newMemDB()
	usuarios := &stubUsuarioRepo{db: db}
	svc := service.NewEquipoService(&stubEquipoRepo{m: map[uuid.UUID]*model.Equipo{}}, usuarios)
	ctx := context.Background()

	nuevo := func(nombre string, activo bool) *model.Usuario {
		u := &model.Usuario{ID: uuid.New(), Nombre: nombre, Email: nombre + "@3g.mx", Rol: model.RolEncargado, Activo: activo}
		db.usuarios[u.ID] = u
		return u
	}
	ana, beto, caro := nuevo("ana", true), nuevo("beto", true), nuevo("caro", false)

	e, err := svc.Crear(ctx, dto.CrearEquipoRequest{Nombre: "Cuadrilla Norte"})
	require.NoError(t, err)
	_, err = svc.Crear(ctx, dto.CrearEquipoRequest{Nombre: "Cuadrilla Norte"})
	assert.ErrorIs(t, err, service.ErrDuplicado)
	id := uuid.MustParse(e.ID)

	got, err := svc.AsignarMiembros(ctx, id, dto.AsignarMiembrosRequest{UsuarioIDs: []string{ana.ID.String(), beto.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalMiembros)

	got, err = svc.AsignarMiembros(ctx, id, dto.AsignarMiembrosRequest{UsuarioIDs: []string{beto.ID.String()}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalMiembros)
	assert.Nil(t, db.usuarios[ana.ID].EquipoID)

	_, err = svc.AsignarMiembros(ctx, id, dto.AsignarMiembrosRequest{UsuarioIDs: []string{caro.ID.String()}})
	assert.ErrorIs(t, err, service.ErrValidacion)
}
