package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/repository"
	"inventario3g/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type stubCampanaRepo struct {
	campanas map[uuid.UUID]*model.Campana
	celdas   []*model.CampanaCelda
	serial   int64
	// invertir returns cells newest first, like rows tied on created_at.
	invertir bool
}

func newStubCampanaRepo() *stubCampanaRepo {
	return &stubCampanaRepo{campanas: map[uuid.UUID]*model.Campana{}}
}

func (r *stubCampanaRepo) DB() *gorm.DB { return nil }

func (r *stubCampanaRepo) Create(_ context.Context, c *model.Campana) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	cp := *c
	r.campanas[c.ID] = &cp
	return nil
}

func (r *stubCampanaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Campana, error) {
	c, ok := r.campanas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCampanaRepo) FindByNombreAnio(_ context.Context, nombre string, anio int) (*model.Campana, error) {
	for _, c := range r.campanas {
		if c.Nombre == nombre && c.Anio == anio {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCampanaRepo) List(_ context.Context, anio int) ([]model.Campana, error) {
	var out []model.Campana
	for _, c := range r.campanas {
		if anio == 0 || c.Anio == anio {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCampanaRepo) ListCeldas(_ context.Context, campanaID uuid.UUID) ([]model.CampanaCelda, error) {
	var out []model.CampanaCelda
	for _, c := range r.celdas {
		if c.CampanaID == campanaID {
			out = append(out, *c)
		}
	}
	if r.invertir {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *stubCampanaRepo) UpsertCeldasTx(_ *gorm.DB, celdas []model.CampanaCelda) error {
	for _, in := range celdas {
		found := false
		for _, c := range r.celdas {
			if c.CampanaID == in.CampanaID && c.Fila == in.Fila && c.Columna == in.Columna {
				id, orden := c.ID, c.Orden
				*c = in
				c.ID, c.Orden = id, orden
				found = true
				break
			}
		}
		if !found {
			cp := in
			cp.ID = uuid.New()
			r.serial++
			cp.Orden = r.serial
			r.celdas = append(r.celdas, &cp)
		}
	}
	return nil
}

func (r *stubCampanaRepo) DeleteCelda(_ context.Context, campanaID, celdaID uuid.UUID) error {
	for i, c := range r.celdas {
		if c.ID == celdaID && c.CampanaID == campanaID {
			r.celdas = append(r.celdas[:i], r.celdas[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

var _ repository.CampanaRepository = (*stubCampanaRepo)(nil)

func TestCampana_CrearDuplicada(t *testing.T) {
	svc := service.NewCampanaService(newStubCampanaRepo())
	ctx := context.Background()

	_, err := svc.Crear(ctx, dto.CrearCampanaRequest{Nombre: "Invierno", Anio: 2026})
	require.NoError(t, err)
	_, err = svc.Crear(ctx, dto.CrearCampanaRequest{Nombre: "Invierno", Anio: 2026})
	assert.ErrorIs(t, err, service.ErrDuplicado)
	_, err = svc.Crear(ctx, dto.CrearCampanaRequest{Nombre: "Invierno", Anio: 2027})
	assert.NoError(t, err)

	list, err := svc.Listar(ctx, 2027)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCampana_TableroOrdenYUltimaGana(t *testing.T) {
	repo := newStubCampanaRepo()
	svc := service.NewCampanaService(repo)
	ctx := context.Background()

	c, err := svc.Crear(ctx, dto.CrearCampanaRequest{Nombre: "Verano", Anio: 2026})
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)

	tablero, err := svc.ActualizarCeldas(ctx, uuid.New(), id, dto.ActualizarCeldasRequest{Celdas: []dto.CeldaRequest{
		{Fila: "Sucursal Norte", Columna: "Minisplits", Valor: "3"},
		{Fila: "Sucursal Centro", Columna: "Minisplits", Valor: "1"},
		{Fila: "Sucursal Norte", Columna: "Ventiladores", Valor: "8", Estado: model.CeldaEnProceso},
		{Fila: "Sucursal Norte", Columna: "Minisplits", Valor: "4", Estado: model.CeldaCompletado},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sucursal Norte", "Sucursal Centro"}, tablero.Filas)
	assert.Equal(t, []string{"Minisplits", "Ventiladores"}, tablero.Columnas)
	require.Len(t, tablero.Celdas, 3)
	assert.Equal(t, "4", tablero.Celdas[0].Valor)
	assert.Equal(t, model.CeldaCompletado, tablero.Celdas[0].Estado)
	assert.Equal(t, model.CeldaPendiente, tablero.Celdas[1].Estado, "estado por defecto")

	_, err = svc.ActualizarCeldas(ctx, uuid.New(), id, dto.ActualizarCeldasRequest{Celdas: []dto.CeldaRequest{
		{Fila: "A", Columna: "B", Estado: "terminado"},
	}})
	assert.ErrorIs(t, err, service.ErrValidacion)

	celda := uuid.MustParse(tablero.Celdas[1].ID)
	require.NoError(t, svc.EliminarCelda(ctx, id, celda))
	assert.ErrorIs(t, svc.EliminarCelda(ctx, id, celda), service.ErrNoEncontrado)
}

func TestCampana_TableroSigueOrdenDeAltaAunqueLleguenDesordenadas(t *testing.T) {
	repo := newStubCampanaRepo()
	repo.invertir = true
	svc := service.NewCampanaService(repo)
	ctx := context.Background()

	c, err := svc.Crear(ctx, dto.CrearCampanaRequest{Nombre: "Otono", Anio: 2026})
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)

	_, err = svc.ActualizarCeldas(ctx, uuid.New(), id, dto.ActualizarCeldasRequest{Celdas: []dto.CeldaRequest{
		{Fila: "Norte", Columna: "Calentadores", Valor: "2"},
		{Fila: "Sur", Columna: "Calentadores", Valor: "5"},
		{Fila: "Norte", Columna: "Estufas", Valor: "1"},
	}})
	require.NoError(t, err)

	// a later upsert of an existing cell keeps its position
	tablero, err := svc.ActualizarCeldas(ctx, uuid.New(), id, dto.ActualizarCeldasRequest{Celdas: []dto.CeldaRequest{
		{Fila: "Oeste", Columna: "Estufas", Valor: "7"},
		{Fila: "Norte", Columna: "Calentadores", Valor: "9"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Norte", "Sur", "Oeste"}, tablero.Filas)
	assert.Equal(t, []string{"Calentadores", "Estufas"}, tablero.Columnas)
	require.Len(t, tablero.Celdas, 4)
	assert.Equal(t, "9", tablero.Celdas[0].Valor)
	assert.Equal(t, "Oeste", tablero.Celdas[3].Fila)
}

func TestCampana_CerradaNoSeEdita(t *testing.T) {
	repo := newStubCampanaRepo()
	svc := service.NewCampanaService(repo)
	c, err := svc.Crear(context.Background(), dto.CrearCampanaRequest{Nombre: "Otono", Anio: 2026})
	require.NoError(t, err)
	repo.campanas[uuid.MustParse(c.ID)].Activa = false

	_, err = svc.ActualizarCeldas(context.Background(), uuid.New(), uuid.MustParse(c.ID), dto.ActualizarCeldasRequest{
		Celdas: []dto.CeldaRequest{{Fila: "A", Columna: "B"}},
	})
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestCampana_ExportarExcel(t *testing.T) {
	svc := service.NewCampanaService(newStubCampanaRepo())
	ctx := context.Background()
	c, err := svc.Crear(ctx, dto.CrearCampanaRequest{Nombre: "Regreso a Clases", Anio: 2026})
	require.NoError(t, err)
	id := uuid.MustParse(c.ID)
	_, err = svc.ActualizarCeldas(ctx, uuid.New(), id, dto.ActualizarCeldasRequest{Celdas: []dto.CeldaRequest{
		{Fila: "Norte", Columna: "Lamparas", Valor: "12"},
		{Fila: "Sur", Columna: "Lamparas", Estado: model.CeldaEnProceso},
	}})
	require.NoError(t, err)

	data, nombre, err := svc.ExportarExcel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "campana-regreso-a-clases-2026.xlsx", nombre)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Tablero", "Detalle"}, f.GetSheetList())
	rows, err := f.GetRows("Tablero")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", "Lamparas"}, rows[0])
	assert.Equal(t, []string{"Norte", "12"}, rows[1])
	assert.Equal(t, []string{"Sur", model.CeldaEnProceso}, rows[2])
}
