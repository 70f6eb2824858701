package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"inventario3g/internal/codigobarras"
	"inventario3g/internal/dto"
	"inventario3g/internal/infra"
	"inventario3g/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardCaido struct{}

func (guardCaido) Permitir(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func newEscaneoSvc(db *memDB, h *herramientaFixture, guard infra.ScanGuard) service.EscaneoService {
	return service.NewEscaneoService(newArticuloSvc(db), h.svc, guard, 2*time.Second)
}

func TestEscaneo_ResuelveArticulo(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Cable", 4, 1, 10)
	svc := newEscaneoSvc(db, newHerramientaFixture(), infra.NewMemoryScanGuard())

	resp, err := svc.Escanear(context.Background(), uuid.New(), dto.EscaneoRequest{Codigo: " " + *a.CodigoEAN13 + "\n", Contexto: "salida"})
	require.NoError(t, err)
	assert.Equal(t, codigobarras.EAN13, resp.Tipo)
	assert.True(t, resp.Valido)
	assert.Equal(t, "salida", resp.Contexto)
	require.NotNil(t, resp.Articulo)
	assert.Equal(t, a.ID.String(), resp.Articulo.ID)
	assert.Nil(t, resp.Herramienta)
}

func TestEscaneo_Cooldown(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Cable", 4, 1, 10)
	svc := newEscaneoSvc(db, newHerramientaFixture(), infra.NewMemoryScanGuard())
	ctx := context.Background()
	uid := uuid.New()

	_, err := svc.Escanear(ctx, uid, dto.EscaneoRequest{Codigo: *a.CodigoEAN13})
	require.NoError(t, err)
	_, err = svc.Escanear(ctx, uid, dto.EscaneoRequest{Codigo: *a.CodigoEAN13})
	assert.ErrorIs(t, err, service.ErrEscaneoDuplicado)

	_, err = svc.Escanear(ctx, uuid.New(), dto.EscaneoRequest{Codigo: *a.CodigoEAN13})
	assert.NoError(t, err, "el cooldown es por usuario")
}

func TestEscaneo_GuardCaidoPermite(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Cable", 4, 1, 10)
	svc := newEscaneoSvc(db, newHerramientaFixture(), guardCaido{})

	for i := 0; i < 2; i++ {
		_, err := svc.Escanear(context.Background(), uuid.New(), dto.EscaneoRequest{Codigo: *a.CodigoEAN13})
		assert.NoError(t, err)
	}
}

func TestEscaneo_Herramienta(t *testing.T) {
	h := newHerramientaFixture()
	h.tipoConUnidades(t, 1)
	svc := newEscaneoSvc(newMemDB(), h, nil)

	resp, err := svc.Escanear(context.Background(), uuid.New(), dto.EscaneoRequest{Codigo: "tal-001"})
	require.NoError(t, err)
	assert.Equal(t, codigobarras.Herramienta, resp.Tipo)
	require.NotNil(t, resp.Herramienta)
	assert.Equal(t, "TAL-001", resp.Herramienta.Codigo)
}

func TestEscaneo_CodigoDesconocidoEInvalido(t *testing.T) {
	svc := newEscaneoSvc(newMemDB(), newHerramientaFixture(), nil)
	ctx := context.Background()

	resp, err := svc.Escanear(ctx, uuid.New(), dto.EscaneoRequest{Codigo: "4006381333931"})
	require.NoError(t, err, "un EAN valido sin articulo no es error")
	assert.Nil(t, resp.Articulo)

	resp, err = svc.Escanear(ctx, uuid.New(), dto.EscaneoRequest{Codigo: "4006381333932"})
	require.NoError(t, err)
	assert.False(t, resp.Valido)

	_, err = svc.Escanear(ctx, uuid.New(), dto.EscaneoRequest{Codigo: "   "})
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestEscaneo_UPCASeBuscaComoEAN13(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Refresco", 1, 0, 1)
	ean := "0036000291452"
	a.CodigoEAN13 = &ean
	svc := newEscaneoSvc(db, newHerramientaFixture(), nil)

	resp, err := svc.Escanear(context.Background(), uuid.New(), dto.EscaneoRequest{Codigo: "036000291452"})
	require.NoError(t, err)
	assert.Equal(t, codigobarras.UPCA, resp.Tipo)
	require.NotNil(t, resp.Articulo)
	assert.Equal(t, a.ID.String(), resp.Articulo.ID)
}
