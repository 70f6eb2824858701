package service_test

import (
	"context"
	"testing"

	"inventario3g/internal/dto"
	"inventario3g/internal/model"
	"inventario3g/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMovimientoSvc(db *memDB) service.MovimientoService {
	return service.NewMovimientoService(
		&stubMovimientoRepo{db: db},
		&stubArticuloRepo{db: db},
		&stubSolicitudRepo{db: db},
		&folios{},
		nil,
	)
}

func item(a *model.Articulo, n int) dto.ItemMovimientoRequest {
	return dto.ItemMovimientoRequest{ArticuloID: a.ID.String(), Cantidad: n}
}

func TestMovimiento_EntradaLoteUnFolio(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Cable", 10, 0, 1)
	b := db.seedArticulo("Canaleta", 0, 0, 1)
	svc := newMovimientoSvc(db)

	resp, err := svc.Registrar(context.Background(), uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo:  model.MovEntrada,
		Items: []dto.ItemMovimientoRequest{item(a, 5), item(b, 3)},
	})
	require.NoError(t, err)
	assert.Equal(t, "MOV-T001", resp.Folio)
	require.Len(t, resp.Movimientos, 2)
	for _, m := range resp.Movimientos {
		assert.Equal(t, resp.Folio, m.Folio)
	}
	assert.Equal(t, 15, db.articulos[a.ID].StockActual)
	assert.Equal(t, 3, db.articulos[b.ID].StockActual)
	assert.Empty(t, resp.SolicitudesGeneradas)
}

func TestMovimiento_SalidaStockInsuficiente(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Tubo conduit", 2, 0, 1)
	svc := newMovimientoSvc(db)

	_, err := svc.Registrar(context.Background(), uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo:  model.MovSalida,
		Items: []dto.ItemMovimientoRequest{item(a, 3)},
	})
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
	assert.Equal(t, 2, db.articulos[a.ID].StockActual)
}

func TestMovimiento_SalidaBajoMinimoGeneraSolicitud(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Breaker 20A", 6, 5, 80)
	svc := newMovimientoSvc(db)
	ctx := context.Background()

	resp, err := svc.Registrar(ctx, uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo:  model.MovSalida,
		Items: []dto.ItemMovimientoRequest{item(a, 2)},
	})
	require.NoError(t, err)
	require.Len(t, resp.SolicitudesGeneradas, 1)
	sol := resp.SolicitudesGeneradas[0]
	assert.Equal(t, model.OrigenAutomatica, sol.Origen)
	assert.Equal(t, model.SolicitudPendiente, sol.Estado)
	assert.Equal(t, 6, sol.Cantidad, "repone hasta 2x minimo")
	assert.Equal(t, -2, resp.Movimientos[0].Cantidad)

	resp, err = svc.Registrar(ctx, uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo:  model.MovSalida,
		Items: []dto.ItemMovimientoRequest{item(a, 1)},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.SolicitudesGeneradas, "ya hay una solicitud abierta")
	assert.Len(t, db.solicitudes, 1)
}

func TestMovimiento_AjusteUsaConteo(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Apagador", 10, 0, 1)
	b := db.seedArticulo("Placa", 4, 0, 1)
	svc := newMovimientoSvc(db)

	resp, err := svc.Registrar(context.Background(), uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo:   model.MovAjuste,
		Items:  []dto.ItemMovimientoRequest{item(a, 7), item(b, 4)},
		Motivo: "conteo fisico",
	})
	require.NoError(t, err)
	require.Len(t, resp.Movimientos, 1, "conteo igual al stock no genera movimiento")
	assert.Equal(t, -3, resp.Movimientos[0].Cantidad)
	assert.Equal(t, 10, resp.Movimientos[0].StockAnterior)
	assert.Equal(t, 7, db.articulos[a.ID].StockActual)
}

func TestMovimiento_Validaciones(t *testing.T) {
	db := newMemDB()
	a := db.seedArticulo("Inactivo", 3, 0, 1)
	a.Activo = false
	svc := newMovimientoSvc(db)
	ctx := context.Background()

	_, err := svc.Registrar(ctx, uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo: model.MovEntrada, Items: []dto.ItemMovimientoRequest{{ArticuloID: uuid.NewString(), Cantidad: 1}},
	})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)

	_, err = svc.Registrar(ctx, uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo: model.MovEntrada, Items: []dto.ItemMovimientoRequest{item(a, 1)},
	})
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = svc.Registrar(ctx, uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo: model.MovSalida, Items: []dto.ItemMovimientoRequest{{ArticuloID: a.ID.String(), Cantidad: 0}},
	})
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = svc.Registrar(ctx, uuid.New(), dto.RegistrarMovimientosRequest{
		Tipo: model.MovEntrada, Items: []dto.ItemMovimientoRequest{{ArticuloID: "no-uuid", Cantidad: 1}},
	})
	assert.ErrorIs(t, err, service.ErrValidacion)
}
