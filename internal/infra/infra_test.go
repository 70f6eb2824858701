package infra

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"testing"
	"time"

	"inventario3g/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
		Now:              func() time.Time { return now },
	})
	boom := errors.New("smtp down")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second, Now: func() time.Time { return now }})
	_ = cb.Execute(func() error { return errors.New("x") })
	now = now.Add(2 * time.Second)
	_ = cb.Execute(func() error { return errors.New("x") })
	assert.Equal(t, CBOpen, cb.State())
}

func TestMemoryScanGuard(t *testing.T) {
	g := NewMemoryScanGuard()
	now := time.Now()
	g.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := g.Permitir(ctx, "u1:4006381333931", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Permitir(ctx, "u1:4006381333931", 2*time.Second)
	assert.False(t, ok, "repeat inside window")

	ok, _ = g.Permitir(ctx, "u2:4006381333931", 2*time.Second)
	assert.True(t, ok, "other user is independent")

	now = now.Add(2100 * time.Millisecond)
	ok, _ = g.Permitir(ctx, "u1:4006381333931", 2*time.Second)
	assert.True(t, ok, "window elapsed")
}

func TestBarcodePNG(t *testing.T) {
	for _, code := range []string{"4006381333931", "TAL-001"} {
		data, err := BarcodePNG(code)
		require.NoError(t, err, code)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, barcodeWidth, img.Bounds().Dx())
		assert.Equal(t, barcodeHeight, img.Bounds().Dy())
	}
}

func TestProcesarImagen(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
	for x := 0; x < 2048; x += 7 {
		src.Set(x, x%1024, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := ProcesarImagen(buf.Bytes())
	require.NoError(t, err)

	grande, _, err := image.Decode(bytes.NewReader(out.Imagen))
	require.NoError(t, err)
	assert.Equal(t, 1024, grande.Bounds().Dx())
	assert.Equal(t, 512, grande.Bounds().Dy())

	mini, _, err := image.Decode(bytes.NewReader(out.Miniatura))
	require.NoError(t, err)
	assert.Equal(t, MiniaturaLado, mini.Bounds().Dx())
	assert.Equal(t, MiniaturaLado, mini.Bounds().Dy())
}

func TestProcesarImagen_Invalida(t *testing.T) {
	_, err := ProcesarImagen([]byte("no es una imagen"))
	assert.Error(t, err)
}

func TestXLSXRoundTrip(t *testing.T) {
	data, err := EscribirXLSX(Hoja{
		Nombre:      "Articulos",
		Encabezados: []string{"Nombre", "Codigo_EAN13", "Stock_Minimo"},
		Filas: [][]any{
			{"Taladro", "4006381333931", 2},
			{"", "", ""},
			{"Broca 1/4", "", 10},
		},
	})
	require.NoError(t, err)

	rows, err := LeerXLSX(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Numero)
	assert.Equal(t, "Taladro", rows[0].Valores["nombre"])
	assert.Equal(t, "2", rows[0].Valores["stock_minimo"])
	assert.Equal(t, 4, rows[1].Numero)
	assert.Equal(t, "Broca 1/4", rows[1].Valores["nombre"])
}

func TestOrdenCompraPDF(t *testing.T) {
	email := "ventas@acme.mx"
	orden := &model.OrdenCompra{
		Folio:     "OC-2026-0001",
		CreatedAt: time.Now(),
		Total:     decimal.NewFromInt(250),
		Proveedor: &model.Proveedor{Nombre: "Acme Herramientas", RFC: "ACM010101AAA", Email: &email},
		Items: []model.OrdenCompraItem{{
			ArticuloID:         uuid.New(),
			CantidadSolicitada: 5,
			CostoUnitario:      decimal.NewFromInt(50),
			Articulo:           &model.Articulo{Nombre: "Cinta aislante"},
		}},
	}
	data, err := OrdenCompraPDF(orden, "3G")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestStorage(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := s.Save(DirMiniaturas, "abc.jpg", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "imagenes/miniaturas/abc.jpg", rel)

	got, err := s.Read(rel)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	_, err = s.Read("../../etc/passwd")
	assert.Error(t, err)
}

func TestFolioGenerator(t *testing.T) {
	g, err := NewFolioGenerator(3)
	require.NoError(t, err)
	a, b := g.Nuevo("MOV"), g.Nuevo("MOV")
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^MOV-[0-9A-Z]+$`, a)
}
