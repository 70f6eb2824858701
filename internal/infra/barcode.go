package infra

import (
	"bytes"
	"fmt"
	"image/png"

	"inventario3g/internal/codigobarras"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
)

const (
	barcodeWidth  = 360
	barcodeHeight = 120
)

// BarcodePNG renders code as a PNG. Valid EAN-13 codes use the EAN symbology,
// everything else falls back to Code128.
func BarcodePNG(code string) ([]byte, error) {
	var (
		bc  barcode.Barcode
		err error
	)
	if codigobarras.EsEAN13Valido(code) {
		bc, err = ean.Encode(code)
	} else {
		bc, err = code128.Encode(code)
	}
	if err != nil {
		return nil, fmt.Errorf("barcode: encode %q: %w", code, err)
	}

	scaled, err := barcode.Scale(bc, barcodeWidth, barcodeHeight)
	if err != nil {
		return nil, fmt.Errorf("barcode: scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("barcode: png: %w", err)
	}
	return buf.Bytes(), nil
}
