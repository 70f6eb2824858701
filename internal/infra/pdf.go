package infra

// pdf.go renders a purchase order as a Letter-size PDF with go-pdf/fpdf:
//   - company header and order folio
//   - provider block
//   - item table with quantity, unit cost and subtotal
//   - bold total and optional observations

import (
	"bytes"
	"fmt"

	"inventario3g/internal/model"

	"github.com/go-pdf/fpdf"
)

// OrdenCompraPDF builds the PDF for an order. Items must have Articulo
// preloaded; Proveedor is optional.
func OrdenCompraPDF(orden *model.OrdenCompra, empresa string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// header
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 8, tr(empresa), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, "Orden de compra", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, orden.Folio, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	fecha := orden.CreatedAt
	if orden.FechaEnvio != nil {
		fecha = *orden.FechaEnvio
	}
	pdf.CellFormat(contentW, 5, "Fecha: "+fecha.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	// provider
	if p := orden.Proveedor; p != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, tr("Proveedor: "+p.Nombre), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, "RFC: "+p.RFC, "", 1, "L", false, 0, "")
		if p.Email != nil {
			pdf.CellFormat(contentW, 5, *p.Email, "", 1, "L", false, 0, "")
		}
		if p.Telefono != nil {
			pdf.CellFormat(contentW, 5, "Tel: "+*p.Telefono, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	col1 := contentW * 0.50
	col2 := contentW * 0.14
	col3 := contentW * 0.18
	col4 := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(col1, 7, "Articulo", "1", 0, "L", true, 0, "")
	pdf.CellFormat(col2, 7, "Cantidad", "1", 0, "C", true, 0, "")
	pdf.CellFormat(col3, 7, "Costo unit.", "1", 0, "R", true, 0, "")
	pdf.CellFormat(col4, 7, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, it := range orden.Items {
		nombre := it.ArticuloID.String()
		if it.Articulo != nil {
			nombre = it.Articulo.Nombre
			if len(nombre) > 48 {
				nombre = nombre[:47] + "..."
			}
		}
		pdf.CellFormat(col1, 6, tr(nombre), "1", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", it.CantidadSolicitada), "1", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+it.CostoUnitario.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+it.Subtotal().StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2+col3, 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "$"+orden.Total.StringFixed(2), "1", 1, "R", false, 0, "")

	if orden.Observaciones != nil && *orden.Observaciones != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr("Observaciones: "+*orden.Observaciones), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render %s: %w", orden.Folio, err)
	}
	return buf.Bytes(), nil
}
