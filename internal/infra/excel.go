package infra

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Hoja is one worksheet worth of tabular data.
type Hoja struct {
	Nombre      string
	Encabezados []string
	Filas       [][]any
}

// EscribirXLSX renders the given sheets into a workbook. The first sheet
// replaces the default "Sheet1".
func EscribirXLSX(hojas ...Hoja) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: style: %w", err)
	}

	for i, h := range hojas {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", h.Nombre); err != nil {
				return nil, fmt.Errorf("excel: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(h.Nombre); err != nil {
			return nil, fmt.Errorf("excel: new sheet %s: %w", h.Nombre, err)
		}

		for col, title := range h.Encabezados {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(h.Nombre, cell, title); err != nil {
				return nil, err
			}
		}
		if n := len(h.Encabezados); n > 0 {
			last, _ := excelize.CoordinatesToCellName(n, 1)
			if err := f.SetCellStyle(h.Nombre, "A1", last, bold); err != nil {
				return nil, err
			}
		}

		for r, fila := range h.Filas {
			for col, v := range fila {
				cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
				if err := f.SetCellValue(h.Nombre, cell, v); err != nil {
					return nil, fmt.Errorf("excel: %s!%s: %w", h.Nombre, cell, err)
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: write: %w", err)
	}
	return buf.Bytes(), nil
}

// FilaXLSX is one data row; Numero is the 1-based spreadsheet row.
type FilaXLSX struct {
	Numero  int
	Valores map[string]string
}

// LeerXLSX reads the first sheet of a workbook and returns its rows keyed by
// the lower-cased header of the first row. Blank rows are skipped.
func LeerXLSX(r io.Reader) ([]FilaXLSX, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("excel: open: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("excel: read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]FilaXLSX, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		blank := true
		for i, key := range header {
			if key == "" || i >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[i])
			if v != "" {
				blank = false
			}
			rec[key] = v
		}
		if !blank {
			out = append(out, FilaXLSX{Numero: n + 2, Valores: rec})
		}
	}
	return out, nil
}
