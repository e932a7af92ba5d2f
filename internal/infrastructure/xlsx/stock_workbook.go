// Package xlsx exporta la planilla de existencias con excelize.
package xlsx

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

const sheetName = "Existencias"

var stockHeaders = []string{"Tipo", "Nombre", "Categoría", "Cantidad", "Valor unitario", "Valor total", "Lotes activos"}

var kindLabels = map[string]string{
	"item":     "Producto",
	"material": "Materia prima",
}

// StockWorkbook implementa report.StockWorkbookBuilder.
type StockWorkbook struct{}

func NewStockWorkbook() *StockWorkbook { return &StockWorkbook{} }

// BuildStockWorkbook escribe una fila por SKU y una fila de totales al final.
func (StockWorkbook) BuildStockWorkbook(_ context.Context, rows []repository.StockRow, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}

	if err := f.SetCellValue(sheetName, "A1", "Existencias al "+generatedAt.Format("02/01/2006 15:04")); err != nil {
		return nil, err
	}
	_ = f.SetCellStyle(sheetName, "A1", "A1", boldStyle)

	for i, h := range stockHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(sheetName, "A3", "G3", headerStyle)

	total := 0.0
	for i, r := range rows {
		line := i + 4
		value := r.Quantity.Mul(r.UnitValue)
		values := []any{
			kindLabel(r.Kind), r.Name, r.CategoryName,
			r.Quantity.InexactFloat64(), r.UnitValue.InexactFloat64(), value.InexactFloat64(), r.ActiveLots,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, line)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
		total += value.InexactFloat64()
	}

	summary := len(rows) + 4
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", summary), "Total")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", summary), fmt.Sprintf("%d registros", len(rows)))
	_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", summary), total)
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summary), fmt.Sprintf("G%d", summary), boldStyle)

	for i, w := range []float64{14, 30, 20, 12, 14, 16, 12} {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func kindLabel(kind string) string {
	if l, ok := kindLabels[kind]; ok {
		return l
	}
	return kind
}
