package xlsx

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

func TestBuildStockWorkbook(t *testing.T) {
	rows := []repository.StockRow{
		{Kind: "item", ID: "i1", Name: "Silla", CategoryName: "Muebles", Quantity: decimal.NewFromInt(10), UnitValue: decimal.NewFromInt(25), ActiveLots: 2},
		{Kind: "material", ID: "m1", Name: "Resina", Quantity: decimal.RequireFromString("80.5"), UnitValue: decimal.NewFromInt(3), ActiveLots: 1},
	}
	out, err := NewStockWorkbook().BuildStockWorkbook(context.Background(), rows, time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	title, _ := f.GetCellValue(sheetName, "A1")
	assert.Equal(t, "Existencias al 02/05/2026 08:30", title)

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 6) // título, vacía, encabezado, 2 filas, total
	assert.Equal(t, stockHeaders, got[2])
	assert.Equal(t, []string{"Producto", "Silla", "Muebles", "10", "25", "250", "2"}, got[3])
	assert.Equal(t, "Materia prima", got[4][0])
	assert.Equal(t, "Total", got[5][0])
	total, _ := f.GetCellValue(sheetName, "F6")
	assert.Equal(t, "491.5", total)
}

func TestBuildStockWorkbook_Vacio(t *testing.T) {
	out, err := NewStockWorkbook().BuildStockWorkbook(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("PK")))
}
