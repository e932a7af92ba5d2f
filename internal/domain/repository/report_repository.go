package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailyCount cantidad de pedidos entregados en un día.
type DailyCount struct {
	Day   time.Time
	Count int
}

// StockRow fila de existencias para reportes y exportación.
type StockRow struct {
	Kind         string // item | material
	ID           string
	Name         string
	CategoryName string
	Quantity     decimal.Decimal
	UnitValue    decimal.Decimal // precio (item) o costo promedio (material)
	ActiveLots   int
}

// ReportRepository consultas de solo lectura para reportes.
type ReportRepository interface {
	// CountDeliveredByDay cuenta pedidos con estado delivered por día en [from, to).
	CountDeliveredByDay(ctx context.Context, from, to time.Time) ([]DailyCount, error)
	CountOrdersByStatus(ctx context.Context) (map[string]int, error)
	DeliveredRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	// LowStock devuelve SKUs con cantidad <= threshold, menor cantidad primero.
	LowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]StockRow, error)
	StockSnapshot(ctx context.Context) ([]StockRow, error)
}
