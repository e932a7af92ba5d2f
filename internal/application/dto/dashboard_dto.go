package dto

import "github.com/shopspring/decimal"

// SalesBucketDTO cantidad de pedidos entregados en un tramo del rango.
// Bucket: día de la semana 0-6 (lunes = 0) para week, día del mes para month,
// mes 1-12 para year; en custom cada tramo es un día calendario (Label = YYYY-MM-DD).
type SalesBucketDTO struct {
	Bucket int    `json:"bucket"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// SalesSummaryDTO respuesta de GET /api/reports/sales-summary.
type SalesSummaryDTO struct {
	Range   string           `json:"range"`
	From    string           `json:"from"` // YYYY-MM-DD inclusive
	To      string           `json:"to"`   // YYYY-MM-DD inclusive
	Total   int              `json:"total"`
	Buckets []SalesBucketDTO `json:"buckets"`
}

// DashboardDTO respuesta de GET /api/reports/dashboard.
type DashboardDTO struct {
	// Pedidos por estado (preparing, on delivery, delivered, cancelled).
	OrdersByStatus map[string]int `json:"orders_by_status"`

	DeliveredToday int             `json:"delivered_today"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"` // suma de price de pedidos entregados en el mes

	LowStock []StockLevelDTO `json:"low_stock"`

	DateLabel string `json:"date_label"` // ej: "Marzo 2024"
}

// StockLevelDTO existencias de un SKU.
type StockLevelDTO struct {
	Kind       string          `json:"kind"`
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Category   string          `json:"category,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitValue  decimal.Decimal `json:"unit_value"`
	ActiveLots int             `json:"active_lots"`
}
