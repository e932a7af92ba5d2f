package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido.
const (
	OrderStatusPreparing  = "preparing"
	OrderStatusOnDelivery = "on delivery"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order pedido de venta. Referencia lotes de producción pero no descuenta stock.
type Order struct {
	ID             string
	CustomerName   string
	Date           time.Time
	Location       string
	ModeOfPayment  string
	PaymentStatus  string
	Status         string
	Price          decimal.Decimal
	LastUpdateDate time.Time
	Products       []OrderProduct
}

// OrderProduct línea de un pedido. BatchID es opcional (lote de item_batches).
type OrderProduct struct {
	OrderID  string
	ItemID   string
	ItemName string
	Quantity decimal.Decimal
	BatchID  string
}

// ValidOrderStatus indica si s es un estado de pedido conocido.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPreparing, OrderStatusOnDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
