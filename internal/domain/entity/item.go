package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un producto terminado. Quantity es el agregado cacheado de sus lotes (item_batches).
type Item struct {
	ID          string
	Name        string
	CategoryID  string
	Description string
	Price       decimal.Decimal // precio de venta unitario
	Quantity    decimal.Decimal // suma de lotes activos; solo la modifica el ledger
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
