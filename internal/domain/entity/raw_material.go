package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterial representa una materia prima. Quantity es el agregado de sus lotes (material_batches).
// UnitCost es el costo promedio ponderado de las entregas recibidas.
type RawMaterial struct {
	ID         string
	Name       string
	CategoryID string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
