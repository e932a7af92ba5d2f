package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplyDelivery es una entrega de materia prima de un proveedor. Es dueña de un lote en material_batches.
type SupplyDelivery struct {
	ID          string
	SupplierID  string
	MaterialID  string
	Quantity    decimal.Decimal
	Cost        decimal.Decimal // costo total de la entrega
	DeliveredAt time.Time
}

// UnitCost costo por unidad de la entrega (cero si la cantidad es cero).
func (d *SupplyDelivery) UnitCost() decimal.Decimal {
	if d.Quantity.IsZero() {
		return decimal.Zero
	}
	return d.Cost.Div(d.Quantity)
}
