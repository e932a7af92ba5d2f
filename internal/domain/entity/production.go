package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Production es una corrida de producción de un item. Es dueña de exactamente un lote en item_batches.
type Production struct {
	ID         string
	ItemID     string
	Quantity   decimal.Decimal // cantidad producida
	StaffName  string
	ProducedAt time.Time
}
