package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// Tipos de evento publicados tras cada mutación confirmada.
const (
	EventProductionRecorded  = "production.recorded"
	EventProductionUpdated   = "production.updated"
	EventProductionDeleted   = "production.deleted"
	EventDeliveryRecorded    = "delivery.recorded"
	EventDeliveryUpdated     = "delivery.updated"
	EventDeliveryDeleted     = "delivery.deleted"
	EventMaterialConsumed    = "material.consumed"
	EventConsumptionReversed = "material.consumption_reversed"
)

// Event describe el efecto de una mutación sobre un SKU y su lote.
// Delta es el cambio aplicado al agregado del SKU.
type Event struct {
	Type       string            `json:"type"`
	SourceID   string            `json:"source_id"`
	Kind       entity.LedgerKind `json:"kind"`
	SKUID      string            `json:"sku_id"`
	BatchID    string            `json:"batch_id,omitempty"`
	Delta      decimal.Decimal   `json:"delta"`
	OccurredAt time.Time         `json:"occurred_at"`
}
