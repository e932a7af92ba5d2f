package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind distingue lotes de producto terminado y de materia prima.
type LedgerKind string

const (
	LedgerKindItem     LedgerKind = "item"
	LedgerKindMaterial LedgerKind = "material"
)

// LedgerEntry es un lote: la cantidad que queda de una producción (item) o de una entrega (material).
// Un lote con Quantity 0 está inactivo pero no se elimina.
type LedgerEntry struct {
	ID          string
	Kind        LedgerKind
	SKUID       string // item_id o material_id
	SourceID    string // production_id o delivery_id
	Quantity    decimal.Decimal
	LastUpdated time.Time
}

// Active indica si el lote todavía tiene existencias.
func (e *LedgerEntry) Active() bool {
	return !e.Quantity.IsZero()
}
