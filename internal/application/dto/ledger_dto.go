package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Producción ───────────────────────────────────────────────────────────────

// ProductionRequest entrada para registrar o editar una corrida de producción.
type ProductionRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	StaffName string          `json:"staff_name"`
}

// ProductionResponse salida de una producción con su lote.
type ProductionResponse struct {
	ID         string           `json:"id"`
	ItemID     string           `json:"item_id"`
	ItemName   string           `json:"item_name,omitempty"`
	Quantity   decimal.Decimal  `json:"quantity"`
	StaffName  string           `json:"staff_name"`
	ProducedAt time.Time        `json:"produced_at"`
	BatchID    string           `json:"batch_id,omitempty"`
	Remaining  *decimal.Decimal `json:"remaining,omitempty"`
}

// ── Entregas ─────────────────────────────────────────────────────────────────

// DeliveryRequest entrada para registrar o editar una entrega de proveedor.
type DeliveryRequest struct {
	SupplierID string          `json:"supplier_id" validate:"required"`
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Cost       decimal.Decimal `json:"cost"`
	Date       *time.Time      `json:"date"`
}

// DeliveryResponse salida de una entrega con su lote.
type DeliveryResponse struct {
	ID           string           `json:"id"`
	SupplierID   string           `json:"supplier_id"`
	SupplierName string           `json:"supplier_name,omitempty"`
	MaterialID   string           `json:"material_id"`
	MaterialName string           `json:"material_name,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Cost         decimal.Decimal  `json:"cost"`
	DeliveredAt  time.Time        `json:"delivered_at"`
	BatchID      string           `json:"batch_id,omitempty"`
	Remaining    *decimal.Decimal `json:"remaining,omitempty"`
}

// ── Bitácoras de consumo ─────────────────────────────────────────────────────

// MaterialUseRequest una línea de consumo: cuánto se tomó de qué lote.
type MaterialUseRequest struct {
	MaterialID string          `json:"material_id"`
	BatchID    string          `json:"batch_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ConsumptionLogRequest entrada para registrar o editar una bitácora de consumo.
type ConsumptionLogRequest struct {
	Description string               `json:"description"`
	Date        *time.Time           `json:"date"`
	Materials   []MaterialUseRequest `json:"materials"`
}

// RejectedMaterialResponse línea descartada y el motivo.
type RejectedMaterialResponse struct {
	Index    int                `json:"index"`
	Material MaterialUseRequest `json:"material"`
	Reason   string             `json:"reason"`
}

// ConsumptionResultResponse resultado de registrar/editar una bitácora.
type ConsumptionResultResponse struct {
	ID       string                     `json:"id"`
	Accepted int                        `json:"accepted"`
	Rejected []RejectedMaterialResponse `json:"rejected"`
}

// ConsumptionLineResponse línea persistida de una bitácora.
type ConsumptionLineResponse struct {
	MaterialID string          `json:"material_id"`
	BatchID    string          `json:"batch_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ConsumptionLogResponse salida de una bitácora.
type ConsumptionLogResponse struct {
	ID            string                    `json:"id"`
	Description   string                    `json:"description"`
	LoggedAt      time.Time                 `json:"logged_at"`
	Lines         []ConsumptionLineResponse `json:"lines,omitempty"`
	MaterialNames []string                  `json:"material_names,omitempty"`
}

// ── Lotes y reconciliación ───────────────────────────────────────────────────

// BatchResponse un lote activo del ledger.
type BatchResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	SKUID       string          `json:"sku_id"`
	SourceID    string          `json:"source_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	LastUpdated time.Time       `json:"last_updated"`
}

// DiscrepancyResponse SKU cuyo agregado no coincide con sus lotes.
type DiscrepancyResponse struct {
	Kind       string          `json:"kind"`
	SKUID      string          `json:"sku_id"`
	Name       string          `json:"name"`
	Aggregate  decimal.Decimal `json:"aggregate"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Difference decimal.Decimal `json:"difference"`
}

// ReconcileResponse resultado de la reconciliación.
type ReconcileResponse struct {
	Consistent    bool                  `json:"consistent"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
}
