package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionLog registra el consumo de materias primas en producción.
type ConsumptionLog struct {
	ID          string
	Description string
	LoggedAt    time.Time
	Lines       []ConsumptionLine
}

// ConsumptionLine descuenta Quantity del lote BatchID de la materia prima MaterialID.
type ConsumptionLine struct {
	LogID      string
	MaterialID string
	BatchID    string
	Quantity   decimal.Decimal
}
