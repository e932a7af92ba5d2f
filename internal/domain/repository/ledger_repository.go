package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// LedgerRepository persiste lotes de un solo tipo (item o material).
// Las lecturas devuelven (nil, nil) si el lote no existe.
type LedgerRepository interface {
	Kind() entity.LedgerKind
	Create(ctx context.Context, e *entity.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error)
	GetBySource(ctx context.Context, sourceID string) (*entity.LedgerEntry, error)
	// Adjust aplica delta con la guarda quantity + delta >= 0 y actualiza last_updated.
	Adjust(ctx context.Context, id string, delta decimal.Decimal) error
	// Reassign mueve el lote a otro SKU (cambio de item en una producción).
	Reassign(ctx context.Context, id, skuID string) error
	// Delete elimina el lote; domain.ErrConflict si otro registro lo referencia.
	Delete(ctx context.Context, id string) error
	// ListActiveBySKU lista lotes con quantity != 0 del SKU, más antiguos primero.
	ListActiveBySKU(ctx context.Context, skuID string) ([]*entity.LedgerEntry, error)
	ListActive(ctx context.Context) ([]*entity.LedgerEntry, error)
	// SumBySKU suma las cantidades de todos los lotes agrupadas por SKU.
	SumBySKU(ctx context.Context) (map[string]decimal.Decimal, error)
}
