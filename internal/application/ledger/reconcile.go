package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

const reconcilePageSize = 500

// Discrepancy SKU cuyo agregado no coincide con la suma de sus lotes.
type Discrepancy struct {
	Kind      entity.LedgerKind
	SKUID     string
	Name      string
	Aggregate decimal.Decimal
	LedgerSum decimal.Decimal
}

// Difference agregado - suma de lotes.
func (d Discrepancy) Difference() decimal.Decimal {
	return d.Aggregate.Sub(d.LedgerSum)
}

// Reconcile compara el agregado de cada item y materia prima con la suma de sus lotes.
// Devuelve solo los SKUs inconsistentes.
func (s *Service) Reconcile(ctx context.Context) (out []Discrepancy, err error) {
	ctx, span := s.startSpan(ctx, "Reconcile")
	defer func() { endSpan(span, err) }()

	itemSums, err := s.read.ItemBatches.SumBySKU(ctx)
	if err != nil {
		return nil, err
	}
	for offset := 0; ; offset += reconcilePageSize {
		items, err := s.read.Items.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			if sum := itemSums[it.ID]; !sum.Equal(it.Quantity) {
				out = append(out, Discrepancy{Kind: entity.LedgerKindItem, SKUID: it.ID, Name: it.Name, Aggregate: it.Quantity, LedgerSum: sum})
			}
		}
		if len(items) < reconcilePageSize {
			break
		}
	}

	matSums, err := s.read.MaterialBatches.SumBySKU(ctx)
	if err != nil {
		return nil, err
	}
	for offset := 0; ; offset += reconcilePageSize {
		mats, err := s.read.Materials.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, m := range mats {
			if sum := matSums[m.ID]; !sum.Equal(m.Quantity) {
				out = append(out, Discrepancy{Kind: entity.LedgerKindMaterial, SKUID: m.ID, Name: m.Name, Aggregate: m.Quantity, LedgerSum: sum})
			}
		}
		if len(mats) < reconcilePageSize {
			break
		}
	}

	if len(out) > 0 {
		s.log.Warn().Int("discrepancies", len(out)).Msg("ledger inconsistente")
	}
	return out, nil
}

// ListBatches lista los lotes activos (quantity != 0) de un tipo; skuID vacío lista todos.
func (s *Service) ListBatches(ctx context.Context, kind entity.LedgerKind, skuID string) ([]*entity.LedgerEntry, error) {
	var repo = s.read.ItemBatches
	switch kind {
	case entity.LedgerKindItem:
	case entity.LedgerKindMaterial:
		repo = s.read.MaterialBatches
	default:
		return nil, fmt.Errorf("%w: tipo de lote %q", domain.ErrInvalidInput, kind)
	}
	if skuID == "" {
		return repo.ListActive(ctx)
	}
	return repo.ListActiveBySKU(ctx, skuID)
}
