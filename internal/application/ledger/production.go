package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// ProductionInput datos de una corrida de producción.
type ProductionInput struct {
	ItemID    string
	Quantity  decimal.Decimal
	StaffName string
}

// ProductionResult ids creados por RecordProduction.
type ProductionResult struct {
	ProductionID string
	BatchID      string
}

func (in ProductionInput) validate() error {
	if strings.TrimSpace(in.ItemID) == "" {
		return fmt.Errorf("%w: item_id es requerido", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: quantity debe ser mayor que cero", domain.ErrInvalidInput)
	}
	return nil
}

// RecordProduction registra una producción: crea el evento, un lote con la cantidad producida
// y suma la cantidad al agregado del item, todo en una transacción.
func (s *Service) RecordProduction(ctx context.Context, in ProductionInput) (res *ProductionResult, err error) {
	ctx, span := s.startSpan(ctx, "RecordProduction", attribute.String("item.id", in.ItemID))
	defer func() { endSpan(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	prod := &entity.Production{
		ID:         uuid.New().String(),
		ItemID:     in.ItemID,
		Quantity:   in.Quantity,
		StaffName:  strings.TrimSpace(in.StaffName),
		ProducedAt: now,
	}
	batch := &entity.LedgerEntry{
		ID:          uuid.New().String(),
		Kind:        entity.LedgerKindItem,
		SKUID:       in.ItemID,
		SourceID:    prod.ID,
		Quantity:    in.Quantity,
		LastUpdated: now,
	}

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		item, err := r.Items.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: item %s", domain.ErrNotFound, in.ItemID)
		}
		if err := r.Productions.Create(ctx, prod); err != nil {
			return err
		}
		if err := r.ItemBatches.Create(ctx, batch); err != nil {
			return err
		}
		return r.Items.AdjustQuantity(ctx, in.ItemID, in.Quantity)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, []Event{{
		Type: EventProductionRecorded, SourceID: prod.ID, Kind: entity.LedgerKindItem,
		SKUID: prod.ItemID, BatchID: batch.ID, Delta: prod.Quantity, OccurredAt: now,
	}})
	return &ProductionResult{ProductionID: prod.ID, BatchID: batch.ID}, nil
}

// UpdateProduction edita una producción. Lote y agregado se ajustan con el mismo delta
// (nuevo - anterior). Si cambia el item, el lote pasa al nuevo item con su cantidad restante.
func (s *Service) UpdateProduction(ctx context.Context, productionID string, in ProductionInput) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateProduction",
		attribute.String("production.id", productionID), attribute.String("item.id", in.ItemID))
	defer func() { endSpan(span, err) }()

	if err := in.validate(); err != nil {
		return err
	}
	now := s.now()
	var events []Event

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		events = events[:0]
		prod, err := r.Productions.GetByIDForUpdate(ctx, productionID)
		if err != nil {
			return err
		}
		if prod == nil {
			return fmt.Errorf("%w: producción %s", domain.ErrNotFound, productionID)
		}
		items, err := lockItems(ctx, r.Items, prod.ItemID, in.ItemID)
		if err != nil {
			return err
		}
		if items[in.ItemID] == nil {
			return fmt.Errorf("%w: item %s", domain.ErrNotFound, in.ItemID)
		}
		batch, err := r.ItemBatches.GetBySource(ctx, prod.ID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: lote de la producción %s", domain.ErrNotFound, prod.ID)
		}

		delta := in.Quantity.Sub(prod.Quantity)
		remaining := batch.Quantity.Add(delta)
		if remaining.LessThan(decimal.Zero) {
			return domain.ErrInsufficientStock
		}

		if !delta.IsZero() {
			if err := r.ItemBatches.Adjust(ctx, batch.ID, delta); err != nil {
				return err
			}
		}
		if prod.ItemID == in.ItemID {
			if !delta.IsZero() {
				if err := r.Items.AdjustQuantity(ctx, prod.ItemID, delta); err != nil {
					return err
				}
			}
			events = append(events, Event{
				Type: EventProductionUpdated, SourceID: prod.ID, Kind: entity.LedgerKindItem,
				SKUID: prod.ItemID, BatchID: batch.ID, Delta: delta, OccurredAt: now,
			})
		} else {
			// El item anterior pierde todo el lote; el nuevo lo recibe ya ajustado.
			if err := r.Items.AdjustQuantity(ctx, prod.ItemID, batch.Quantity.Neg()); err != nil {
				return err
			}
			if err := r.ItemBatches.Reassign(ctx, batch.ID, in.ItemID); err != nil {
				return err
			}
			if err := r.Items.AdjustQuantity(ctx, in.ItemID, remaining); err != nil {
				return err
			}
			events = append(events,
				Event{
					Type: EventProductionUpdated, SourceID: prod.ID, Kind: entity.LedgerKindItem,
					SKUID: prod.ItemID, BatchID: batch.ID, Delta: batch.Quantity.Neg(), OccurredAt: now,
				},
				Event{
					Type: EventProductionUpdated, SourceID: prod.ID, Kind: entity.LedgerKindItem,
					SKUID: in.ItemID, BatchID: batch.ID, Delta: remaining, OccurredAt: now,
				},
			)
		}

		prod.ItemID = in.ItemID
		prod.Quantity = in.Quantity
		prod.StaffName = strings.TrimSpace(in.StaffName)
		return r.Productions.Update(ctx, prod)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events)
	return nil
}

// DeleteProduction revierte una producción: resta del agregado lo que queda en su lote,
// elimina el lote y después la producción (hijos antes que padres).
func (s *Service) DeleteProduction(ctx context.Context, productionID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteProduction", attribute.String("production.id", productionID))
	defer func() { endSpan(span, err) }()

	now := s.now()
	var ev Event

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		prod, err := r.Productions.GetByIDForUpdate(ctx, productionID)
		if err != nil {
			return err
		}
		if prod == nil {
			return fmt.Errorf("%w: producción %s", domain.ErrNotFound, productionID)
		}
		if _, err := r.Items.GetForUpdate(ctx, prod.ItemID); err != nil {
			return err
		}
		batch, err := r.ItemBatches.GetBySource(ctx, prod.ID)
		if err != nil {
			return err
		}
		ev = Event{
			Type: EventProductionDeleted, SourceID: prod.ID, Kind: entity.LedgerKindItem,
			SKUID: prod.ItemID, Delta: decimal.Zero, OccurredAt: now,
		}
		if batch != nil {
			if err := r.Items.AdjustQuantity(ctx, prod.ItemID, batch.Quantity.Neg()); err != nil {
				return err
			}
			if err := r.ItemBatches.Delete(ctx, batch.ID); err != nil {
				return err
			}
			ev.BatchID = batch.ID
			ev.Delta = batch.Quantity.Neg()
		}
		return r.Productions.Delete(ctx, prod.ID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, []Event{ev})
	return nil
}

// GetProduction devuelve una producción o domain.ErrNotFound.
func (s *Service) GetProduction(ctx context.Context, id string) (*entity.Production, error) {
	prod, err := s.read.Productions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, domain.ErrNotFound
	}
	return prod, nil
}

// ListProductions lista producciones, más recientes primero.
func (s *Service) ListProductions(ctx context.Context, limit, offset int) ([]repository.ProductionRow, error) {
	return s.read.Productions.List(ctx, limit, offset)
}

// lockItems bloquea (SELECT FOR UPDATE) los items indicados en orden de id.
// El mapa devuelto contiene nil para los ids inexistentes.
func lockItems(ctx context.Context, repo repository.ItemRepository, ids ...string) (map[string]*entity.Item, error) {
	out := make(map[string]*entity.Item, len(ids))
	for _, id := range sortedUnique(ids...) {
		item, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = item
	}
	return out, nil
}
