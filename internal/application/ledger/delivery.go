package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/inventory"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// DeliveryInput datos de una entrega de materia prima. Date cero = ahora.
type DeliveryInput struct {
	SupplierID string
	MaterialID string
	Quantity   decimal.Decimal
	Cost       decimal.Decimal
	Date       time.Time
}

// DeliveryResult ids creados por RecordDelivery.
type DeliveryResult struct {
	DeliveryID string
	BatchID    string
}

func (in DeliveryInput) validate() error {
	if strings.TrimSpace(in.SupplierID) == "" || strings.TrimSpace(in.MaterialID) == "" {
		return fmt.Errorf("%w: supplier_id y material_id son requeridos", domain.ErrInvalidInput)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: quantity debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if in.Cost.LessThan(decimal.Zero) {
		return fmt.Errorf("%w: cost no puede ser negativo", domain.ErrInvalidInput)
	}
	return nil
}

// RecordDelivery registra una entrega: crea la entrega, su lote, suma al agregado de la
// materia prima y recalcula su costo promedio ponderado.
func (s *Service) RecordDelivery(ctx context.Context, in DeliveryInput) (res *DeliveryResult, err error) {
	ctx, span := s.startSpan(ctx, "RecordDelivery",
		attribute.String("material.id", in.MaterialID), attribute.String("supplier.id", in.SupplierID))
	defer func() { endSpan(span, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}
	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	del := &entity.SupplyDelivery{
		ID:          uuid.New().String(),
		SupplierID:  in.SupplierID,
		MaterialID:  in.MaterialID,
		Quantity:    in.Quantity,
		Cost:        in.Cost,
		DeliveredAt: date,
	}
	batch := &entity.LedgerEntry{
		ID:          uuid.New().String(),
		Kind:        entity.LedgerKindMaterial,
		SKUID:       in.MaterialID,
		SourceID:    del.ID,
		Quantity:    in.Quantity,
		LastUpdated: now,
	}

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		mat, err := r.Materials.GetForUpdate(ctx, in.MaterialID)
		if err != nil {
			return err
		}
		if mat == nil {
			return fmt.Errorf("%w: materia prima %s", domain.ErrNotFound, in.MaterialID)
		}
		if err := r.Deliveries.Create(ctx, del); err != nil {
			return err
		}
		if err := r.MaterialBatches.Create(ctx, batch); err != nil {
			return err
		}
		if err := r.Materials.AdjustQuantity(ctx, mat.ID, in.Quantity); err != nil {
			return err
		}
		cost := inventory.WeightedAverageCost(mat.Quantity, mat.UnitCost, del.Quantity, del.UnitCost())
		return r.Materials.UpdateUnitCost(ctx, mat.ID, cost)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, []Event{{
		Type: EventDeliveryRecorded, SourceID: del.ID, Kind: entity.LedgerKindMaterial,
		SKUID: del.MaterialID, BatchID: batch.ID, Delta: del.Quantity, OccurredAt: now,
	}})
	return &DeliveryResult{DeliveryID: del.ID, BatchID: batch.ID}, nil
}

// UpdateDelivery edita una entrega aplicando delta = nuevo - anterior al agregado y al lote.
// La materia prima de una entrega no se puede cambiar.
func (s *Service) UpdateDelivery(ctx context.Context, deliveryID string, in DeliveryInput) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDelivery", attribute.String("delivery.id", deliveryID))
	defer func() { endSpan(span, err) }()

	if err := in.validate(); err != nil {
		return err
	}
	now := s.now()
	var ev Event

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		del, err := r.Deliveries.GetByIDForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if del == nil {
			return fmt.Errorf("%w: entrega %s", domain.ErrNotFound, deliveryID)
		}
		if in.MaterialID != del.MaterialID {
			return fmt.Errorf("%w: no se puede cambiar la materia prima de una entrega", domain.ErrInvalidInput)
		}
		mat, err := r.Materials.GetForUpdate(ctx, del.MaterialID)
		if err != nil {
			return err
		}
		if mat == nil {
			return fmt.Errorf("%w: materia prima %s", domain.ErrNotFound, del.MaterialID)
		}
		batch, err := r.MaterialBatches.GetBySource(ctx, del.ID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: lote de la entrega %s", domain.ErrNotFound, del.ID)
		}

		delta := in.Quantity.Sub(del.Quantity)
		if !delta.IsZero() {
			if err := r.MaterialBatches.Adjust(ctx, batch.ID, delta); err != nil {
				return err
			}
			if err := r.Materials.AdjustQuantity(ctx, mat.ID, delta); err != nil {
				return err
			}
		}

		updated := *del
		updated.SupplierID = in.SupplierID
		updated.Quantity = in.Quantity
		updated.Cost = in.Cost
		if !in.Date.IsZero() {
			updated.DeliveredAt = in.Date
		}
		// Solo lo que queda del lote sigue en el agregado; eso es lo que se saca y se vuelve a valorar.
		base := inventory.RemoveFromAverage(mat.Quantity, mat.UnitCost, batch.Quantity, del.UnitCost())
		cost := inventory.WeightedAverageCost(mat.Quantity.Sub(batch.Quantity), base, batch.Quantity.Add(delta), updated.UnitCost())
		if err := r.Materials.UpdateUnitCost(ctx, mat.ID, cost); err != nil {
			return err
		}
		ev = Event{
			Type: EventDeliveryUpdated, SourceID: del.ID, Kind: entity.LedgerKindMaterial,
			SKUID: del.MaterialID, BatchID: batch.ID, Delta: delta, OccurredAt: now,
		}
		return r.Deliveries.Update(ctx, &updated)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, []Event{ev})
	return nil
}

// DeleteDelivery revierte una entrega en este orden: leer entrega y lote, restar del agregado,
// eliminar el lote, eliminar la entrega. Si el lote tiene consumos registrados devuelve domain.ErrConflict.
func (s *Service) DeleteDelivery(ctx context.Context, deliveryID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteDelivery", attribute.String("delivery.id", deliveryID))
	defer func() { endSpan(span, err) }()

	now := s.now()
	var ev Event

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		del, err := r.Deliveries.GetByIDForUpdate(ctx, deliveryID)
		if err != nil {
			return err
		}
		if del == nil {
			return fmt.Errorf("%w: entrega %s", domain.ErrNotFound, deliveryID)
		}
		mat, err := r.Materials.GetForUpdate(ctx, del.MaterialID)
		if err != nil {
			return err
		}
		batch, err := r.MaterialBatches.GetBySource(ctx, del.ID)
		if err != nil {
			return err
		}
		ev = Event{
			Type: EventDeliveryDeleted, SourceID: del.ID, Kind: entity.LedgerKindMaterial,
			SKUID: del.MaterialID, Delta: decimal.Zero, OccurredAt: now,
		}
		if batch != nil {
			if err := r.Materials.AdjustQuantity(ctx, del.MaterialID, batch.Quantity.Neg()); err != nil {
				return err
			}
			if err := r.MaterialBatches.Delete(ctx, batch.ID); err != nil {
				return err
			}
			if mat != nil {
				cost := inventory.RemoveFromAverage(mat.Quantity, mat.UnitCost, batch.Quantity, del.UnitCost())
				if err := r.Materials.UpdateUnitCost(ctx, mat.ID, cost); err != nil {
					return err
				}
			}
			ev.BatchID = batch.ID
			ev.Delta = batch.Quantity.Neg()
		}
		return r.Deliveries.Delete(ctx, del.ID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, []Event{ev})
	return nil
}

// GetDelivery devuelve una entrega o domain.ErrNotFound.
func (s *Service) GetDelivery(ctx context.Context, id string) (*entity.SupplyDelivery, error) {
	del, err := s.read.Deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if del == nil {
		return nil, domain.ErrNotFound
	}
	return del, nil
}

// ListDeliveries lista entregas, más recientes primero.
func (s *Service) ListDeliveries(ctx context.Context, limit, offset int) ([]repository.DeliveryRow, error) {
	return s.read.Deliveries.List(ctx, limit, offset)
}
