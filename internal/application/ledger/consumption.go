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
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// Motivos de rechazo de una línea de consumo.
const (
	RejectMissingMaterial = "material_id requerido"
	RejectMissingBatch    = "batch_id requerido"
	RejectQuantity        = "quantity debe ser mayor que cero"
)

// MaterialUse una línea solicitada: descontar Quantity del lote BatchID de la materia prima MaterialID.
type MaterialUse struct {
	MaterialID string
	BatchID    string
	Quantity   decimal.Decimal
}

// RejectedMaterial línea descartada en la validación, con su posición en la petición.
type RejectedMaterial struct {
	Index  int
	Use    MaterialUse
	Reason string
}

// ConsumptionInput datos de una bitácora de consumo. Date cero = ahora.
type ConsumptionInput struct {
	Description string
	Date        time.Time
	Materials   []MaterialUse
}

// ConsumptionResult resultado de registrar o editar una bitácora.
type ConsumptionResult struct {
	LogID    string
	Accepted []MaterialUse
	Rejected []RejectedMaterial
}

// SplitMaterials separa las líneas válidas de las rechazadas, sin descartar nada en silencio.
func SplitMaterials(materials []MaterialUse) (accepted []MaterialUse, rejected []RejectedMaterial) {
	for i, m := range materials {
		m.MaterialID = strings.TrimSpace(m.MaterialID)
		m.BatchID = strings.TrimSpace(m.BatchID)
		switch {
		case m.MaterialID == "":
			rejected = append(rejected, RejectedMaterial{Index: i, Use: m, Reason: RejectMissingMaterial})
		case m.BatchID == "":
			rejected = append(rejected, RejectedMaterial{Index: i, Use: m, Reason: RejectMissingBatch})
		case !m.Quantity.GreaterThan(decimal.Zero):
			rejected = append(rejected, RejectedMaterial{Index: i, Use: m, Reason: RejectQuantity})
		default:
			accepted = append(accepted, m)
		}
	}
	return accepted, rejected
}

func splitOrFail(materials []MaterialUse) ([]MaterialUse, []RejectedMaterial, error) {
	accepted, rejected := SplitMaterials(materials)
	if len(materials) > 0 && len(accepted) == 0 {
		return nil, rejected, fmt.Errorf("%w: ninguna materia prima válida (%d rechazadas)", domain.ErrInvalidInput, len(rejected))
	}
	return accepted, rejected, nil
}

// RecordConsumptionLog registra una bitácora y descuenta cada línea aceptada de su lote y del
// agregado de la materia prima. Si un descuento no tiene stock suficiente la transacción completa se revierte.
func (s *Service) RecordConsumptionLog(ctx context.Context, in ConsumptionInput) (res *ConsumptionResult, err error) {
	ctx, span := s.startSpan(ctx, "RecordConsumptionLog", attribute.Int("materials", len(in.Materials)))
	defer func() { endSpan(span, err) }()

	accepted, rejected, err := splitOrFail(in.Materials)
	if err != nil {
		return nil, err
	}
	now := s.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	log := &entity.ConsumptionLog{
		ID:          uuid.New().String(),
		Description: strings.TrimSpace(in.Description),
		LoggedAt:    date,
	}
	var events []Event

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		if _, err := lockMaterials(ctx, r.Materials, materialIDs(accepted)...); err != nil {
			return err
		}
		if err := r.ConsumptionLogs.Create(ctx, log); err != nil {
			return err
		}
		events, err = applyConsumption(ctx, r, log.ID, accepted, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return &ConsumptionResult{LogID: log.ID, Accepted: accepted, Rejected: rejected}, nil
}

// UpdateConsumptionLog devuelve al stock todas las líneas anteriores, las elimina, actualiza la
// bitácora y aplica las nuevas líneas. Con materials vacío equivale a un reverso completo.
func (s *Service) UpdateConsumptionLog(ctx context.Context, logID string, in ConsumptionInput) (res *ConsumptionResult, err error) {
	ctx, span := s.startSpan(ctx, "UpdateConsumptionLog",
		attribute.String("log.id", logID), attribute.Int("materials", len(in.Materials)))
	defer func() { endSpan(span, err) }()

	accepted, rejected, err := splitOrFail(in.Materials)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var events []Event

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		log, err := r.ConsumptionLogs.GetByIDForUpdate(ctx, logID)
		if err != nil {
			return err
		}
		if log == nil {
			return fmt.Errorf("%w: bitácora %s", domain.ErrNotFound, logID)
		}
		ids := append(materialIDs(accepted), lineMaterialIDs(log.Lines)...)
		if _, err := lockMaterials(ctx, r.Materials, ids...); err != nil {
			return err
		}
		events, err = reverseConsumption(ctx, r, log, now)
		if err != nil {
			return err
		}
		if err := r.ConsumptionLogs.DeleteLines(ctx, log.ID); err != nil {
			return err
		}
		log.Description = strings.TrimSpace(in.Description)
		if !in.Date.IsZero() {
			log.LoggedAt = in.Date
		}
		log.Lines = nil
		if err := r.ConsumptionLogs.Update(ctx, log); err != nil {
			return err
		}
		applied, err := applyConsumption(ctx, r, log.ID, accepted, now)
		if err != nil {
			return err
		}
		events = append(events, applied...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return &ConsumptionResult{LogID: logID, Accepted: accepted, Rejected: rejected}, nil
}

// DeleteConsumptionLog devuelve al stock cada línea, elimina las líneas y luego la bitácora.
func (s *Service) DeleteConsumptionLog(ctx context.Context, logID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteConsumptionLog", attribute.String("log.id", logID))
	defer func() { endSpan(span, err) }()

	now := s.now()
	var events []Event

	err = s.txRunner.Run(ctx, func(r Repositories) error {
		log, err := r.ConsumptionLogs.GetByIDForUpdate(ctx, logID)
		if err != nil {
			return err
		}
		if log == nil {
			return fmt.Errorf("%w: bitácora %s", domain.ErrNotFound, logID)
		}
		if _, err := lockMaterials(ctx, r.Materials, lineMaterialIDs(log.Lines)...); err != nil {
			return err
		}
		events, err = reverseConsumption(ctx, r, log, now)
		if err != nil {
			return err
		}
		if err := r.ConsumptionLogs.DeleteLines(ctx, log.ID); err != nil {
			return err
		}
		return r.ConsumptionLogs.Delete(ctx, log.ID)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events)
	return nil
}

// GetConsumptionLog devuelve la bitácora con sus líneas o domain.ErrNotFound.
func (s *Service) GetConsumptionLog(ctx context.Context, id string) (*entity.ConsumptionLog, error) {
	log, err := s.read.ConsumptionLogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, domain.ErrNotFound
	}
	return log, nil
}

// ListConsumptionLogs lista bitácoras con los nombres de materias primas consumidas.
func (s *Service) ListConsumptionLogs(ctx context.Context, limit, offset int) ([]repository.ConsumptionLogRow, error) {
	return s.read.ConsumptionLogs.List(ctx, limit, offset)
}

// applyConsumption descuenta cada línea (lote y agregado, ambos con guarda) y la registra.
func applyConsumption(ctx context.Context, r Repositories, logID string, uses []MaterialUse, now time.Time) ([]Event, error) {
	events := make([]Event, 0, len(uses))
	for _, u := range uses {
		batch, err := r.MaterialBatches.GetByID(ctx, u.BatchID)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, u.BatchID)
		}
		if batch.SKUID != u.MaterialID {
			return nil, fmt.Errorf("%w: el lote %s no pertenece a la materia prima %s", domain.ErrInvalidInput, u.BatchID, u.MaterialID)
		}
		if err := r.MaterialBatches.Adjust(ctx, batch.ID, u.Quantity.Neg()); err != nil {
			return nil, err
		}
		if err := r.Materials.AdjustQuantity(ctx, u.MaterialID, u.Quantity.Neg()); err != nil {
			return nil, err
		}
		line := entity.ConsumptionLine{LogID: logID, MaterialID: u.MaterialID, BatchID: u.BatchID, Quantity: u.Quantity}
		if err := r.ConsumptionLogs.AddLine(ctx, line); err != nil {
			return nil, err
		}
		events = append(events, Event{
			Type: EventMaterialConsumed, SourceID: logID, Kind: entity.LedgerKindMaterial,
			SKUID: u.MaterialID, BatchID: u.BatchID, Delta: u.Quantity.Neg(), OccurredAt: now,
		})
	}
	return events, nil
}

// reverseConsumption devuelve al lote y al agregado la cantidad de cada línea de la bitácora.
func reverseConsumption(ctx context.Context, r Repositories, log *entity.ConsumptionLog, now time.Time) ([]Event, error) {
	events := make([]Event, 0, len(log.Lines))
	for _, l := range log.Lines {
		if err := r.MaterialBatches.Adjust(ctx, l.BatchID, l.Quantity); err != nil {
			return nil, err
		}
		if err := r.Materials.AdjustQuantity(ctx, l.MaterialID, l.Quantity); err != nil {
			return nil, err
		}
		events = append(events, Event{
			Type: EventConsumptionReversed, SourceID: log.ID, Kind: entity.LedgerKindMaterial,
			SKUID: l.MaterialID, BatchID: l.BatchID, Delta: l.Quantity, OccurredAt: now,
		})
	}
	return events, nil
}

// lockMaterials bloquea las materias primas en orden de id. Un id inexistente devuelve domain.ErrNotFound.
func lockMaterials(ctx context.Context, repo repository.RawMaterialRepository, ids ...string) (map[string]*entity.RawMaterial, error) {
	out := make(map[string]*entity.RawMaterial, len(ids))
	for _, id := range sortedUnique(ids...) {
		mat, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if mat == nil {
			return nil, fmt.Errorf("%w: materia prima %s", domain.ErrNotFound, id)
		}
		out[id] = mat
	}
	return out, nil
}

func materialIDs(uses []MaterialUse) []string {
	ids := make([]string, 0, len(uses))
	for _, u := range uses {
		ids = append(ids, u.MaterialID)
	}
	return ids
}

func lineMaterialIDs(lines []entity.ConsumptionLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}
	return ids
}
