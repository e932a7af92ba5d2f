package repository

import (
	"context"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// ConsumptionLogRow fila de listado con los nombres de materias primas de cada línea.
type ConsumptionLogRow struct {
	entity.ConsumptionLog
	MaterialNames []string
}

// ConsumptionLogRepository define el puerto de persistencia para bitácoras de consumo y sus líneas.
type ConsumptionLogRepository interface {
	Create(ctx context.Context, log *entity.ConsumptionLog) error
	// GetByID devuelve la bitácora con sus líneas, o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.ConsumptionLog, error)
	// GetByIDForUpdate bloquea la cabecera y después lee las líneas.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.ConsumptionLog, error)
	Update(ctx context.Context, log *entity.ConsumptionLog) error
	Delete(ctx context.Context, id string) error
	AddLine(ctx context.Context, line entity.ConsumptionLine) error
	DeleteLines(ctx context.Context, logID string) error
	List(ctx context.Context, limit, offset int) ([]ConsumptionLogRow, error)
}
