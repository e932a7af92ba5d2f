package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// ProductionRow fila de listado: producción con nombre del item y su lote.
type ProductionRow struct {
	entity.Production
	ItemName  string
	BatchID   string
	Remaining decimal.Decimal
}

// ProductionRepository define el puerto de persistencia para corridas de producción.
type ProductionRepository interface {
	Create(ctx context.Context, p *entity.Production) error
	GetByID(ctx context.Context, id string) (*entity.Production, error)
	// GetByIDForUpdate bloquea la fila hasta el fin de la transacción.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Production, error)
	Update(ctx context.Context, p *entity.Production) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]ProductionRow, error)
}
