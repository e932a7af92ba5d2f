package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para items (producto terminado).
// GetByID y GetForUpdate devuelven (nil, nil) si el item no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	// GetForUpdate bloquea la fila del item (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
	// Update modifica datos descriptivos; nunca la cantidad.
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id string) error
	// AdjustQuantity suma delta al agregado sin dejarlo negativo.
	// Devuelve domain.ErrNotFound o domain.ErrInsufficientStock si no se afecta ninguna fila.
	AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) error
}
