package ledger

import (
	"context"

	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// Repositories agrupa los repositorios que participan en una mutación del ledger.
// Dentro de TxRunner.Run todos están atados a la misma transacción.
type Repositories struct {
	Items           repository.ItemRepository
	Materials       repository.RawMaterialRepository
	ItemBatches     repository.LedgerRepository
	MaterialBatches repository.LedgerRepository
	Productions     repository.ProductionRepository
	Deliveries      repository.SupplyDeliveryRepository
	ConsumptionLogs repository.ConsumptionLogRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD: Commit si fn devuelve nil, Rollback en cualquier otro caso.
// Es la única unidad de trabajo del ledger.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}

// EventPublisher publica eventos de inventario una vez confirmada la transacción.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
