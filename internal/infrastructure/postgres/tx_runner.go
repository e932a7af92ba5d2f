package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/domain"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Fallos de Begin/Commit y errores de sentencia sin clasificar salen envueltos en domain.ErrStore;
// un id que la columna UUID rechaza (22P02) es un registro que no existe.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStore, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Repositories(tx)); err != nil {
		if isDomainErr(err) {
			return err
		}
		if isInvalidText(err) {
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit transaction: %w", domain.ErrStore, err)
	}
	return nil
}

// Repositories arma los repositorios del ledger sobre q (pool para lecturas, tx dentro de Run).
func Repositories(q Querier) ledger.Repositories {
	return ledger.Repositories{
		Items:           NewItemRepository(q),
		Materials:       NewRawMaterialRepository(q),
		ItemBatches:     NewItemBatchRepository(q),
		MaterialBatches: NewMaterialBatchRepository(q),
		Productions:     NewProductionRepository(q),
		Deliveries:      NewSupplyDeliveryRepository(q),
		ConsumptionLogs: NewConsumptionLogRepository(q),
	}
}
