package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*BatchRepo)(nil)

// batchTable describe la tabla física de un tipo de lote.
type batchTable struct {
	kind      entity.LedgerKind
	table     string
	skuCol    string
	sourceCol string
}

var (
	itemBatches     = batchTable{kind: entity.LedgerKindItem, table: "item_batches", skuCol: "item_id", sourceCol: "production_id"}
	materialBatches = batchTable{kind: entity.LedgerKindMaterial, table: "material_batches", skuCol: "material_id", sourceCol: "delivery_id"}
)

// BatchRepo implementación de LedgerRepository para item_batches o material_batches.
type BatchRepo struct {
	q Querier
	t batchTable
}

// NewItemBatchRepository lotes de producción (item_batches).
func NewItemBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q, t: itemBatches}
}

// NewMaterialBatchRepository lotes de entregas (material_batches).
func NewMaterialBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q, t: materialBatches}
}

func (r *BatchRepo) Kind() entity.LedgerKind { return r.t.kind }

func (r *BatchRepo) selectSQL() string {
	return `SELECT id, ` + r.t.skuCol + `, ` + r.t.sourceCol + `, quantity, last_updated FROM ` + r.t.table
}

func (r *BatchRepo) scan(row pgx.Row) (*entity.LedgerEntry, error) {
	e := entity.LedgerEntry{Kind: r.t.kind}
	if err := row.Scan(&e.ID, &e.SKUID, &e.SourceID, &e.Quantity, &e.LastUpdated); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BatchRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO `+r.t.table+` (id, `+r.t.skuCol+`, `+r.t.sourceCol+`, quantity, last_updated) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.SKUID, e.SourceID, e.Quantity, e.LastUpdated,
	)
	if err != nil {
		return mapWriteErr("insert "+r.t.table, err)
	}
	return nil
}

func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	return r.getOne(ctx, r.selectSQL()+` WHERE id = $1`, id)
}

// GetBySource busca el lote que pertenece a una producción o entrega.
func (r *BatchRepo) GetBySource(ctx context.Context, sourceID string) (*entity.LedgerEntry, error) {
	return r.getOne(ctx, r.selectSQL()+` WHERE `+r.t.sourceCol+` = $1`, sourceID)
}

func (r *BatchRepo) getOne(ctx context.Context, query, arg string) (*entity.LedgerEntry, error) {
	if !validID(arg) {
		return nil, nil
	}
	e, err := r.scan(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", r.t.table, err)
	}
	return e, nil
}

// Adjust aplica delta al lote con la guarda quantity + delta >= 0.
func (r *BatchRepo) Adjust(ctx context.Context, id string, delta decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE `+r.t.table+` SET quantity = quantity + $2, last_updated = now() WHERE id = $1 AND quantity + $2 >= 0`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust %s: %w", r.t.table, err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	return guardMiss(ctx, r.q, r.t.table, id)
}

func (r *BatchRepo) Reassign(ctx context.Context, id, skuID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE `+r.t.table+` SET `+r.t.skuCol+` = $2, last_updated = now() WHERE id = $1`, id, skuID)
	if err != nil {
		return mapWriteErr("reassign "+r.t.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el lote. Con consumos que lo referencian devuelve domain.ErrConflict.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM `+r.t.table+` WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr("delete "+r.t.table, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActiveBySKU lotes con existencias de un SKU, más antiguos primero.
func (r *BatchRepo) ListActiveBySKU(ctx context.Context, skuID string) ([]*entity.LedgerEntry, error) {
	return r.list(ctx, r.selectSQL()+` WHERE `+r.t.skuCol+` = $1 AND quantity <> 0 ORDER BY last_updated, id`, skuID)
}

func (r *BatchRepo) ListActive(ctx context.Context) ([]*entity.LedgerEntry, error) {
	return r.list(ctx, r.selectSQL()+` WHERE quantity <> 0 ORDER BY `+r.t.skuCol+`, last_updated, id`)
}

func (r *BatchRepo) list(ctx context.Context, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.t.table, err)
	}
	defer rows.Close()
	var out []*entity.LedgerEntry
	for rows.Next() {
		e, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.table, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumBySKU suma de lotes agrupada por SKU (incluye lotes en cero).
func (r *BatchRepo) SumBySKU(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+r.t.skuCol+`, COALESCE(SUM(quantity), 0) FROM `+r.t.table+` GROUP BY `+r.t.skuCol)
	if err != nil {
		return nil, fmt.Errorf("sum %s: %w", r.t.table, err)
	}
	defer rows.Close()
	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var sku string
		var total decimal.Decimal
		if err := rows.Scan(&sku, &total); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.table, err)
		}
		out[sku] = total
	}
	return out, rows.Err()
}
