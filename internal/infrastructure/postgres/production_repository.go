package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

var _ repository.ProductionRepository = (*ProductionRepo)(nil)

// ProductionRepo persistencia de corridas de producción.
type ProductionRepo struct {
	q Querier
}

func NewProductionRepository(q Querier) *ProductionRepo {
	return &ProductionRepo{q: q}
}

func (r *ProductionRepo) Create(ctx context.Context, p *entity.Production) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO productions (id, item_id, quantity, staff_name, produced_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.ItemID, p.Quantity, p.StaffName, p.ProducedAt,
	)
	if err != nil {
		return mapWriteErr("insert production", err)
	}
	return nil
}

func (r *ProductionRepo) GetByID(ctx context.Context, id string) (*entity.Production, error) {
	return r.get(ctx, `SELECT id, item_id, quantity, staff_name, produced_at FROM productions WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la fila de la producción hasta el fin de la transacción.
func (r *ProductionRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Production, error) {
	return r.get(ctx, `SELECT id, item_id, quantity, staff_name, produced_at FROM productions WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductionRepo) get(ctx context.Context, query, id string) (*entity.Production, error) {
	if !validID(id) {
		return nil, nil
	}
	var p entity.Production
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.ItemID, &p.Quantity, &p.StaffName, &p.ProducedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production: %w", err)
	}
	return &p, nil
}

func (r *ProductionRepo) Update(ctx context.Context, p *entity.Production) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE productions SET item_id = $2, quantity = $3, staff_name = $4 WHERE id = $1`,
		p.ID, p.ItemID, p.Quantity, p.StaffName,
	)
	if err != nil {
		return mapWriteErr("update production", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductionRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM productions WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr("delete production", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List producciones más recientes primero, con el nombre del item y lo que queda del lote.
func (r *ProductionRepo) List(ctx context.Context, limit, offset int) ([]repository.ProductionRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.item_id, p.quantity, p.staff_name, p.produced_at,
		       i.name, COALESCE(b.id::text, ''), COALESCE(b.quantity, 0)
		FROM productions p
		JOIN items i ON i.id = p.item_id
		LEFT JOIN item_batches b ON b.production_id = p.id
		ORDER BY p.produced_at DESC, p.id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list productions: %w", err)
	}
	defer rows.Close()
	var list []repository.ProductionRow
	for rows.Next() {
		var row repository.ProductionRow
		if err := rows.Scan(
			&row.ID, &row.ItemID, &row.Quantity, &row.StaffName, &row.ProducedAt,
			&row.ItemName, &row.BatchID, &row.Remaining,
		); err != nil {
			return nil, fmt.Errorf("scan production: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
