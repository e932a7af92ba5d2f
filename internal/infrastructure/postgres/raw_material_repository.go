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

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

const materialColumns = `id, name, COALESCE(category_id::text, ''), quantity, unit_cost, created_at, updated_at`

// RawMaterialRepo implementación del puerto RawMaterialRepository sobre PostgreSQL.
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

func scanMaterial(row pgx.Row) (*entity.RawMaterial, error) {
	var m entity.RawMaterial
	if err := row.Scan(&m.ID, &m.Name, &m.CategoryID, &m.Quantity, &m.UnitCost, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RawMaterialRepo) Create(ctx context.Context, m *entity.RawMaterial) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO raw_materials (id, name, category_id, quantity, unit_cost, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7)`,
		m.ID, m.Name, m.CategoryID, m.Quantity, m.UnitCost, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert raw material", err)
	}
	return nil
}

func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	return r.get(ctx, `SELECT `+materialColumns+` FROM raw_materials WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la materia prima (SELECT FOR UPDATE).
func (r *RawMaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error) {
	return r.get(ctx, `SELECT `+materialColumns+` FROM raw_materials WHERE id = $1 FOR UPDATE`, id)
}

func (r *RawMaterialRepo) get(ctx context.Context, query, id string) (*entity.RawMaterial, error) {
	if !validID(id) {
		return nil, nil
	}
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	return m, nil
}

func (r *RawMaterialRepo) List(ctx context.Context, limit, offset int) ([]*entity.RawMaterial, error) {
	rows, err := r.q.Query(ctx, `SELECT `+materialColumns+` FROM raw_materials ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.RawMaterial
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *RawMaterialRepo) Update(ctx context.Context, m *entity.RawMaterial) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE raw_materials SET name = $2, category_id = NULLIF($3, '')::uuid, updated_at = $4
		WHERE id = $1`, m.ID, m.Name, m.CategoryID, m.UpdatedAt)
	if err != nil {
		return mapWriteErr("update raw material", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RawMaterialRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM raw_materials WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr("delete raw material", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustQuantity suma delta con la guarda quantity + delta >= 0.
func (r *RawMaterialRepo) AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE raw_materials SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1 AND quantity + $2 >= 0`, id, delta)
	if err != nil {
		return fmt.Errorf("adjust raw material quantity: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	return guardMiss(ctx, r.q, "raw_materials", id)
}

// UpdateUnitCost actualiza solo el costo promedio (usado por el ledger al registrar entregas).
func (r *RawMaterialRepo) UpdateUnitCost(ctx context.Context, id string, cost decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE raw_materials SET unit_cost = $2, updated_at = now() WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("update raw material cost: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
