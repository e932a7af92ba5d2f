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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo persistencia de proveedores y de la tabla supplier_materials.
// Create y Update escriben cabecera y vínculos en una sola sentencia (CTE).
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `
		WITH sup AS (
			INSERT INTO suppliers (id, name, contact, address, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		)
		INSERT INTO supplier_materials (supplier_id, material_id)
		SELECT sup.id, m::uuid FROM sup, unnest($7::text[]) AS m`,
		s.ID, s.Name, s.Contact, s.Address, s.CreatedAt, s.UpdatedAt, materialIDs(s),
	)
	if err != nil {
		return mapWriteErr("insert supplier", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	if !validID(id) {
		return nil, nil
	}
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `
		SELECT s.id, s.name, s.contact, s.address, s.created_at, s.updated_at,
		       COALESCE(array_agg(sm.material_id::text ORDER BY sm.material_id) FILTER (WHERE sm.material_id IS NOT NULL), '{}')
		FROM suppliers s
		LEFT JOIN supplier_materials sm ON sm.supplier_id = s.id
		WHERE s.id = $1
		GROUP BY s.id`, id,
	).Scan(&s.ID, &s.Name, &s.Contact, &s.Address, &s.CreatedAt, &s.UpdatedAt, &s.MaterialIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// Update reemplaza datos y vínculos en una sola sentencia: borra los vínculos que ya no están y agrega los nuevos.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	var found bool
	err := r.q.QueryRow(ctx, `
		WITH sup AS (
			UPDATE suppliers SET name = $2, contact = $3, address = $4, updated_at = $5
			WHERE id = $1
			RETURNING id
		), gone AS (
			DELETE FROM supplier_materials
			WHERE supplier_id IN (SELECT id FROM sup) AND material_id::text <> ALL($6::text[])
		), added AS (
			INSERT INTO supplier_materials (supplier_id, material_id)
			SELECT sup.id, m::uuid FROM sup, unnest($6::text[]) AS m
			ON CONFLICT DO NOTHING
		)
		SELECT EXISTS (SELECT 1 FROM sup)`,
		s.ID, s.Name, s.Contact, s.Address, s.UpdatedAt, materialIDs(s),
	).Scan(&found)
	if err != nil {
		return mapWriteErr("update supplier", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el proveedor. Con entregas registradas devuelve domain.ErrConflict.
func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr("delete supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context) ([]repository.SupplierRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT s.id, s.name, s.contact, s.address, s.created_at, s.updated_at,
		       COALESCE(array_agg(sm.material_id::text ORDER BY m.name) FILTER (WHERE m.id IS NOT NULL), '{}'),
		       COALESCE(array_agg(m.name ORDER BY m.name) FILTER (WHERE m.id IS NOT NULL), '{}')
		FROM suppliers s
		LEFT JOIN supplier_materials sm ON sm.supplier_id = s.id
		LEFT JOIN raw_materials m ON m.id = sm.material_id
		GROUP BY s.id
		ORDER BY s.name, s.id`)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []repository.SupplierRow
	for rows.Next() {
		var row repository.SupplierRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Contact, &row.Address, &row.CreatedAt, &row.UpdatedAt,
			&row.MaterialIDs, &row.MaterialNames,
		); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

func (r *SupplierRepo) ListMaterials(ctx context.Context, supplierID string) ([]*entity.RawMaterial, error) {
	rows, err := r.q.Query(ctx, `
		SELECT m.id, m.name, COALESCE(m.category_id::text, ''), m.quantity, m.unit_cost, m.created_at, m.updated_at
		FROM supplier_materials sm
		JOIN raw_materials m ON m.id = sm.material_id
		WHERE sm.supplier_id = $1
		ORDER BY m.name, m.id`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("list supplier materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.RawMaterial
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func materialIDs(s *entity.Supplier) []string {
	if s.MaterialIDs == nil {
		return []string{}
	}
	return s.MaterialIDs
}
