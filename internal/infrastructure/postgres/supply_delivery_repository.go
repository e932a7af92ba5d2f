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

var _ repository.SupplyDeliveryRepository = (*SupplyDeliveryRepo)(nil)

// SupplyDeliveryRepo persistencia de entregas de proveedores.
type SupplyDeliveryRepo struct {
	q Querier
}

func NewSupplyDeliveryRepository(q Querier) *SupplyDeliveryRepo {
	return &SupplyDeliveryRepo{q: q}
}

func (r *SupplyDeliveryRepo) Create(ctx context.Context, d *entity.SupplyDelivery) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO supply_deliveries (id, supplier_id, material_id, quantity, cost, delivered_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.SupplierID, d.MaterialID, d.Quantity, d.Cost, d.DeliveredAt,
	)
	if err != nil {
		return mapWriteErr("insert supply delivery", err)
	}
	return nil
}

const deliveryColumns = `id, supplier_id, material_id, quantity, cost, delivered_at`

func (r *SupplyDeliveryRepo) GetByID(ctx context.Context, id string) (*entity.SupplyDelivery, error) {
	return r.get(ctx, `SELECT `+deliveryColumns+` FROM supply_deliveries WHERE id = $1`, id)
}

// GetByIDForUpdate bloquea la fila de la entrega (SELECT FOR UPDATE).
func (r *SupplyDeliveryRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.SupplyDelivery, error) {
	return r.get(ctx, `SELECT `+deliveryColumns+` FROM supply_deliveries WHERE id = $1 FOR UPDATE`, id)
}

func (r *SupplyDeliveryRepo) get(ctx context.Context, query, id string) (*entity.SupplyDelivery, error) {
	if !validID(id) {
		return nil, nil
	}
	var d entity.SupplyDelivery
	err := r.q.QueryRow(ctx, query, id).
		Scan(&d.ID, &d.SupplierID, &d.MaterialID, &d.Quantity, &d.Cost, &d.DeliveredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply delivery: %w", err)
	}
	return &d, nil
}

// Update modifica proveedor, cantidad, costo y fecha. La materia prima no cambia.
func (r *SupplyDeliveryRepo) Update(ctx context.Context, d *entity.SupplyDelivery) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE supply_deliveries SET supplier_id = $2, quantity = $3, cost = $4, delivered_at = $5 WHERE id = $1`,
		d.ID, d.SupplierID, d.Quantity, d.Cost, d.DeliveredAt,
	)
	if err != nil {
		return mapWriteErr("update supply delivery", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplyDeliveryRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM supply_deliveries WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr("delete supply delivery", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplyDeliveryRepo) List(ctx context.Context, limit, offset int) ([]repository.DeliveryRow, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.supplier_id, d.material_id, d.quantity, d.cost, d.delivered_at,
		       s.name, m.name, COALESCE(b.id::text, ''), COALESCE(b.quantity, 0)
		FROM supply_deliveries d
		JOIN suppliers s ON s.id = d.supplier_id
		JOIN raw_materials m ON m.id = d.material_id
		LEFT JOIN material_batches b ON b.delivery_id = d.id
		ORDER BY d.delivered_at DESC, d.id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list supply deliveries: %w", err)
	}
	defer rows.Close()
	var list []repository.DeliveryRow
	for rows.Next() {
		var row repository.DeliveryRow
		if err := rows.Scan(
			&row.ID, &row.SupplierID, &row.MaterialID, &row.Quantity, &row.Cost, &row.DeliveredAt,
			&row.SupplierName, &row.MaterialName, &row.BatchID, &row.Remaining,
		); err != nil {
			return nil, fmt.Errorf("scan supply delivery: %w", err)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}
