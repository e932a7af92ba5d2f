package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes de ventas y existencias.
type ReportRepo struct {
	q Querier
}

func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// stockQuery une items y materias primas en un mismo formato de fila.
const stockQuery = `
	SELECT 'item' AS kind, i.id::text, i.name, COALESCE(c.name, ''), i.quantity, i.price,
	       (SELECT COUNT(*) FROM item_batches b WHERE b.item_id = i.id AND b.quantity <> 0)
	FROM items i LEFT JOIN categories c ON c.id = i.category_id
	UNION ALL
	SELECT 'material', m.id::text, m.name, COALESCE(c.name, ''), m.quantity, m.unit_cost,
	       (SELECT COUNT(*) FROM material_batches b WHERE b.material_id = m.id AND b.quantity <> 0)
	FROM raw_materials m LEFT JOIN categories c ON c.id = m.category_id`

// CountDeliveredByDay pedidos entregados por día calendario (zona de la sesión) en [from, to).
func (r *ReportRepo) CountDeliveredByDay(ctx context.Context, from, to time.Time) ([]repository.DailyCount, error) {
	rows, err := r.q.Query(ctx, `
		SELECT date_trunc('day', date AT TIME ZONE $3) AS day, COUNT(*)
		FROM orders
		WHERE status = $4 AND date >= $1 AND date < $2
		GROUP BY day
		ORDER BY day`, from, to, from.Location().String(), entity.OrderStatusDelivered)
	if err != nil {
		return nil, fmt.Errorf("count delivered orders: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.DailyCount, error) {
		var d repository.DailyCount
		var day time.Time
		if err := row.Scan(&day, &d.Count); err != nil {
			return d, err
		}
		// day viene sin zona: se reinterpreta en la zona del rango.
		d.Day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, from.Location())
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan delivered orders: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) CountOrdersByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan order status: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// DeliveredRevenue suma el precio de los pedidos entregados en [from, to).
func (r *ReportRepo) DeliveredRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(price), 0) FROM orders
		WHERE status = $3 AND date >= $1 AND date < $2`, from, to, entity.OrderStatusDelivered,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("delivered revenue: %w", err)
	}
	return total, nil
}

func (r *ReportRepo) LowStock(ctx context.Context, threshold decimal.Decimal, limit int) ([]repository.StockRow, error) {
	return r.stock(ctx, `SELECT * FROM (`+stockQuery+`) s WHERE s.quantity <= $1 ORDER BY s.quantity, s.name LIMIT $2`, threshold, limit)
}

// StockSnapshot existencias actuales: primero items y luego materias primas, por nombre.
func (r *ReportRepo) StockSnapshot(ctx context.Context) ([]repository.StockRow, error) {
	return r.stock(ctx, `SELECT * FROM (`+stockQuery+`) s ORDER BY s.kind, s.name`)
}

func (r *ReportRepo) stock(ctx context.Context, query string, args ...any) ([]repository.StockRow, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("stock query: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.StockRow, error) {
		var s repository.StockRow
		err := row.Scan(&s.Kind, &s.ID, &s.Name, &s.CategoryName, &s.Quantity, &s.UnitValue, &s.ActiveLots)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan stock row: %w", err)
	}
	return out, nil
}
