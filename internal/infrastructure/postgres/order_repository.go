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

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, customer_name, date, location, mode_of_payment, payment_status, status, price, last_update_date`

// OrderRepo persistencia de pedidos y order_products.
type OrderRepo struct {
	q Querier
}

func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// productArrays separa las líneas en arreglos paralelos para unnest.
func productArrays(o *entity.Order) (itemIDs, quantities, batchIDs []string) {
	itemIDs = make([]string, 0, len(o.Products))
	quantities = make([]string, 0, len(o.Products))
	batchIDs = make([]string, 0, len(o.Products))
	for _, p := range o.Products {
		itemIDs = append(itemIDs, p.ItemID)
		quantities = append(quantities, p.Quantity.String())
		batchIDs = append(batchIDs, p.BatchID)
	}
	return itemIDs, quantities, batchIDs
}

// Create inserta el pedido y sus líneas en una sola sentencia.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	itemIDs, quantities, batchIDs := productArrays(o)
	_, err := r.q.Exec(ctx, `
		WITH ord AS (
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		)
		INSERT INTO order_products (order_id, item_id, quantity, batch_id)
		SELECT ord.id, p.item_id::uuid, p.quantity::numeric, NULLIF(p.batch_id, '')::uuid
		FROM ord, unnest($10::text[], $11::text[], $12::text[]) AS p(item_id, quantity, batch_id)`,
		o.ID, o.CustomerName, o.Date, o.Location, o.ModeOfPayment, o.PaymentStatus, o.Status, o.Price, o.LastUpdateDate,
		itemIDs, quantities, batchIDs,
	)
	if err != nil {
		return mapWriteErr("insert order", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	if !validID(id) {
		return nil, nil
	}
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.attachProducts(ctx, []*entity.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// Update reemplaza cabecera y líneas del pedido en una sola sentencia.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	itemIDs, quantities, batchIDs := productArrays(o)
	var found bool
	err := r.q.QueryRow(ctx, `
		WITH ord AS (
			UPDATE orders SET customer_name = $2, date = $3, location = $4, mode_of_payment = $5,
			       payment_status = $6, status = $7, price = $8, last_update_date = $9
			WHERE id = $1
			RETURNING id
		), gone AS (
			DELETE FROM order_products WHERE order_id IN (SELECT id FROM ord)
		), added AS (
			INSERT INTO order_products (order_id, item_id, quantity, batch_id)
			SELECT ord.id, p.item_id::uuid, p.quantity::numeric, NULLIF(p.batch_id, '')::uuid
			FROM ord, unnest($10::text[], $11::text[], $12::text[]) AS p(item_id, quantity, batch_id)
		)
		SELECT EXISTS (SELECT 1 FROM ord)`,
		o.ID, o.CustomerName, o.Date, o.Location, o.ModeOfPayment, o.PaymentStatus, o.Status, o.Price, o.LastUpdateDate,
		itemIDs, quantities, batchIDs,
	).Scan(&found)
	if err != nil {
		return mapWriteErr("update order", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET status = $2, last_update_date = now() WHERE id = $1`, id, status)
	if err != nil {
		return mapWriteErr("update order status", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapDeleteErr("delete order", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE $1 = '' OR status = $1
		ORDER BY date DESC, id
		LIMIT $2 OFFSET $3`, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if err := r.attachProducts(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachProducts carga las líneas de todos los pedidos con una sola consulta.
func (r *OrderRepo) attachProducts(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT op.order_id, op.item_id, i.name, op.quantity, COALESCE(op.batch_id::text, '')
		FROM order_products op
		JOIN items i ON i.id = op.item_id
		WHERE op.order_id::text = ANY($1::text[])
		ORDER BY op.id`, ids)
	if err != nil {
		return fmt.Errorf("list order products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.OrderProduct
		if err := rows.Scan(&p.OrderID, &p.ItemID, &p.ItemName, &p.Quantity, &p.BatchID); err != nil {
			return fmt.Errorf("scan order product: %w", err)
		}
		if o := byID[p.OrderID]; o != nil {
			o.Products = append(o.Products, p)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	if err := row.Scan(
		&o.ID, &o.CustomerName, &o.Date, &o.Location, &o.ModeOfPayment, &o.PaymentStatus,
		&o.Status, &o.Price, &o.LastUpdateDate,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
