package repository

import (
	"context"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus productos.
type OrderRepository interface {
	// Create inserta el pedido y sus líneas (misma transacción).
	Create(ctx context.Context, o *entity.Order) error
	// GetByID devuelve el pedido con sus líneas, o (nil, nil).
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// Update reemplaza los datos y las líneas del pedido.
	Update(ctx context.Context, o *entity.Order) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	// List filtra por estado (vacío = todos), más recientes primero.
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Order, error)
}
