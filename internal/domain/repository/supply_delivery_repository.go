package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// DeliveryRow fila de listado de entregas con nombres de proveedor y materia prima.
type DeliveryRow struct {
	entity.SupplyDelivery
	SupplierName string
	MaterialName string
	BatchID      string
	Remaining    decimal.Decimal
}

// SupplyDeliveryRepository define el puerto de persistencia para entregas de proveedores.
type SupplyDeliveryRepository interface {
	Create(ctx context.Context, d *entity.SupplyDelivery) error
	GetByID(ctx context.Context, id string) (*entity.SupplyDelivery, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.SupplyDelivery, error)
	Update(ctx context.Context, d *entity.SupplyDelivery) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]DeliveryRow, error)
}
