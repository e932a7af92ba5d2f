package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// RawMaterialRepository define el puerto de persistencia para materias primas.
type RawMaterialRepository interface {
	Create(ctx context.Context, mat *entity.RawMaterial) error
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
	GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error)
	List(ctx context.Context, limit, offset int) ([]*entity.RawMaterial, error)
	Update(ctx context.Context, mat *entity.RawMaterial) error
	Delete(ctx context.Context, id string) error
	AdjustQuantity(ctx context.Context, id string, delta decimal.Decimal) error
	UpdateUnitCost(ctx context.Context, id string, cost decimal.Decimal) error
}
