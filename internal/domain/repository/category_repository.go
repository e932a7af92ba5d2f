package repository

import (
	"context"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para categorías.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	// List filtra por tipo; categoryType vacío lista todas.
	List(ctx context.Context, categoryType string) ([]*entity.Category, error)
}
