package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// CategoryUseCase alta y listado de categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría. Un nombre repetido dentro del mismo tipo devuelve ErrDuplicate (índice único).
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	if !entity.ValidCategoryType(in.Type) {
		return nil, fmt.Errorf("%w: type debe ser %s o %s", domain.ErrInvalidInput, entity.CategoryTypeInventory, entity.CategoryTypeRawMaterial)
	}
	c := &entity.Category{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      in.Type,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// List lista categorías; categoryType vacío devuelve todas.
func (uc *CategoryUseCase) List(ctx context.Context, categoryType string) ([]dto.CategoryResponse, error) {
	if categoryType != "" && !entity.ValidCategoryType(categoryType) {
		return nil, fmt.Errorf("%w: type desconocido %q", domain.ErrInvalidInput, categoryType)
	}
	list, err := uc.repo.List(ctx, categoryType)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCategoryResponse(c))
	}
	return out, nil
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Type: c.Type, CreatedAt: c.CreatedAt}
}
