package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// MaterialUseCase casos de uso CRUD para materias primas.
// Quantity y UnitCost solo cambian vía entregas y bitácoras de consumo.
type MaterialUseCase struct {
	repo       repository.RawMaterialRepository
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.RawMaterialRepository, categories repository.CategoryRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, categories: categories, now: time.Now}
}

// Create crea una materia prima con stock y costo en 0.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	if err := checkCategory(ctx, uc.categories, in.CategoryID, entity.CategoryTypeRawMaterial); err != nil {
		return nil, err
	}
	now := uc.now()
	mat := &entity.RawMaterial{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(in.Name),
		CategoryID: in.CategoryID,
		Quantity:   decimal.Zero,
		UnitCost:   decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, mat); err != nil {
		return nil, err
	}
	return toMaterialResponse(mat), nil
}

// GetByID obtiene una materia prima; (nil, nil) si no existe.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	mat, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, nil
	}
	return toMaterialResponse(mat), nil
}

// Update actualiza nombre y categoría.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	mat, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, nil
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: name no puede quedar vacío", domain.ErrInvalidInput)
		}
		mat.Name = strings.TrimSpace(*in.Name)
	}
	if in.CategoryID != nil {
		if err := checkCategory(ctx, uc.categories, *in.CategoryID, entity.CategoryTypeRawMaterial); err != nil {
			return nil, err
		}
		mat.CategoryID = *in.CategoryID
	}
	mat.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, mat); err != nil {
		return nil, err
	}
	return toMaterialResponse(mat), nil
}

// List lista materias primas con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, limit, offset int) (*dto.MaterialListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una materia prima sin entregas ni consumos.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func toMaterialResponse(m *entity.RawMaterial) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:         m.ID,
		Name:       m.Name,
		CategoryID: m.CategoryID,
		Quantity:   m.Quantity,
		UnitCost:   m.UnitCost,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
