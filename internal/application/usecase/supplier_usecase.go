package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gmz-api/internal/application/dto"
	"github.com/jhoicas/gmz-api/internal/domain"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
	"github.com/jhoicas/gmz-api/internal/domain/repository"
)

// SupplierUseCase CRUD de proveedores y sus materias primas.
type SupplierUseCase struct {
	repo      repository.SupplierRepository
	materials repository.RawMaterialRepository
	now       func() time.Time
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, materials repository.RawMaterialRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, materials: materials, now: time.Now}
}

// Create registra un proveedor con los vínculos a sus materias primas.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	ids, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	s := &entity.Supplier{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Contact:     in.Contact,
		Address:     in.Address,
		MaterialIDs: ids,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s, nil), nil
}

// GetByID obtiene un proveedor; (nil, nil) si no existe.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	return toSupplierResponse(s, nil), nil
}

// Update reemplaza datos y vínculos del proveedor.
func (uc *SupplierUseCase) Update(ctx context.Context, id string, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}
	ids, err := uc.validate(ctx, in)
	if err != nil {
		return nil, err
	}
	s.Name = strings.TrimSpace(in.Name)
	s.Contact = in.Contact
	s.Address = in.Address
	s.MaterialIDs = ids
	s.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s, nil), nil
}

// Delete elimina un proveedor sin entregas registradas.
func (uc *SupplierUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// List lista proveedores con los nombres de sus materias primas.
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	rows, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toSupplierResponse(&rows[i].Supplier, rows[i].MaterialNames))
	}
	return out, nil
}

// ListMaterials materias primas que suministra el proveedor. ErrNotFound si no existe.
func (uc *SupplierUseCase) ListMaterials(ctx context.Context, supplierID string) ([]dto.MaterialResponse, error) {
	s, err := uc.repo.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	mats, err := uc.repo.ListMaterials(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialResponse, 0, len(mats))
	for _, m := range mats {
		out = append(out, *toMaterialResponse(m))
	}
	return out, nil
}

// validate normaliza los ids de materias primas (sin vacíos ni repetidos) y verifica que existan.
func (uc *SupplierUseCase) validate(ctx context.Context, in dto.SupplierRequest) ([]string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(in.MaterialIDs))
	ids := make([]string, 0, len(in.MaterialIDs))
	for _, id := range in.MaterialIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m, err := uc.materials.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: materia prima %s no existe", domain.ErrInvalidInput, id)
		}
	}
	return ids, nil
}

func toSupplierResponse(s *entity.Supplier, names []string) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		Contact:       s.Contact,
		Address:       s.Address,
		MaterialIDs:   s.MaterialIDs,
		MaterialNames: names,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
