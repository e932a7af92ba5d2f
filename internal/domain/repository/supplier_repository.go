package repository

import (
	"context"

	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

// SupplierRow proveedor con los nombres de las materias primas que suministra.
type SupplierRow struct {
	entity.Supplier
	MaterialNames []string
}

// SupplierRepository define el puerto de persistencia para proveedores y sus materias primas.
type SupplierRepository interface {
	// Create inserta el proveedor y sus vínculos supplier_materials.
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	// Update reemplaza datos y vínculos.
	Update(ctx context.Context, s *entity.Supplier) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]SupplierRow, error)
	ListMaterials(ctx context.Context, supplierID string) ([]*entity.RawMaterial, error)
}
