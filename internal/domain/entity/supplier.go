package entity

import "time"

// Supplier proveedor de materias primas.
type Supplier struct {
	ID          string
	Name        string
	Contact     string
	Address     string
	MaterialIDs []string // materias primas que suministra (supplier_materials)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
