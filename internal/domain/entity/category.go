package entity

import "time"

// Tipos de categoría.
const (
	CategoryTypeInventory   = "Inventory"
	CategoryTypeRawMaterial = "RawMaterial"
)

// Category agrupa items (Inventory) o materias primas (RawMaterial).
type Category struct {
	ID        string
	Name      string
	Type      string
	CreatedAt time.Time
}

// ValidCategoryType indica si t es un tipo de categoría soportado.
func ValidCategoryType(t string) bool {
	return t == CategoryTypeInventory || t == CategoryTypeRawMaterial
}
