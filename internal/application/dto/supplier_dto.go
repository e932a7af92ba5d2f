package dto

import "time"

// SupplierRequest entrada para crear o reemplazar un proveedor.
type SupplierRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Contact     string   `json:"contact"`
	Address     string   `json:"address"`
	MaterialIDs []string `json:"material_ids"`
}

// SupplierResponse salida de un proveedor.
type SupplierResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Contact       string    `json:"contact"`
	Address       string    `json:"address"`
	MaterialIDs   []string  `json:"material_ids,omitempty"`
	MaterialNames []string  `json:"material_names,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
