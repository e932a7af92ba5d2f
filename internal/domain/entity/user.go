package entity

import "time"

// Roles válidos para User.
const (
	RoleSystemAdmin = "system_admin"
	RoleSalesAdmin  = "sales_admin"
)

// User usuario del back office.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // system_admin, sales_admin
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si r es un rol soportado.
func ValidRole(r string) bool {
	return r == RoleSystemAdmin || r == RoleSalesAdmin
}
