package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "tecnico"
	RoleCashier    = "caja"
)

// User representa un empleado que factura en campo. Su ID es el que se usa como
// identidad del empleado en la consulta de seriales entregados.
type User struct {
	ID           string
	BranchID     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, tecnico, caja
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
