package entity

import "time"

// Roles de usuario dentro de una cuenta.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleViewer     = "viewer"
)

// User usuario de la aplicación, siempre atado a una cuenta.
type User struct {
	ID           string
	AccountID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string // "active" | "disabled"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
