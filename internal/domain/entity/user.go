package entity

import "time"

// Roles predefinidos (la tabla roles puede contener otros).
const (
	RoleAdmin   = "admin"
	RoleAlmacen = "almacen"
	RoleVentas  = "ventas"
	RoleObras   = "obras"
)

// User representa un usuario del sistema.
type User struct {
	ID             string
	Username       string
	PassHash       string // bcrypt, nunca plano después de persistir
	FullName       string
	Phone          string
	IsActive       bool
	MustChangePw   bool
	LockedUntil    *time.Time // bloqueo temporal por intentos fallidos
	FailedAttempts int
	Roles          []string // códigos de rol asignados
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Locked indica si la cuenta está bloqueada en el instante dado.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// Role es un rol asignable a usuarios.
type Role struct {
	ID   string
	Code string
}

// Permission es un permiso identificado por código tipo "clientes.create".
type Permission struct {
	ID   string
	Code string
}
