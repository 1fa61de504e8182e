package repository

import "github.com/obrasoft/gestion-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User (DIP).
// GetByID y GetByUsername cargan también los códigos de rol asignados.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	List(limit, offset int) ([]*entity.User, error)
	SetActive(id string, active bool) error
	AssignRole(userID, roleCode string) error
	RemoveRole(userID, roleCode string) error
	// PermissionsForRoles resuelve los códigos de permiso ("clientes.create")
	// de un conjunto de roles vía role_permissions.
	PermissionsForRoles(roleCodes []string) ([]string, error)
}
